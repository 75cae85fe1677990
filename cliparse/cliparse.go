package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort     = 3000
	DefaultTokenTTL = 12 * time.Hour
)

// Ballot store backends
const (
	LedgerSQL    = "sql"
	LedgerBadger = "badger"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	LedgerBackend string
	BadgerDir     string
	TokenSecret   string
	TokenTTL      time.Duration
	AdminID       string
	AdminPassword string
	SeedFile      string
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills gaps from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("chain-choice", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.LedgerBackend, "ledger", "", "Ballot store backend (sql or badger)")
	fs.StringVar(&cfg.BadgerDir, "badger-dir", "", "Badger data directory (required for the badger ledger)")
	fs.StringVar(&cfg.SeedFile, "seed", "", "YAML seed file")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", 0, "Bearer token lifetime")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Token signing secret (prefer env)")
	fs.StringVar(&cfg.AdminID, "admin-id", "", "Bootstrap admin username")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.LedgerBackend == "" {
		cfg.LedgerBackend = os.Getenv("LEDGER_BACKEND")
		if cfg.LedgerBackend == "" {
			cfg.LedgerBackend = LedgerSQL
		}
	}
	if cfg.LedgerBackend != LedgerSQL && cfg.LedgerBackend != LedgerBadger {
		return Config{}, fmt.Errorf("unsupported ledger backend %q", cfg.LedgerBackend)
	}
	if cfg.BadgerDir == "" {
		cfg.BadgerDir = os.Getenv("BADGER_DIR")
	}
	if cfg.LedgerBackend == LedgerBadger && cfg.BadgerDir == "" {
		return Config{}, errors.New("badger ledger requires -badger-dir or BADGER_DIR")
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}

	if cfg.TokenTTL == 0 {
		if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
			ttl, err := time.ParseDuration(ttlStr)
			if err != nil {
				return Config{}, errors.New("invalid TOKEN_TTL env variable")
			}
			cfg.TokenTTL = ttl
		} else {
			cfg.TokenTTL = DefaultTokenTTL
		}
	}
	if cfg.TokenTTL < 0 {
		return Config{}, errors.New("token TTL must be positive")
	}

	if cfg.AdminID == "" {
		cfg.AdminID = os.Getenv("BOOTSTRAP_ADMIN_ID")
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	}
	if cfg.AdminID != "" && cfg.AdminPassword == "" {
		return Config{}, errors.New("BOOTSTRAP_ADMIN_PASSWORD required when BOOTSTRAP_ADMIN_ID is set")
	}

	// Secrets - MUST be provided
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}

	return cfg, nil
}
