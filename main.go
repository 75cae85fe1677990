// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/dabekoe/chain-choice-voting/cliparse"
	"github.com/dabekoe/chain-choice-voting/db"
	"github.com/dabekoe/chain-choice-voting/ledger"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/registry"
	"github.com/dabekoe/chain-choice-voting/router"
	"github.com/dabekoe/chain-choice-voting/seed"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		return err
	}

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	var store ledger.Store
	switch cfg.LedgerBackend {
	case cliparse.LedgerBadger:
		store, err = ledger.OpenBadgerStore(cfg.BadgerDir, slog.Default())
		if err != nil {
			return err
		}
	default:
		store = ledger.NewSQLStore(dbConn)
	}
	defer store.Close()
	slog.Info("Ballot ledger ready", "backend", cfg.LedgerBackend)

	svc := router.NewServices(dbConn, store, registry.LogNotifier{})

	ctx := context.Background()
	if _, err := svc.Catalog.EnsurePresidential(ctx); err != nil {
		return err
	}
	if cfg.AdminID != "" {
		created, err := svc.Registry.EnsureAdmin(ctx, cfg.AdminID, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			slog.Info("Bootstrap admin created", "username", cfg.AdminID)
		}
	}
	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, f, svc.Catalog, svc.Registry); err != nil {
			return err
		}
	}

	server := http.Server{
		Handler:           middleware.CORS(router.NewRouter(svc, cfg)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// In-flight casts finish before the stores close
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	slog.Info("Server closed")
	return nil
}
