// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dabekoe/chain-choice-voting/models"
)

// Key layout. Scopes and IDs never contain NUL.
//
//	ballot/<scope>\x00<voter>              → ballot JSON (the uniqueness key)
//	voter/<voter>\x00<scope>               → empty
//	candidate/<candidate>\x00<scope>\x00<voter> → empty
const (
	ballotPrefix    = "ballot/"
	voterPrefix     = "voter/"
	candidatePrefix = "candidate/"
	sep             = "\x00"
)

// maxConflictRetries bounds re-runs of an insert transaction that lost a
// commit race. A re-run sees the winner's ballot and returns ErrAlreadyVoted.
const maxConflictRetries = 8

// BadgerStore keeps ballots in badger. Insert reads the uniqueness key and
// writes it in one serializable transaction; badger aborts the later of two
// overlapping commits with ErrConflict.
//
// Candidates live in SQL, so no foreign key backs candidate IDs here. A
// candidate deleted after the ledger's candidate check can still receive
// the in-flight ballot.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// ErrBadgerDirRequired is returned when no data directory is configured
var ErrBadgerDirRequired = errors.New("badger ledger requires a data directory")

// OpenBadgerStore opens an on-disk store in dir. Every commit is synced.
func OpenBadgerStore(dir string, logger *slog.Logger) (*BadgerStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrBadgerDirRequired
	}
	return openBadgerStore(badger.DefaultOptions(dir).WithSyncWrites(true), logger)
}

func openBadgerStore(opts badger.Options, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts = opts.
		WithLogger(badgerLogger{logger: logger}).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return &BadgerStore{db: bdb, logger: logger}, nil
}

func (s *BadgerStore) Insert(ctx context.Context, b models.Ballot) error {
	if err := ctx.Err(); err != nil {
		return unavailable("insert ballot", err)
	}

	value, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode ballot: %w", err)
	}
	key := ballotKey(b.Scope, b.VoterID)

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			if err == nil {
				return ErrAlreadyVoted
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := txn.Set(key, value); err != nil {
				return err
			}
			if err := txn.Set(voterKey(b.VoterID, b.Scope), nil); err != nil {
				return err
			}
			return txn.Set(candidateKey(b.CandidateID, b.Scope, b.VoterID), nil)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.logger.Debug("ballot insert conflict, re-checking", "scope", b.Scope, "attempt", attempt+1)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyVoted):
		return ErrAlreadyVoted
	default:
		return unavailable("insert ballot", err)
	}
}

func (s *BadgerStore) Has(ctx context.Context, voterID, scope string) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(ballotKey(scope, voterID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, unavailable("query ballot", err)
	}
	return found, nil
}

func (s *BadgerStore) ScopesForVoter(ctx context.Context, voterID string) ([]string, error) {
	prefix := []byte(voterPrefix + voterID + sep)

	var scopes []string
	err := s.db.View(func(txn *badger.Txn) error {
		return scanKeys(txn, prefix, func(rest string) error {
			scopes = append(scopes, rest)
			return nil
		})
	})
	if err != nil {
		return nil, unavailable("query ballots", err)
	}

	sort.Strings(scopes)
	return scopes, nil
}

// CountByCandidate reads inside one View transaction, a consistent snapshot
func (s *BadgerStore) CountByCandidate(ctx context.Context, f ScopeFilter) (map[string]int, error) {
	prefix := ballotPrefix
	switch {
	case f.Scope != "":
		prefix += f.Scope + sep
	case f.Prefix != "":
		prefix += f.Prefix
	}

	counts := make(map[string]int)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var b models.Ballot
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &b)
			})
			if err != nil {
				return err
			}
			counts[b.CandidateID]++
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("count ballots", err)
	}
	return counts, nil
}

func (s *BadgerStore) CountForCandidate(ctx context.Context, candidateID string) (int, error) {
	var n int
	err := s.db.View(func(txn *badger.Txn) error {
		return scanKeys(txn, []byte(candidatePrefix+candidateID+sep), func(string) error {
			n++
			return nil
		})
	})
	if err != nil {
		return 0, unavailable("count ballots", err)
	}
	return n, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// scanKeys calls fn with the remainder of every key under prefix
func scanKeys(txn *badger.Txn, prefix []byte, fn func(rest string) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		key := string(it.Item().Key())
		if err := fn(strings.TrimPrefix(key, string(prefix))); err != nil {
			return err
		}
	}
	return nil
}

func ballotKey(scope, voterID string) []byte {
	return []byte(ballotPrefix + scope + sep + voterID)
}

func voterKey(voterID, scope string) []byte {
	return []byte(voterPrefix + voterID + sep + scope)
}

func candidateKey(candidateID, scope, voterID string) []byte {
	return []byte(candidatePrefix + candidateID + sep + scope + sep + voterID)
}

// badgerLogger adapts slog to badger.Logger
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(msg string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

func (l badgerLogger) Warningf(msg string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

func (l badgerLogger) Infof(msg string, args ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

func (l badgerLogger) Debugf(msg string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

var _ Store = (*BadgerStore)(nil)
