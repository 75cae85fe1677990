// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"testing"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/cliparse"
	"github.com/dabekoe/chain-choice-voting/ledger"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/registry"
	"github.com/dabekoe/chain-choice-voting/tally"
	"github.com/dabekoe/chain-choice-voting/testutil"
)

// codeNotifier captures verification codes by email
type codeNotifier struct {
	mu    sync.Mutex
	codes map[string]string
}

func (n *codeNotifier) SendVerificationCode(ctx context.Context, voter models.Voter, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = make(map[string]string)
	}
	n.codes[voter.Email] = code
	return nil
}

func (n *codeNotifier) code(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

type testEnv struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier *codeNotifier
	registry *registry.Registry
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	tally    *tally.Engine
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := ledger.NewSQLStore(db)
	notifier := &codeNotifier{}
	reg := registry.New(db, notifier)
	cat := catalog.New(db, store)

	if _, err := cat.EnsurePresidential(context.Background()); err != nil {
		t.Fatalf("EnsurePresidential failed: %v", err)
	}

	return &testEnv{
		db:       db,
		cfg:      testutil.GetTestConfig(),
		notifier: notifier,
		registry: reg,
		catalog:  cat,
		ledger:   ledger.New(store, reg, cat),
		tally:    tally.New(cat, store, nil),
	}
}

// asVoter attaches an authenticated voter identity, as RequireVoter would
func asVoter(r *http.Request, voterID string) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), middleware.Identity{
		Subject: voterID,
		Role:    models.RoleVoter,
	}))
}

func asAdmin(r *http.Request, username string) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), middleware.Identity{
		Subject: username,
		Role:    models.RoleAdmin,
	}))
}
