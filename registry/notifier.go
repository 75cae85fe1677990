// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"log/slog"

	"github.com/dabekoe/chain-choice-voting/models"
)

// Notifier delivers verification codes to newly registered voters
type Notifier interface {
	SendVerificationCode(ctx context.Context, voter models.Voter, code string) error
}

// LogNotifier writes codes to the log. Development only; production
// deployments plug in an e-mail or SMS sender.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) SendVerificationCode(ctx context.Context, voter models.Voter, code string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "verification code issued",
		"voter_id", voter.ID,
		"email", voter.Email,
		"code", code,
	)
	return nil
}
