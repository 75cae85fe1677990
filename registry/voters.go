// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/dabekoe/chain-choice-voting/auth"
	"github.com/dabekoe/chain-choice-voting/db"
	"github.com/dabekoe/chain-choice-voting/models"
)

// Registry owns voter identity, eligibility and verification state, and the
// administrator accounts.
type Registry struct {
	db       *sql.DB
	notifier Notifier
	now      func() time.Time
}

func New(conn *sql.DB, notifier Notifier) *Registry {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Registry{db: conn, notifier: notifier, now: time.Now}
}

// Register creates an unverified voter and sends a verification code
func (r *Registry) Register(ctx context.Context, req models.RegisterVoterRequest) (models.Voter, error) {
	voter := models.Voter{
		ID:           strings.TrimSpace(req.VoterID),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Constituency: models.NormalizeConstituency(req.Constituency),
		Active:       true,
		CreatedAt:    r.now(),
	}

	switch {
	case voter.ID == "":
		return models.Voter{}, fmt.Errorf("%w: voterId is required", ErrInvalidInput)
	case voter.Name == "":
		return models.Voter{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case voter.Email == "":
		return models.Voter{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	case len(req.Password) < auth.MinPasswordLength:
		return models.Voter{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
	}
	if _, err := mail.ParseAddress(voter.Email); err != nil {
		return models.Voter{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.Voter{}, err
	}

	code, err := auth.GenerateVerificationCode()
	if err != nil {
		return models.Voter{}, err
	}
	codeHash, err := auth.HashPassword(code)
	if err != nil {
		return models.Voter{}, err
	}

	// UNIQUE on id and email rejects duplicates
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO voter (id, name, email, phone, constituency, password_hash, verification_hash, verified, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, voter.ID, voter.Name, voter.Email, voter.Phone, nullString(voter.Constituency),
		passwordHash, codeHash, false, true, voter.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Voter{}, ErrVoterExists
		}
		return models.Voter{}, fmt.Errorf("failed to insert voter: %w", err)
	}

	// Non-fatal: the voter row is already committed
	if err := r.notifier.SendVerificationCode(ctx, voter, code); err != nil {
		slog.Warn("failed to send verification code", "voter_id", voter.ID, "error", err)
	}

	slog.Info("voter registered", "voter_id", voter.ID, "constituency", voter.Constituency)
	return voter, nil
}

// MaxVerifyAttempts bounds code guesses per issued code. ResendCode resets
// the counter.
const MaxVerifyAttempts = 5

// Verify marks the voter owning email as verified. Verification happens once.
func (r *Registry) Verify(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	// The attempt is charged before the comparison so concurrent guesses
	// cannot exceed the limit
	var voterID string
	var codeHash string
	err := r.db.QueryRowContext(ctx, `
		UPDATE voter SET verification_attempts = verification_attempts + 1
		WHERE email = $1 AND verified = $2 AND verification_hash IS NOT NULL AND verification_attempts < $3
		RETURNING id, verification_hash
	`, email, false, MaxVerifyAttempts).Scan(&voterID, &codeHash)
	if errors.Is(err, sql.ErrNoRows) {
		return r.verifyRejection(ctx, email)
	}
	if err != nil {
		return fmt.Errorf("failed to record verification attempt: %w", err)
	}

	if auth.CheckPassword(codeHash, strings.TrimSpace(code)) != nil {
		return ErrInvalidCode
	}
	return r.markVerified(ctx, voterID)
}

// verifyRejection explains why no attempt could be charged for email
func (r *Registry) verifyRejection(ctx context.Context, email string) error {
	var verified bool
	var attempts int
	err := r.db.QueryRowContext(ctx, `
		SELECT verified, verification_attempts FROM voter WHERE email = $1
	`, email).Scan(&verified, &attempts)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrVoterNotFound
	case err != nil:
		return fmt.Errorf("failed to query voter: %w", err)
	case verified:
		return ErrAlreadyVerified
	case attempts >= MaxVerifyAttempts:
		return ErrCodeExhausted
	default:
		return ErrInvalidCode
	}
}

// ResendCode issues a fresh verification code to an unverified voter and
// clears the attempt counter. The previous code stops working.
func (r *Registry) ResendCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var voterID string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM voter WHERE email = $1`, email).Scan(&voterID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVoterNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query voter: %w", err)
	}

	code, err := auth.GenerateVerificationCode()
	if err != nil {
		return err
	}
	codeHash, err := auth.HashPassword(code)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE voter SET verification_hash = $1, verification_attempts = 0
		WHERE id = $2 AND verified = $3
	`, codeHash, voterID, false)
	if err != nil {
		return fmt.Errorf("failed to reset verification code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reset verification code: %w", err)
	}
	if n == 0 {
		return ErrAlreadyVerified
	}

	voter, err := r.Get(ctx, voterID)
	if err != nil {
		return err
	}
	if err := r.notifier.SendVerificationCode(ctx, voter, code); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}

	slog.Info("verification code reissued", "voter_id", voterID)
	return nil
}

// MarkVerified verifies a voter without a code (administrative and seed path)
func (r *Registry) MarkVerified(ctx context.Context, voterID string) error {
	if _, err := r.Get(ctx, voterID); err != nil {
		return err
	}
	return r.markVerified(ctx, voterID)
}

func (r *Registry) markVerified(ctx context.Context, voterID string) error {
	// The verified = FALSE guard makes a concurrent second verification a no-op
	res, err := r.db.ExecContext(ctx, `
		UPDATE voter SET verified = $1, verified_at = $2, verification_hash = NULL
		WHERE id = $3 AND verified = $4
	`, true, r.now(), voterID, false)
	if err != nil {
		return fmt.Errorf("failed to verify voter: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify voter: %w", err)
	}
	if n == 0 {
		return ErrAlreadyVerified
	}

	slog.Info("voter verified", "voter_id", voterID)
	return nil
}

// Get returns a voter by ID
func (r *Registry) Get(ctx context.Context, voterID string) (models.Voter, error) {
	voter, _, err := r.get(ctx, voterID)
	return voter, err
}

// Authenticate checks a voter's password. Unverified voters may log in;
// deactivated voters may not.
func (r *Registry) Authenticate(ctx context.Context, voterID, password string) (models.Voter, error) {
	voter, hash, err := r.get(ctx, strings.TrimSpace(voterID))
	if errors.Is(err, ErrVoterNotFound) {
		return models.Voter{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Voter{}, err
	}

	if auth.CheckPassword(hash, password) != nil {
		return models.Voter{}, ErrInvalidCredentials
	}
	if !voter.Active {
		return models.Voter{}, ErrVoterInactive
	}

	return voter, nil
}

// Deactivate disables a voter. Voters are never deleted.
func (r *Registry) Deactivate(ctx context.Context, voterID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE voter SET active = $1 WHERE id = $2`, false, voterID)
	if err != nil {
		return fmt.Errorf("failed to deactivate voter: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate voter: %w", err)
	}
	if n == 0 {
		return ErrVoterNotFound
	}

	slog.Info("voter deactivated", "voter_id", voterID)
	return nil
}

func (r *Registry) get(ctx context.Context, voterID string) (models.Voter, string, error) {
	var voter models.Voter
	var constituency sql.NullString
	var passwordHash string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, constituency, password_hash, verified, active, created_at
		FROM voter
		WHERE id = $1
	`, voterID).Scan(
		&voter.ID, &voter.Name, &voter.Email, &voter.Phone, &constituency,
		&passwordHash, &voter.Verified, &voter.Active, &voter.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, "", ErrVoterNotFound
	}
	if err != nil {
		return models.Voter{}, "", fmt.Errorf("failed to query voter: %w", err)
	}

	voter.Constituency = constituency.String
	return voter, passwordHash, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
