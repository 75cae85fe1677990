// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrVoterExists        = errors.New("voter ID or email already registered")
	ErrVoterNotFound      = errors.New("voter not found")
	ErrVoterInactive      = errors.New("voter is deactivated")
	ErrAlreadyVerified    = errors.New("voter is already verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeExhausted      = errors.New("too many verification attempts, request a new code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminExists        = errors.New("admin already exists")
	ErrAdminNotFound      = errors.New("admin not found")
)
