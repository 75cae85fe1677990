// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and token utilities.

# Bearer Tokens

Tokens are HS256 JWTs carrying the subject (voter ID or admin username),
a role claim and an expiry, so they can be validated without a database
lookup:

	token, err := auth.IssueToken(voterID, models.RoleVoter, secret, 12*time.Hour, time.Now())
	claims, err := auth.ParseToken(token, secret, time.Now())

ParseToken accepts only HS256, requires exp, and maps failures onto
ErrInvalidSignature, ErrTokenExpired and ErrInvalidToken.

# Passwords

Voter and admin passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(hash, password) // ErrWrongPassword on mismatch

# Verification Codes

Six digit codes sent to newly registered voters:

	code, err := auth.GenerateVerificationCode()

The registry stores only the bcrypt hash of the code.

# ID Generation

Random hex IDs, used to tag requests in the logs:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
