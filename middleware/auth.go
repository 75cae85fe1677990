// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dabekoe/chain-choice-voting/auth"
	"github.com/dabekoe/chain-choice-voting/models"
)

// Identity is the authenticated caller of a request
type Identity struct {
	Subject string
	Role    string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by RequireRole
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// RequireRole rejects requests without a valid bearer token for role.
// Missing or bad tokens get 401, a token for another role gets 403.
func RequireRole(secret, role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Bearer token required")
			return
		}

		claims, err := auth.ParseToken(token, secret, time.Now())
		if errors.Is(err, auth.ErrTokenExpired) {
			ErrorResponse(w, http.StatusUnauthorized, "Token expired")
			return
		}
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if claims.Role != role {
			ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{Subject: claims.Subject, Role: claims.Role})
		next(w, r.WithContext(ctx))
	}
}

func RequireVoter(secret string, next http.HandlerFunc) http.HandlerFunc {
	return RequireRole(secret, models.RoleVoter, next)
}

func RequireAdmin(secret string, next http.HandlerFunc) http.HandlerFunc {
	return RequireRole(secret, models.RoleAdmin, next)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
