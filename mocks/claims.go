// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"time"

	"github.com/google/uuid"
)

// https://www.iana.org/assignments/jwt/jwt.xhtml#claims
const (
	claimScope = "scope"
	claimCID   = "client_id"
)

// BearerClaims represents the claims of a test access token. Zero values are omitted.
type BearerClaims struct {
	Audience  []string
	ExpiresAt time.Time
	ID        string
	IssuedAt  time.Time
	Issuer    string
	Subject   string
	ClientID  string
	Scope     string
}

// DefaultClaims returns claims of a token issued now, valid for five minutes
func DefaultClaims() BearerClaims {
	now := time.Now()
	return BearerClaims{
		Audience:  []string{"gateway"},
		ExpiresAt: now.Add(5 * time.Minute),
		ID:        uuid.NewString(),
		IssuedAt:  now,
		Issuer:    "https://auth.example.org",
		Subject:   "alice",
		ClientID:  "my-client",
		Scope:     "read write",
	}
}
