// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"time"
)

// BearerClaimsBuilder can construct token claims for test cases. Use NewBearerClaimsBuilder as a constructor.
type BearerClaimsBuilder struct {
	claims BearerClaims
}

// NewBearerClaimsBuilder instantiates a new BearerClaimsBuilder with a base (e.g. DefaultClaims)
func NewBearerClaimsBuilder(base BearerClaims) *BearerClaimsBuilder {
	b := &BearerClaimsBuilder{base}
	return b
}

// Build returns the finished token claims
func (b *BearerClaimsBuilder) Build() BearerClaims {
	return b.claims
}

// Audience sets the aud field
func (b *BearerClaimsBuilder) Audience(aud ...string) *BearerClaimsBuilder {
	b.claims.Audience = aud
	return b
}

// ExpiresAt sets the exp field
func (b *BearerClaimsBuilder) ExpiresAt(expiresAt time.Time) *BearerClaimsBuilder {
	b.claims.ExpiresAt = expiresAt
	return b
}

// Subject sets the sub field
func (b *BearerClaimsBuilder) Subject(subject string) *BearerClaimsBuilder {
	b.claims.Subject = subject
	return b
}

// Scope sets the space separated scope field
func (b *BearerClaimsBuilder) Scope(scope string) *BearerClaimsBuilder {
	b.claims.Scope = scope
	return b
}

// ClientID sets the client_id field
func (b *BearerClaimsBuilder) ClientID(clientID string) *BearerClaimsBuilder {
	b.claims.ClientID = clientID
	return b
}
