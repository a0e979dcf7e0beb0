// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package mocks provides access tokens and SASL client messages for tests.
package mocks

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"sync"

	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
)

var (
	signingKey     *rsa.PrivateKey
	signingKeyOnce sync.Once
)

func key() *rsa.PrivateKey {
	signingKeyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(fmt.Sprintf("unable to generate mock signing key: %v", err))
		}
		signingKey = k
	})
	return signingKey
}

// NewBearerToken creates an RS256 signed JWT from claims. !!! WARNING !!! The signing key is generated per process. Use only in tests!
func NewBearerToken(claims BearerClaims) (string, error) {
	token := jwt.New()
	set := func(name string, value interface{}) error {
		if err := token.Set(name, value); err != nil {
			return fmt.Errorf("unable to set claim %s: %w", name, err)
		}
		return nil
	}

	var err error
	if len(claims.Audience) > 0 {
		err = set(jwt.AudienceKey, claims.Audience)
	}
	if err == nil && !claims.ExpiresAt.IsZero() {
		err = set(jwt.ExpirationKey, claims.ExpiresAt)
	}
	if err == nil && claims.ID != "" {
		err = set(jwt.JwtIDKey, claims.ID)
	}
	if err == nil && !claims.IssuedAt.IsZero() {
		err = set(jwt.IssuedAtKey, claims.IssuedAt)
	}
	if err == nil && claims.Issuer != "" {
		err = set(jwt.IssuerKey, claims.Issuer)
	}
	if err == nil && claims.Subject != "" {
		err = set(jwt.SubjectKey, claims.Subject)
	}
	if err == nil && claims.ClientID != "" {
		err = set(claimCID, claims.ClientID)
	}
	if err == nil && claims.Scope != "" {
		err = set(claimScope, claims.Scope)
	}
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwa.RS256, key())
	if err != nil {
		return "", fmt.Errorf("unable to sign mock token: %w", err)
	}
	return string(signed), nil
}

// MustBearerToken is NewBearerToken panicking on error
func MustBearerToken(claims BearerClaims) string {
	token, err := NewBearerToken(claims)
	if err != nil {
		panic(err)
	}
	return token
}

// ParseBearerToken verifies a token created by NewBearerToken and returns its claims
func ParseBearerToken(encoded string) (jwt.Token, error) {
	return jwt.ParseString(encoded, jwt.WithVerify(jwa.RS256, &key().PublicKey))
}
