// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/apigw-policies/oauth2-policy-go/gateway"
)

const (
	authorization string = "Authorization"
	bearer        string = "Bearer"
	accessToken   string = "access_token"
)

// Source tells where an access token has been found
type Source int

const (
	SourceNone Source = iota
	SourceHeader
	SourceParameter
	SourceCallback
)

func (s Source) String() string {
	switch s {
	case SourceHeader:
		return "header"
	case SourceParameter:
		return "parameter"
	case SourceCallback:
		return "callback"
	default:
		return "none"
	}
}

// Extract looks up the raw access token of an execution context.
//
// For HTTP the first Authorization header with a Bearer scheme wins, otherwise the
// access_token query parameter is used. For Kafka the first OAUTHBEARER callback wins.
// The token is neither parsed nor validated. ok is false if no token has been found.
//
// Extract panics if ctx is nil or not one of the execution contexts of package gateway.
func Extract(ctx gateway.ExecutionContext) (token string, ok bool) {
	token, _, ok = ExtractWithSource(ctx)
	return token, ok
}

// ExtractWithSource is Extract, additionally reporting where the token has been found
func ExtractWithSource(ctx gateway.ExecutionContext) (string, Source, bool) {
	switch c := ctx.(type) {
	case *gateway.HTTPExecutionContext:
		return extractFromRequest(c.Request())
	case *gateway.KafkaConnectionContext:
		token, ok := extractFromCallbacks(c.Callbacks())
		if !ok {
			return "", SourceNone, false
		}
		return token, SourceCallback, true
	default:
		panic(fmt.Sprintf("auth: unsupported execution context %T", ctx))
	}
}

// ExtractRequest looks up the raw access token of r the same way Extract does for HTTP
// execution contexts. It returns nil if no token has been found.
//
// Deprecated: kept for callers of the previous request API, use Extract with a gateway.HTTPExecutionContext.
func ExtractRequest(r *http.Request) *string {
	token, _, ok := extractFromRequest(gateway.NewRequest(r))
	if !ok {
		return nil
	}
	return &token
}

func extractFromCallbacks(callbacks []gateway.Callback) (string, bool) {
	for _, cb := range callbacks {
		switch c := cb.(type) {
		case *gateway.BearerValidatorCallback:
			return c.TokenValue(), true
		case *gateway.BearerExtensionsValidatorCallback:
			if c.Token() == nil {
				continue
			}
			return c.Token().Token, true
		}
	}
	return "", false
}

func extractFromRequest(r gateway.Request) (string, Source, bool) {
	if r == nil {
		return "", SourceNone, false
	}
	if token, ok := extractFromHeaders(r.Headers()); ok {
		return token, SourceHeader, true
	}
	if token, ok := extractFromParameters(r.Parameters()); ok {
		return token, SourceParameter, true
	}
	return "", SourceNone, false
}

func extractFromHeaders(headers gateway.Headers) (string, bool) {
	if headers == nil {
		return "", false
	}
	for _, h := range headers.GetAll(authorization) {
		if hasPrefixFold(h, bearer) {
			return trim(h[len(bearer):]), true
		}
	}
	return "", false
}

func extractFromParameters(parameters gateway.Parameters) (string, bool) {
	if parameters == nil {
		return "", false
	}
	return parameters.GetFirst(accessToken)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// trim strips leading and trailing spaces and ASCII control characters
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r <= ' '
	})
}
