// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/apigw-policies/oauth2-policy-go/env"
	"github.com/apigw-policies/oauth2-policy-go/gateway"
	"github.com/apigw-policies/oauth2-policy-go/sasl"
)

// The ContextKey type is used as a key for library related values in the go context. See also TokenCtxKey
type ContextKey int

// TokenCtxKey is the key that holds the raw access token (string) in the request context
// ExecutionContextCtxKey is the key that holds the *gateway.HTTPExecutionContext of the request
const (
	TokenCtxKey            ContextKey = 0
	ExecutionContextCtxKey ContextKey = 1
)

// ErrMissingToken is returned if neither the Authorization header nor the access_token parameter
// (or, for Kafka, the SASL exchange) provides an access token
var ErrMissingToken = errors.New("no OAuth authorization header was supplied")

// ErrorHandler is the type for the Error Handler which is called on unsuccessful token extraction and if the AuthenticationHandler middleware func is used
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Options can be used as a argument to instantiate a Middleware with NewMiddleware.
type Options struct {
	ErrorHandler ErrorHandler          // ErrorHandler called if no token can be extracted and the AuthenticationHandler middleware func is used. Default: a handler responding with DefaultErrorHandler semantics for the configured realm
	Logger       *zap.Logger           // Logger for extraction outcomes. Default: zap.NewNop()
	Registerer   prometheus.Registerer // Registerer for the extraction counter. Default: nil, the counter is not registered
}

// TokenFromCtx retrieves the access token of a request which
// has been injected before via the AuthenticationHandler
func TokenFromCtx(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(TokenCtxKey).(string)
	return token, ok
}

// ExecutionContextFromCtx retrieves the execution context of a request which
// has been injected before via the AuthenticationHandler
func ExecutionContextFromCtx(r *http.Request) (*gateway.HTTPExecutionContext, bool) {
	ctx, ok := r.Context().Value(ExecutionContextCtxKey).(*gateway.HTTPExecutionContext)
	return ctx, ok
}

// Middleware is the OAuth2 policy entry point, instantiate with NewMiddleware.
// Use either the ready to use AuthenticationHandler as a middleware or implement your own middleware with the help of Authenticate.
// The token is handed on unvalidated, validating it is up to the next handler.
type Middleware struct {
	config  env.PolicyConfig
	options Options
	metrics *metrics
}

// NewMiddleware instantiates a new Middleware with defaults for not provided Options.
func NewMiddleware(config *env.PolicyConfig, options Options) *Middleware {
	m := new(Middleware)

	if config != nil {
		m.config = *config
	} else {
		log.Fatal("config must not be nil, please refer to package env for loading it")
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.ErrorHandler == nil {
		realm := m.config.Realm
		options.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			writeUnauthorized(w, realm, err)
		}
	}
	m.options = options
	m.metrics = newMetrics(options.Registerer)

	return m
}

// Authenticate extracts the access token of a request, ErrMissingToken is returned if there is none
func (m *Middleware) Authenticate(r *http.Request) (string, error) {
	token, _, err := m.authenticate(r)
	return token, err
}

func (m *Middleware) authenticate(r *http.Request) (string, *gateway.HTTPExecutionContext, error) {
	ctx := gateway.NewHTTPExecutionContext(gateway.NewRequest(r))
	token, err := m.extract(ctx)
	return token, ctx, err
}

// AuthenticateConnection extracts the access token of a Kafka connection from the SASL client response
// sent for mechanism. ErrMissingToken is returned if the mechanism does not carry a token (e.g. PLAIN).
func (m *Middleware) AuthenticateConnection(mechanism string, clientResponse []byte) (string, error) {
	ctx, err := sasl.NewConnectionContext(mechanism, clientResponse)
	if err != nil {
		m.options.Logger.Info("rejecting SASL client response", zap.String("mechanism", mechanism), zap.Error(err))
		return "", err
	}
	return m.extract(ctx)
}

func (m *Middleware) extract(ctx gateway.ExecutionContext) (string, error) {
	token, source, ok := ExtractWithSource(ctx)
	m.metrics.observe(ctx.Transport(), source)

	logger := m.options.Logger.With(
		zap.String("context_id", ctx.ID()),
		zap.String("transport", string(ctx.Transport())),
	)
	if !ok {
		logger.Debug("no access token found")
		return "", ErrMissingToken
	}
	logger.Debug("access token found", zap.Stringer("source", source))
	return token, nil
}

// AuthenticationHandler extracts the access token of a request and injects it into
// the request context. If no token is found (see Authenticate), the specified
// error handler (see Options.ErrorHandler) will be called and the current request will stop.
// In case of success the request context is enriched with the token and the execution context.
// With PropagateAuthHeader disabled, the Authorization header is removed before calling next.
func (m *Middleware) AuthenticationHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, execCtx, err := m.authenticate(r)

		if err != nil {
			m.options.ErrorHandler(w, r, err)
			return
		}

		ctx := context.WithValue(context.WithValue(r.Context(), TokenCtxKey, token), ExecutionContextCtxKey, execCtx)
		r = r.WithContext(ctx)
		if !m.config.PropagateAuthHeader {
			r.Header = withoutAuthorization(r.Header)
		}

		next.ServeHTTP(w, r)
	})
}

// DefaultErrorHandler responds with the error and HTTP status 401 and announces the Bearer scheme
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	writeUnauthorized(w, env.DefaultPolicyConfig().Realm, err)
}

// withoutAuthorization copies h without any Authorization key, canonical or not
func withoutAuthorization(h http.Header) http.Header {
	stripped := h.Clone()
	for key := range stripped {
		if strings.EqualFold(key, authorization) {
			delete(stripped, key)
		}
	}
	return stripped
}

func writeUnauthorized(w http.ResponseWriter, realm string, err error) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer realm=%q", realm))
	http.Error(w, err.Error(), http.StatusUnauthorized)
}
