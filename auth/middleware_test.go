// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/apigw-policies/oauth2-policy-go/env"
	"github.com/apigw-policies/oauth2-policy-go/gateway"
	"github.com/apigw-policies/oauth2-policy-go/mocks"
	"github.com/apigw-policies/oauth2-policy-go/sasl"
)

func TestAuthenticationHandler(t *testing.T) {
	jwt := mocks.MustBearerToken(mocks.DefaultClaims())

	tests := []struct {
		name                string
		target              string
		header              string
		propagateAuthHeader bool
		wantStatus          int
		wantToken           string
		wantUpstreamHeader  string
	}{
		{
			name:                "bearer header",
			target:              "/api",
			header:              "Bearer " + jwt,
			propagateAuthHeader: true,
			wantStatus:          http.StatusOK,
			wantToken:           jwt,
			wantUpstreamHeader:  "Bearer " + jwt,
		}, {
			name:                "authorization header removed upstream",
			target:              "/api",
			header:              "Bearer " + jwt,
			propagateAuthHeader: false,
			wantStatus:          http.StatusOK,
			wantToken:           jwt,
			wantUpstreamHeader:  "",
		}, {
			name:                "access_token parameter",
			target:              "/api?access_token=" + jwt,
			propagateAuthHeader: true,
			wantStatus:          http.StatusOK,
			wantToken:           jwt,
		}, {
			name:       "basic credentials only",
			target:     "/api",
			header:     "Basic YWxpY2U6c2VjcmV0",
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "no credentials",
			target:     "/api",
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			config := env.DefaultPolicyConfig()
			config.PropagateAuthHeader = tt.propagateAuthHeader
			m := NewMiddleware(config, Options{})

			var gotToken, gotHeader string
			var gotCtx *gateway.HTTPExecutionContext
			handler := m.AuthenticationHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken, _ = TokenFromCtx(r)
				gotCtx, _ = ExecutionContextFromCtx(r)
				gotHeader = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, `Bearer realm="gateway"`, rr.Header().Get("WWW-Authenticate"))
				assert.Contains(t, rr.Body.String(), ErrMissingToken.Error())
				return
			}
			assert.Equal(t, tt.wantToken, gotToken)
			assert.Equal(t, tt.wantUpstreamHeader, gotHeader)
			require.NotNil(t, gotCtx)
			assert.NotEmpty(t, gotCtx.ID())
			if tt.header != "" {
				assert.Equal(t, tt.header, req.Header.Get("Authorization"), "the inbound request must not be modified")
			}
		})
	}
}

func TestAuthenticationHandler_StripsNonCanonicalAuthorization(t *testing.T) {
	config := env.DefaultPolicyConfig()
	config.PropagateAuthHeader = false

	var upstream http.Header
	handler := NewMiddleware(config, Options{}).AuthenticationHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream = r.Header
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header = http.Header{"authorization": {"Bearer abc"}, "X-Trace": {"1"}}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, http.Header{"X-Trace": {"1"}}, upstream)
	assert.Equal(t, []string{"Bearer abc"}, req.Header["authorization"])
}

func TestAuthenticationHandler_CustomErrorHandler(t *testing.T) {
	var gotErr error
	m := NewMiddleware(env.DefaultPolicyConfig(), Options{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			gotErr = err
			w.WriteHeader(http.StatusForbidden)
		},
	})
	handler := m.AuthenticationHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.True(t, errors.Is(gotErr, ErrMissingToken))
}

func TestDefaultErrorHandler_ConfiguredRealm(t *testing.T) {
	config := env.DefaultPolicyConfig()
	config.Realm = "partners"
	handler := NewMiddleware(config, Options{}).AuthenticationHandler(http.NotFoundHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, `Bearer realm="partners"`, rr.Header().Get("WWW-Authenticate"))

	rr = httptest.NewRecorder()
	DefaultErrorHandler(rr, httptest.NewRequest(http.MethodGet, "/", nil), ErrMissingToken)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, `Bearer realm="gateway"`, rr.Header().Get("WWW-Authenticate"))
}

func TestAuthenticateConnection(t *testing.T) {
	m := NewMiddleware(env.DefaultPolicyConfig(), Options{})
	jwt := mocks.MustBearerToken(mocks.DefaultClaims())

	token, err := m.AuthenticateConnection(sasl.MechanismOAuthBearer, mocks.NewOAuthBearerClientResponse(&sarama.AccessToken{
		Token:      jwt,
		Extensions: map[string]string{"tenant": "acme"},
	}))
	require.NoError(t, err)
	assert.Equal(t, jwt, token)

	_, err = m.AuthenticateConnection(sasl.MechanismPlain, mocks.NewPlainClientResponse("", "alice", "secret"))
	assert.True(t, errors.Is(err, ErrMissingToken))

	_, err = m.AuthenticateConnection(sasl.MechanismOAuthBearer, []byte("n,,\x01auth=Basic abc\x01\x01"))
	assert.True(t, errors.Is(err, sasl.ErrMalformedClientResponse))

	_, err = m.AuthenticateConnection("GSSAPI", nil)
	assert.True(t, errors.Is(err, sasl.ErrUnsupportedMechanism))
}

func TestMiddleware_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMiddleware(env.DefaultPolicyConfig(), Options{Registerer: reg})

	withHeader := httptest.NewRequest(http.MethodGet, "/", nil)
	withHeader.Header.Set("Authorization", "Bearer abc")
	_, _ = m.Authenticate(withHeader)
	_, _ = m.Authenticate(httptest.NewRequest(http.MethodGet, "/?access_token=abc", nil))
	_, _ = m.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	_, _ = m.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	_, _ = m.AuthenticateConnection(sasl.MechanismOAuthBearer, mocks.NewOAuthBearerClientResponse(&sarama.AccessToken{Token: "abc"}))

	counter := m.metrics.extractions
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("http", "header")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("http", "parameter")))
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("http", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("kafka", "callback")))

	count, err := testutil.GatherAndCount(reg, "oauth2_policy_token_extractions_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestMiddleware_AbsenceIsNotLoggedAsError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMiddleware(env.DefaultPolicyConfig(), Options{Logger: zap.New(core)})

	_, err := m.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, ErrMissingToken))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.DebugLevel, entry.Level)
	assert.Equal(t, "http", entry.ContextMap()["transport"])
	assert.NotEmpty(t, entry.ContextMap()["context_id"])
}

func TestMiddleware_NoTokenInLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMiddleware(env.DefaultPolicyConfig(), Options{Logger: zap.New(core)})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer very-secret")
	token, err := m.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "very-secret", token)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "header", logs.All()[0].ContextMap()["source"])
	for _, value := range logs.All()[0].ContextMap() {
		assert.NotEqual(t, "very-secret", value)
	}
}
