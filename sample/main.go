// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apigw-policies/oauth2-policy-go/auth"
	"github.com/apigw-policies/oauth2-policy-go/env"
	"github.com/apigw-policies/oauth2-policy-go/sasl"
)

const maxClientResponseBytes = 64 << 10

// Demo gateway: protects /helloWorld with the OAuth2 policy and lets Kafka style SASL client
// responses be checked through /sasl/{mechanism}.
func main() {
	var address string

	cmd := &cobra.Command{
		Use:   "oauth2-policy-sample",
		Short: "Runs a demo gateway protected by the OAuth2 policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(address)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&address, "address", defaultAddress(), "listen address")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultAddress() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}

func run(address string) error {
	config, err := env.ParsePolicyConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(config.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	authMiddleware := auth.NewMiddleware(config, auth.Options{
		Logger:     logger,
		Registerer: registry,
	})

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/sasl/{mechanism}", saslHandler(authMiddleware)).Methods(http.MethodPost)

	api := r.PathPrefix("/").Subrouter()
	api.Use(authMiddleware.AuthenticationHandler)
	api.HandleFunc("/helloWorld", helloWorld).Methods(http.MethodGet)

	server := &http.Server{
		Addr:              address,
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           handlers.LoggingHandler(os.Stdout, r),
	}
	logger.Info("starting server", zap.String("address", address), zap.Bool("propagate_auth_header", config.PropagateAuthHeader))
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel
	return cfg.Build()
}

func helloWorld(w http.ResponseWriter, r *http.Request) {
	execCtx, _ := auth.ExecutionContextFromCtx(r)
	if _, ok := auth.TokenFromCtx(r); ok {
		_, _ = fmt.Fprintf(w, "Hello world!\nYour request %s carries an access token", execCtx.ID())
	} else {
		_, _ = fmt.Fprintf(w, "Missing token in context")
	}
}

// saslHandler takes the raw SASL client response as body
func saslHandler(m *auth.Middleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxClientResponseBytes))
		if err != nil {
			http.Error(w, "cannot read client response", http.StatusBadRequest)
			return
		}
		_, err = m.AuthenticateConnection(mux.Vars(r)["mechanism"], body)
		switch {
		case err == nil:
			_, _ = fmt.Fprintln(w, "client response carries an access token")
		case errors.Is(err, sasl.ErrUnsupportedMechanism), errors.Is(err, sasl.ErrMalformedClientResponse):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			auth.DefaultErrorHandler(w, r, err)
		}
	}
}
