// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apigw-policies/oauth2-policy-go/gateway"
)

type metrics struct {
	extractions *prometheus.CounterVec
}

// newMetrics creates the middleware collectors. With a nil registerer they are not registered anywhere.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		extractions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "oauth2_policy",
			Name:      "token_extractions_total",
			Help:      "Access token lookups by transport and by the location the token was found in (none if absent).",
		}, []string{"transport", "source"}),
	}
}

func (m *metrics) observe(transport gateway.Transport, source Source) {
	m.extractions.WithLabelValues(string(transport), source.String()).Inc()
}
