// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package sasl turns the SASL client responses received on Kafka connections into the
// callbacks policies inspect through a gateway.KafkaConnectionContext.
package sasl

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/apigw-policies/oauth2-policy-go/gateway"
)

// Supported SASL mechanism names
const (
	MechanismOAuthBearer = "OAUTHBEARER"
	MechanismPlain       = "PLAIN"
)

var (
	// ErrMalformedClientResponse is wrapped by all parse errors
	ErrMalformedClientResponse = errors.New("malformed SASL client response")
	// ErrUnsupportedMechanism is returned for mechanisms other than OAUTHBEARER and PLAIN
	ErrUnsupportedMechanism = errors.New("unsupported SASL mechanism")
)

// PlainResponse is the client response of the PLAIN mechanism (RFC 4616)
type PlainResponse struct {
	AuthorizationID string
	Username        string
	Password        string
}

// ParsePlain parses "[authzid] NUL authcid NUL passwd". Like Kafka brokers, it only accepts an
// authorization identity equal to the authentication identity.
func ParsePlain(msg []byte) (*PlainResponse, error) {
	parts := strings.Split(string(msg), "\x00")
	if len(parts) != 3 {
		return nil, errors.Wrap(ErrMalformedClientResponse, "PLAIN response must consist of three NUL separated fields")
	}
	resp := &PlainResponse{AuthorizationID: parts[0], Username: parts[1], Password: parts[2]}
	if resp.Username == "" || resp.Password == "" {
		return nil, errors.Wrap(ErrMalformedClientResponse, "PLAIN response without username or password")
	}
	if resp.AuthorizationID != "" && resp.AuthorizationID != resp.Username {
		return nil, errors.Wrap(ErrMalformedClientResponse, "authorization identity must match the username")
	}
	return resp, nil
}

// Callbacks returns a name callback followed by a password callback
func (r *PlainResponse) Callbacks() []gateway.Callback {
	return []gateway.Callback{
		&gateway.NameCallback{Name: r.Username},
		&gateway.PlainAuthenticateCallback{Password: []byte(r.Password)},
	}
}

// Callbacks parses clientResponse for mechanism (case-insensitive) and returns the resulting callbacks
func Callbacks(mechanism string, clientResponse []byte) ([]gateway.Callback, error) {
	switch strings.ToUpper(mechanism) {
	case MechanismOAuthBearer:
		resp, err := ParseOAuthBearer(clientResponse)
		if err != nil {
			return nil, err
		}
		return resp.Callbacks(), nil
	case MechanismPlain:
		resp, err := ParsePlain(clientResponse)
		if err != nil {
			return nil, err
		}
		return resp.Callbacks(), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedMechanism, "%q", mechanism)
	}
}

// NewConnectionContext builds the execution context of a Kafka connection authenticating with mechanism
func NewConnectionContext(mechanism string, clientResponse []byte) (*gateway.KafkaConnectionContext, error) {
	callbacks, err := Callbacks(mechanism, clientResponse)
	if err != nil {
		return nil, err
	}
	return gateway.NewKafkaConnectionContext(strings.ToUpper(mechanism), callbacks...), nil
}
