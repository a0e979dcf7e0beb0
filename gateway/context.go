// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package gateway holds the abstractions the gateway runtime hands to policies:
// execution contexts, requests and SASL callbacks.
package gateway

import (
	"github.com/google/uuid"
)

// Transport names the kind of traffic an ExecutionContext belongs to
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportKafka Transport = "kafka"
)

// ExecutionContext is the per request (HTTP) or per connection (Kafka) container passed to policies.
// Implementations are HTTPExecutionContext and KafkaConnectionContext, no others exist.
type ExecutionContext interface {
	// ID identifies the request or connection, e.g. for log correlation
	ID() string
	Transport() Transport
	executionContext()
}

// HTTPExecutionContext is the execution context of a single HTTP request
type HTTPExecutionContext struct {
	id      string
	request Request
}

// NewHTTPExecutionContext creates an execution context with a random ID for the request
func NewHTTPExecutionContext(request Request) *HTTPExecutionContext {
	return &HTTPExecutionContext{
		id:      uuid.NewString(),
		request: request,
	}
}

func (c *HTTPExecutionContext) ID() string {
	return c.id
}

func (c *HTTPExecutionContext) Transport() Transport {
	return TransportHTTP
}

// Request returns the inbound request
func (c *HTTPExecutionContext) Request() Request {
	return c.request
}

func (*HTTPExecutionContext) executionContext() {}

// KafkaConnectionContext is the execution context of a Kafka connection during SASL authentication
type KafkaConnectionContext struct {
	id        string
	mechanism string
	callbacks []Callback
}

// NewKafkaConnectionContext creates a connection context for the SASL mechanism and the callbacks
// the SASL layer produced for it
func NewKafkaConnectionContext(mechanism string, callbacks ...Callback) *KafkaConnectionContext {
	return &KafkaConnectionContext{
		id:        uuid.NewString(),
		mechanism: mechanism,
		callbacks: callbacks,
	}
}

func (c *KafkaConnectionContext) ID() string {
	return c.id
}

func (c *KafkaConnectionContext) Transport() Transport {
	return TransportKafka
}

// Mechanism returns the SASL mechanism name, e.g. OAUTHBEARER
func (c *KafkaConnectionContext) Mechanism() string {
	return c.mechanism
}

// Callbacks returns the callbacks in the order the SASL layer produced them
func (c *KafkaConnectionContext) Callbacks() []Callback {
	return c.callbacks
}

func (*KafkaConnectionContext) executionContext() {}
