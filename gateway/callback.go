// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/IBM/sarama"
)

// Callback is handed from the SASL layer of a Kafka connection to the policies.
// The set of implementations is closed, see the types of this file.
type Callback interface {
	callback()
}

// BearerValidatorCallback carries the raw OAUTHBEARER token a client presented.
type BearerValidatorCallback struct {
	tokenValue string
}

// NewBearerValidatorCallback creates a callback for the given compact token value
func NewBearerValidatorCallback(tokenValue string) *BearerValidatorCallback {
	return &BearerValidatorCallback{tokenValue: tokenValue}
}

// TokenValue returns the raw token value
func (c *BearerValidatorCallback) TokenValue() string {
	return c.tokenValue
}

func (*BearerValidatorCallback) callback() {}

// BearerExtensionsValidatorCallback carries the token together with the SASL extensions
// the client sent. Validators report their decision per extension with Valid and Invalid.
type BearerExtensionsValidatorCallback struct {
	token     *sarama.AccessToken
	validated map[string]string
	invalid   map[string]string
}

// NewBearerExtensionsValidatorCallback creates a callback for the token and its extensions (token.Extensions)
func NewBearerExtensionsValidatorCallback(token *sarama.AccessToken) *BearerExtensionsValidatorCallback {
	return &BearerExtensionsValidatorCallback{
		token:     token,
		validated: map[string]string{},
		invalid:   map[string]string{},
	}
}

// Token returns the token wrapper, the raw value is Token().Token
func (c *BearerExtensionsValidatorCallback) Token() *sarama.AccessToken {
	return c.token
}

// InputExtensions returns a copy of the extensions the client sent
func (c *BearerExtensionsValidatorCallback) InputExtensions() map[string]string {
	extensions := map[string]string{}
	if c.token == nil {
		return extensions
	}
	for k, v := range c.token.Extensions {
		extensions[k] = v
	}
	return extensions
}

// Valid marks the input extension name as validated. Unknown names are ignored.
func (c *BearerExtensionsValidatorCallback) Valid(name string) {
	value, ok := c.InputExtensions()[name]
	if !ok {
		return
	}
	delete(c.invalid, name)
	c.validated[name] = value
}

// Invalid marks the extension name as rejected with the given message
func (c *BearerExtensionsValidatorCallback) Invalid(name, message string) {
	delete(c.validated, name)
	c.invalid[name] = message
}

// ValidatedExtensions returns the extensions marked valid so far
func (c *BearerExtensionsValidatorCallback) ValidatedExtensions() map[string]string {
	return copyMap(c.validated)
}

// InvalidExtensions returns the rejected extensions and their messages
func (c *BearerExtensionsValidatorCallback) InvalidExtensions() map[string]string {
	return copyMap(c.invalid)
}

func (*BearerExtensionsValidatorCallback) callback() {}

// NameCallback carries the authentication identity of a SASL/PLAIN exchange
type NameCallback struct {
	Name string
}

func (*NameCallback) callback() {}

// PlainAuthenticateCallback carries the password of a SASL/PLAIN exchange.
// Authenticated is set by the component verifying the credentials.
type PlainAuthenticateCallback struct {
	Password      []byte
	Authenticated bool
}

func (*PlainAuthenticateCallback) callback() {}

func copyMap(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
