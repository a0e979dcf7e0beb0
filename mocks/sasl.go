// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"sort"
	"strings"

	"github.com/IBM/sarama"
)

// NewOAuthBearerClientResponse builds the OAUTHBEARER initial client response a sarama client sends for token,
// extensions in sorted key order
func NewOAuthBearerClientResponse(token *sarama.AccessToken) []byte {
	var ext strings.Builder
	keys := make([]string, 0, len(token.Extensions))
	for k := range token.Extensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ext.WriteString("\x01" + k + "=" + token.Extensions[k])
	}
	return []byte("n,,\x01" + sarama.SASLExtKeyAuth + "=Bearer " + token.Token + ext.String() + "\x01\x01")
}

// NewPlainClientResponse builds a PLAIN client response
func NewPlainClientResponse(authzID, username, password string) []byte {
	return []byte(authzID + "\x00" + username + "\x00" + password)
}
