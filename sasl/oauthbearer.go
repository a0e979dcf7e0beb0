// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package sasl

import (
	"regexp"
	"strings"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/apigw-policies/oauth2-policy-go/gateway"
)

const (
	kvsep   = "\x01"
	authKey = "auth"
	scheme  = "bearer"
)

var (
	extensionKeyPattern   = regexp.MustCompile(`^[A-Za-z]+$`)
	extensionValuePattern = regexp.MustCompile(`^[\x21-\x7E \t\r\n]+$`)
	// b64token of RFC 6750
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9\-._~+/]+=*$`)
)

// ClientResponse is the initial client response of the OAUTHBEARER mechanism (RFC 7628)
type ClientResponse struct {
	AuthorizationID string
	TokenValue      string
	Extensions      map[string]string
}

// ParseOAuthBearer parses an OAUTHBEARER initial client response as sent by Kafka clients:
//
//	n,[a=authzid],^Aauth=Bearer <token>^A[key=value^A]...^A
//
// Errors wrap ErrMalformedClientResponse.
func ParseOAuthBearer(msg []byte) (*ClientResponse, error) {
	s := string(msg)
	headerEnd := strings.Index(s, kvsep)
	if headerEnd < 0 {
		return nil, errors.Wrap(ErrMalformedClientResponse, "missing key/value separator")
	}
	authzID, err := parseGS2Header(s[:headerEnd])
	if err != nil {
		return nil, err
	}

	// every pair ends with a separator and one more terminates the message
	body := strings.TrimSuffix(s[headerEnd+1:], kvsep)
	if len(body) == len(s[headerEnd+1:]) || (body != "" && !strings.HasSuffix(body, kvsep)) {
		return nil, errors.Wrap(ErrMalformedClientResponse, "message must be terminated by a key/value separator")
	}

	resp := &ClientResponse{AuthorizationID: authzID, Extensions: map[string]string{}}
	seen := map[string]bool{}
	for _, kv := range splitPairs(body) {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return nil, errors.Wrapf(ErrMalformedClientResponse, "key/value pair without '=': %q", kv)
		}
		if seen[key] {
			return nil, errors.Wrapf(ErrMalformedClientResponse, "duplicate key %q", key)
		}
		seen[key] = true

		if key == authKey {
			if resp.TokenValue, err = parseAuthValue(value); err != nil {
				return nil, err
			}
			continue
		}
		if !extensionKeyPattern.MatchString(key) {
			return nil, errors.Wrapf(ErrMalformedClientResponse, "invalid extension name %q", key)
		}
		if !extensionValuePattern.MatchString(value) {
			return nil, errors.Wrapf(ErrMalformedClientResponse, "invalid value of extension %q", key)
		}
		resp.Extensions[key] = value
	}
	if !seen[authKey] {
		return nil, errors.Wrap(ErrMalformedClientResponse, "missing auth key")
	}
	return resp, nil
}

// Callbacks returns the validator callbacks of the response: the plain token first, then the token with its extensions
func (r *ClientResponse) Callbacks() []gateway.Callback {
	extensions := make(map[string]string, len(r.Extensions))
	for k, v := range r.Extensions {
		extensions[k] = v
	}
	return []gateway.Callback{
		gateway.NewBearerValidatorCallback(r.TokenValue),
		gateway.NewBearerExtensionsValidatorCallback(&sarama.AccessToken{
			Token:      r.TokenValue,
			Extensions: extensions,
		}),
	}
}

// parseGS2Header accepts "n,," "y,," and the variants with "a=<authzid>" in the middle. Channel binding is not supported.
func parseGS2Header(header string) (string, error) {
	parts := strings.Split(header, ",")
	if len(parts) != 3 || parts[2] != "" {
		return "", errors.Wrapf(ErrMalformedClientResponse, "invalid GS2 header %q", header)
	}
	if parts[0] != "n" && parts[0] != "y" {
		return "", errors.Wrapf(ErrMalformedClientResponse, "unsupported channel binding flag %q", parts[0])
	}
	if parts[1] == "" {
		return "", nil
	}
	if !strings.HasPrefix(parts[1], "a=") || len(parts[1]) == 2 {
		return "", errors.Wrapf(ErrMalformedClientResponse, "invalid authorization identity %q", parts[1])
	}
	return decodeSaslName(parts[1][2:])
}

// decodeSaslName reverses the escaping of ',' and '=' (RFC 5801)
func decodeSaslName(name string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] != '=' {
			sb.WriteByte(name[i])
			continue
		}
		switch {
		case strings.HasPrefix(name[i:], "=2C"):
			sb.WriteByte(',')
		case strings.HasPrefix(name[i:], "=3D"):
			sb.WriteByte('=')
		default:
			return "", errors.Wrapf(ErrMalformedClientResponse, "invalid escape in authorization identity %q", name)
		}
		i += 2
	}
	return sb.String(), nil
}

func parseAuthValue(value string) (string, error) {
	sch, token, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(sch, scheme) {
		return "", errors.Wrap(ErrMalformedClientResponse, "auth value must use the Bearer scheme")
	}
	token = strings.TrimLeft(token, " ")
	if !tokenPattern.MatchString(token) {
		return "", errors.Wrap(ErrMalformedClientResponse, "auth value holds no valid bearer token")
	}
	return token, nil
}

// splitPairs splits "k=v^Ak=v^A" into its pairs; an empty body yields none
func splitPairs(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(body, kvsep), kvsep)
}
