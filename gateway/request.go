// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Headers is a read-only, case-insensitive multi-value view on request headers.
type Headers interface {
	// GetAll returns every value of the header name in request order, nil if there is none
	GetAll(name string) []string
}

// Parameters is a read-only multi-value view on request parameters.
type Parameters interface {
	// GetFirst returns the first value of the parameter name and whether one exists
	GetFirst(name string) (string, bool)
}

// Request is the request abstraction handed to policies. Headers and Parameters may return nil.
type Request interface {
	Headers() Headers
	Parameters() Parameters
}

// HTTPHeaders implements Headers on top of http.Header
type HTTPHeaders http.Header

// GetAll collects the values stored under the canonical form of name first.
// Keys which were set without canonicalization (e.g. by assigning the map directly)
// and match name under case folding follow in sorted key order.
func (h HTTPHeaders) GetAll(name string) []string {
	if len(h) == 0 {
		return nil
	}
	canonical := textproto.CanonicalMIMEHeaderKey(name)
	values := append([]string(nil), h[canonical]...)

	var others []string
	for key := range h {
		if key != canonical && strings.EqualFold(key, name) {
			others = append(others, key)
		}
	}
	sort.Strings(others)
	for _, key := range others {
		values = append(values, h[key]...)
	}

	if len(values) == 0 {
		return nil
	}
	return values
}

// QueryParameters implements Parameters on top of url.Values. Names are case-sensitive.
type QueryParameters url.Values

// GetFirst returns the first value of name. A parameter given without value (?name= or ?name)
// is present with an empty value.
func (p QueryParameters) GetFirst(name string) (string, bool) {
	values, ok := p[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

type httpRequest struct {
	headers    Headers
	parameters Parameters
}

// NewRequest adapts a net/http request. The headers and the query parameters of r are
// exposed as they are, nothing is copied. A nil header map or URL results in nil views.
func NewRequest(r *http.Request) Request {
	req := &httpRequest{}
	if r == nil {
		return req
	}
	if r.Header != nil {
		req.headers = HTTPHeaders(r.Header)
	}
	if r.URL != nil {
		req.parameters = QueryParameters(r.URL.Query())
	}
	return req
}

// NewRawRequest builds a Request from already parsed headers and parameters, both may be nil.
func NewRawRequest(headers http.Header, parameters url.Values) Request {
	req := &httpRequest{}
	if headers != nil {
		req.headers = HTTPHeaders(headers)
	}
	if parameters != nil {
		req.parameters = QueryParameters(parameters)
	}
	return req
}

func (r *httpRequest) Headers() Headers {
	return r.headers
}

func (r *httpRequest) Parameters() Parameters {
	return r.parameters
}
