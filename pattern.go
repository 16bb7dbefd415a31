// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"net/url"

	"github.com/gatekit/oidc/internal/consts"
)

// RequestPattern describes how the authorization request parameters were
// delivered: as plain form values, as an inline signed request object, or by
// reference through a request_uri.
type RequestPattern string

const (
	// RequestPatternNormal is a plain OAuth 2.0 request carrying only form values.
	RequestPatternNormal RequestPattern = "normal"

	// RequestPatternRequestObject is a request carrying an inline JWT via the
	// 'request' parameter.
	RequestPatternRequestObject RequestPattern = "request_object"

	// RequestPatternRequestURI is a request carrying a JWT by reference via the
	// 'request_uri' parameter.
	RequestPatternRequestURI RequestPattern = "request_uri"
)

// ClassifyRequestPattern detects the request pattern from the raw form values.
// The 'request' parameter takes priority over 'request_uri' when both are
// present; simultaneous presence is not an error at this stage.
func ClassifyRequestPattern(form url.Values) RequestPattern {
	switch {
	case form.Get(consts.FormParameterRequest) != "":
		return RequestPatternRequestObject
	case form.Get(consts.FormParameterRequestURI) != "":
		return RequestPatternRequestURI
	default:
		return RequestPatternNormal
	}
}

// IsRequestParameterPattern returns true when the pattern carries a JWT,
// inline or by reference.
func (p RequestPattern) IsRequestParameterPattern() bool {
	return p == RequestPatternRequestObject || p == RequestPatternRequestURI
}

// String implements fmt.Stringer.
func (p RequestPattern) String() string {
	return string(p)
}
