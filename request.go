// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"net/url"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v4"

	"github.com/gatekit/oidc/internal/consts"
)

// AuthorizationRequest is the parsed authorization or backchannel
// authentication request as received on the wire, before any profile
// verification has happened.
type AuthorizationRequest struct {
	Form          url.Values `json:"form"`
	Client        Client     `json:"client"`
	RequestedAt   time.Time  `json:"requested_at"`
	ResponseTypes Arguments  `json:"response_types"`
}

// NewAuthorizationRequest parses the raw form values into an
// AuthorizationRequest for the given client.
func NewAuthorizationRequest(form url.Values, client Client, requestedAt time.Time) *AuthorizationRequest {
	return &AuthorizationRequest{
		Form:          form,
		Client:        client,
		RequestedAt:   requestedAt,
		ResponseTypes: RemoveEmpty(ParseArguments(form.Get(consts.FormParameterResponseType))),
	}
}

// GetRedirectURI returns the redirect_uri parameter value verbatim, which may
// be empty.
func (r *AuthorizationRequest) GetRedirectURI() string {
	return r.Form.Get(consts.FormParameterRedirectURI)
}

// GetState returns the state parameter value.
func (r *AuthorizationRequest) GetState() string {
	return r.Form.Get(consts.FormParameterState)
}

// GetMaxAge returns the max_age parameter in seconds. Absent or malformed
// values degrade to zero, which means no re-authentication freshness
// constraint.
func (r *AuthorizationRequest) GetMaxAge() int64 {
	raw := r.Form.Get(consts.FormParameterMaximumAge)
	if raw == "" {
		return 0
	}

	age, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || age < 0 {
		return 0
	}

	return age
}

// GetPrompt returns the prompt parameter split into its space delimited values.
func (r *AuthorizationRequest) GetPrompt() Arguments {
	return ParseArguments(r.Form.Get(consts.FormParameterPrompt))
}

// RequestObjectClaims is the verified claim set of a request object.
type RequestObjectClaims map[string]any

// Scope returns the 'scope' claim.
func (c RequestObjectClaims) Scope() (scope string, ok bool) {
	scope, ok = c[consts.ClaimScope].(string)

	return scope, ok
}

// Issuer returns the 'iss' claim.
func (c RequestObjectClaims) Issuer() (iss string, ok bool) {
	iss, ok = c[consts.ClaimIssuer].(string)

	return iss, ok
}

// Audience returns the 'aud' claim normalized to a list. The claim may be
// encoded as a single string or a list of strings.
func (c RequestObjectClaims) Audience() (aud Arguments, ok bool) {
	switch v := c[consts.ClaimAudience].(type) {
	case string:
		return Arguments{v}, true
	case []string:
		return v, true
	case []any:
		for _, item := range v {
			s, sok := item.(string)
			if !sok {
				return nil, false
			}

			aud = append(aud, s)
		}

		return aud, len(aud) != 0
	default:
		return nil, false
	}
}

// IssuedAt returns the 'iat' claim.
func (c RequestObjectClaims) IssuedAt() (iat time.Time, ok bool) {
	return c.timeClaim(consts.ClaimIssuedAt)
}

// NotBefore returns the 'nbf' claim.
func (c RequestObjectClaims) NotBefore() (nbf time.Time, ok bool) {
	return c.timeClaim(consts.ClaimNotBefore)
}

// ExpiresAt returns the 'exp' claim.
func (c RequestObjectClaims) ExpiresAt() (exp time.Time, ok bool) {
	return c.timeClaim(consts.ClaimExpirationTime)
}

func (c RequestObjectClaims) timeClaim(name string) (t time.Time, ok bool) {
	switch v := c[name].(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case int:
		return time.Unix(int64(v), 0).UTC(), true
	case time.Time:
		return v.UTC(), true
	default:
		return time.Time{}, false
	}
}

// RequestObject is the outcome of resolving and verifying a JAR request
// object, inline or by reference.
type RequestObject struct {
	// Raw is the compact serialization as received.
	Raw string

	// Signed is false when the object carried the 'none' algorithm and therefore no JWS.
	Signed bool

	// Algorithm is the JWS alg header of a signed object.
	Algorithm string

	// Key is the client public key the signature verified against, nil for unsigned
	// objects.
	Key *jose.JSONWebKey

	// Claims are the claims of the object. They are only trustworthy when Signed is true.
	Claims RequestObjectClaims
}

// KeyBits returns the size of the verification key in bits: the modulus size
// for RSA keys and the curve field size for EC keys. Zero when no key is
// attached.
func (o *RequestObject) KeyBits() int {
	if o == nil || o.Key == nil {
		return 0
	}

	switch key := o.Key.Key.(type) {
	case *rsa.PublicKey:
		return key.N.BitLen()
	case rsa.PublicKey:
		return key.N.BitLen()
	case *ecdsa.PublicKey:
		return key.Curve.Params().BitSize
	case ecdsa.PublicKey:
		return key.Curve.Params().BitSize
	default:
		return 0
	}
}
