// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"github.com/mohae/deepcopy"
)

// AuthorizationGrant is the materialized consent and identity record produced
// once an authorization request has been authorized. It is immutable after
// construction and consumed when a code or token is minted.
type AuthorizationGrant struct {
	// Tenant is the tenant identifier the grant was issued under.
	Tenant string `json:"tenant"`

	// Subject is the identifier of the end-user who granted the authorization.
	Subject string `json:"subject"`

	// Authentication is the authentication event backing the grant.
	Authentication Authentication `json:"authentication"`

	// ClientID is the id of the client the grant was issued to.
	ClientID string `json:"client_id"`

	// Scopes are the granted scopes.
	Scopes Arguments `json:"scopes"`

	// IDTokenClaims are the claims to release in the ID token.
	IDTokenClaims map[string]any `json:"id_token_claims,omitempty"`

	// UserinfoClaims are the claims to release at the userinfo endpoint.
	UserinfoClaims map[string]any `json:"userinfo_claims,omitempty"`

	// CustomProperties are caller supplied properties carried through to token issuance.
	CustomProperties map[string]any `json:"custom_properties,omitempty"`

	// AuthorizationDetails is the raw RFC9396 authorization_details value, when present.
	AuthorizationDetails string `json:"authorization_details,omitempty"`

	// ConsentClaims are the claims the end-user explicitly consented to release.
	ConsentClaims Arguments `json:"consent_claims,omitempty"`
}

// WithAuthentication returns a copy of the grant carrying the finalized
// authentication event. The receiver is not modified.
func (g AuthorizationGrant) WithAuthentication(authentication Authentication) AuthorizationGrant {
	g.Authentication = authentication
	g.Subject = authentication.Subject

	return g
}

// Clone returns a deep copy of the grant so callers can not reach through to
// shared claim or property maps.
func (g AuthorizationGrant) Clone() AuthorizationGrant {
	return deepcopy.Copy(g).(AuthorizationGrant)
}
