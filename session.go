// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"
	"strings"
	"time"

	"github.com/gatekit/oidc/x/errorsx"
)

// SessionKey is the composite identity an authenticated session is stored
// under. It serializes as 'issuer:client_id' and parses back by splitting on
// the first ':', so issuer URLs containing ':' round-trip as long as the same
// first-colon semantics are used on both sides.
type SessionKey struct {
	Issuer   string
	ClientID string
}

// NewSessionKey returns the SessionKey for the issuer and client id pair.
func NewSessionKey(issuer, clientID string) SessionKey {
	return SessionKey{Issuer: issuer, ClientID: clientID}
}

// ParseSessionKey parses the stable string encoding produced by String.
func ParseSessionKey(value string) (key SessionKey, err error) {
	issuer, clientID, found := strings.Cut(value, ":")
	if !found {
		return key, errorsx.WithStack(ErrInvalidRequest.WithHintf("Session key '%s' is not in the 'issuer:client_id' format.", value))
	}

	return SessionKey{Issuer: issuer, ClientID: clientID}, nil
}

// String returns the stable string encoding used for storage lookups.
func (k SessionKey) String() string {
	return k.Issuer + ":" + k.ClientID
}

// Authentication is the record of a single end-user authentication event.
type Authentication struct {
	// Subject is the identifier of the authenticated end-user.
	Subject string `json:"subject"`

	// AuthenticatedAt is the instant the authentication event happened.
	AuthenticatedAt time.Time `json:"authenticated_at"`

	// ContextClassReference is the acr value satisfied by the event.
	ContextClassReference string `json:"acr,omitempty"`

	// MethodReferences are the amr values describing how the user authenticated.
	MethodReferences Arguments `json:"amr,omitempty"`
}

// Session is a previously established authenticated session which may satisfy
// a new authorization request without fresh end-user interaction. Sessions are
// owned by the session store and read-only to this package.
type Session struct {
	// Key is the identity the session is stored under.
	Key SessionKey `json:"key"`

	// Subject is the identifier of the authenticated end-user.
	Subject string `json:"subject"`

	// Authentication is the event which established the session.
	Authentication Authentication `json:"authentication"`
}

// IsValid reports whether the session still satisfies the freshness
// requirement of the request: false once now exceeds the authentication time
// plus the requested max_age. A zero max_age imposes no freshness constraint.
func (s *Session) IsValid(clock ClockProvider, request *AuthorizationRequest) bool {
	maxAge := request.GetMaxAge()
	if maxAge <= 0 {
		return true
	}

	return !clock.Now().After(s.Authentication.AuthenticatedAt.Add(time.Duration(maxAge) * time.Second))
}

// SessionStorage is the external session store collaborator.
type SessionStorage interface {
	// GetSession returns the session stored under key, or ErrNotFound.
	GetSession(ctx context.Context, key SessionKey) (*Session, error)

	// RegisterSession stores the session under its key, replacing any previous one.
	RegisterSession(ctx context.Context, session *Session) error
}
