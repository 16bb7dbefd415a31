// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package ciba

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/x/errorsx"
)

// Status is the lifecycle state of a backchannel authentication grant. It is
// an open string enum; implementations may extend it with additional states,
// the transitions below only concern the four standard ones.
type Status string

const (
	// StatusPending is the initial state of every grant.
	StatusPending Status = "PENDING"

	// StatusAuthorized is reached when the end user approved the request on the
	// authentication device.
	StatusAuthorized Status = "AUTHORIZED"

	// StatusDenied is reached when the end user rejected the request.
	StatusDenied Status = "DENIED"

	// StatusExpired is the implied terminal state once the grant's expiry has
	// passed. It is detected lazily at read time, never written by a sweeper.
	StatusExpired Status = "EXPIRED"
)

// Grant is a backchannel authentication grant: the CIBA counterpart of the
// front channel consent record, extended with the auth_req_id the client polls
// with, the polling discipline, and the lifecycle status. Grants are value
// objects; every transition returns a new Grant and leaves the receiver
// untouched.
type Grant struct {
	// BackchannelAuthenticationRequestID identifies the originating backchannel
	// authentication request.
	BackchannelAuthenticationRequestID string `json:"backchannel_authentication_request_id"`

	// Tenant is the tenant identifier the grant was issued under.
	Tenant string `json:"tenant"`

	// AuthReqID is the opaque identifier the client polls the token endpoint with.
	AuthReqID string `json:"auth_req_id"`

	// Grant is the embedded consent record. Its authentication event is zero
	// until the grant is authorized.
	Grant oidc.AuthorizationGrant `json:"grant"`

	// ExpiresAt is the instant the auth_req_id stops being exchangeable.
	ExpiresAt time.Time `json:"expires_at"`

	// PollingInterval is the minimum interval between token endpoint polls.
	PollingInterval time.Duration `json:"polling_interval"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// LastPolledAt is the instant of the most recent token endpoint poll, zero
	// before the first poll. It is maintained by the store, not by the grant.
	LastPolledAt time.Time `json:"last_polled_at,omitempty"`
}

// NewGrant creates a pending grant for the given backchannel authentication
// request with a fresh auth_req_id.
func NewGrant(requestID, tenant string, grant oidc.AuthorizationGrant, clock oidc.ClockProvider, lifespan, pollingInterval time.Duration) Grant {
	return Grant{
		BackchannelAuthenticationRequestID: requestID,
		Tenant:                             tenant,
		AuthReqID:                          uuid.NewString(),
		Grant:                              grant,
		ExpiresAt:                          clock.Now().Add(lifespan),
		PollingInterval:                    pollingInterval,
		Status:                             StatusPending,
	}
}

// Authorize returns a copy of the grant with status AUTHORIZED and the
// authentication event merged into the embedded consent record. It is legal
// only on a pending grant; any other state fails with a conflict so a decision
// is never overwritten.
func (g Grant) Authorize(authentication oidc.Authentication) (Grant, error) {
	if g.Status != StatusPending {
		return g, errorsx.WithStack(oidc.ErrConflict.WithHintf("The backchannel authentication grant has already been decided with status '%s'.", g.Status))
	}

	g.Grant = g.Grant.WithAuthentication(authentication)
	g.Status = StatusAuthorized

	return g, nil
}

// Deny returns a copy of the grant with status DENIED, under the same
// at-most-once rule as Authorize.
func (g Grant) Deny() (Grant, error) {
	if g.Status != StatusPending {
		return g, errorsx.WithStack(oidc.ErrConflict.WithHintf("The backchannel authentication grant has already been decided with status '%s'.", g.Status))
	}

	g.Status = StatusDenied

	return g, nil
}

// IsExpired reports whether the grant's expiry has passed. Expiry is evaluated
// by every reader; no background process moves grants to EXPIRED.
func (g Grant) IsExpired(clock oidc.ClockProvider) bool {
	return clock.Now().After(g.ExpiresAt)
}

// EffectiveStatus returns the stored status, or EXPIRED once the expiry has
// passed, which shadows any stored state.
func (g Grant) EffectiveStatus(clock oidc.ClockProvider) Status {
	if g.IsExpired(clock) {
		return StatusExpired
	}

	return g.Status
}
