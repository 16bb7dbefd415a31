// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package ciba

import (
	"context"
	stderr "errors"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/handler/fapi"
	"github.com/gatekit/oidc/x/errorsx"
)

// Configurator is the configuration surface the handler reads.
type Configurator interface {
	oidc.ClockConfigProvider
	oidc.BackchannelConfigProvider
}

// Handler drives the backchannel authentication grant lifecycle: it accepts
// backchannel authentication requests, records the end user's decision, and
// answers token endpoint polls with the standard CIBA error codes.
type Handler struct {
	Config  Configurator
	Storage Storage

	// Verifier is the rule set run before a grant is created, typically the
	// FAPI-CIBA request verifier. May be nil when no profile rules apply.
	Verifier fapi.RequestVerifier
}

// AuthenticationResponse is the successful backchannel authentication response
// body defined by CIBA Core 1.0 section 7.3.
type AuthenticationResponse struct {
	AuthReqID string `json:"auth_req_id"`
	ExpiresIn int64  `json:"expires_in"`
	Interval  int64  `json:"interval"`
}

// HandleAuthenticationRequest accepts a backchannel authentication request:
// it runs the profile rule set, materializes a pending grant from the request
// context, persists it, and returns the auth_req_id the client polls with.
func (h *Handler) HandleAuthenticationRequest(ctx context.Context, rctx *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials, requestID, tenant string) (*AuthenticationResponse, error) {
	if h.Verifier != nil {
		if err := h.Verifier.Verify(ctx, rctx, credentials); err != nil {
			return nil, err
		}
	}

	var (
		lifespan = h.Config.GetBackchannelGrantLifespan(ctx)
		interval = h.Config.GetBackchannelTokenPollingInterval(ctx)
	)

	// The authentication event stays zero until the end user decides.
	grant := NewGrant(requestID, tenant, rctx.ToGrant(tenant, oidc.Authentication{}, nil), h.Config.GetClock(ctx), lifespan, interval)

	if err := h.Storage.CreateGrant(ctx, grant); err != nil {
		return nil, err
	}

	return &AuthenticationResponse{
		AuthReqID: grant.AuthReqID,
		ExpiresIn: int64(lifespan.Seconds()),
		Interval:  int64(interval.Seconds()),
	}, nil
}

// AuthorizeGrant records the end user's approval on the pending grant stored
// under authReqID. An expired grant fails with expired_token, a decided one
// with a conflict.
func (h *Handler) AuthorizeGrant(ctx context.Context, authReqID string, authentication oidc.Authentication) (Grant, error) {
	stored, err := h.Storage.GetGrant(ctx, authReqID)
	if err != nil {
		return Grant{}, err
	}

	if stored.IsExpired(h.Config.GetClock(ctx)) {
		return Grant{}, errorsx.WithStack(oidc.ErrExpiredToken)
	}

	authorized, err := stored.Authorize(authentication)
	if err != nil {
		return Grant{}, err
	}

	if err = h.Storage.UpdateGrant(ctx, StatusPending, authorized); err != nil {
		return Grant{}, err
	}

	return authorized, nil
}

// DenyGrant records the end user's rejection, under the same rules as
// AuthorizeGrant.
func (h *Handler) DenyGrant(ctx context.Context, authReqID string) (Grant, error) {
	stored, err := h.Storage.GetGrant(ctx, authReqID)
	if err != nil {
		return Grant{}, err
	}

	if stored.IsExpired(h.Config.GetClock(ctx)) {
		return Grant{}, errorsx.WithStack(oidc.ErrExpiredToken)
	}

	denied, err := stored.Deny()
	if err != nil {
		return Grant{}, err
	}

	if err = h.Storage.UpdateGrant(ctx, StatusPending, denied); err != nil {
		return Grant{}, err
	}

	return denied, nil
}

// PollGrant answers a token endpoint poll for authReqID with the standard
// CIBA outcomes: authorization_pending while undecided, slow_down when the
// client polls faster than the grant's interval, expired_token past the
// expiry, access_denied after a rejection, and the consumed grant once
// authorized. An authorized grant is consumed exactly once; a second poll
// misses with not found.
func (h *Handler) PollGrant(ctx context.Context, authReqID string) (Grant, error) {
	stored, err := h.Storage.GetGrant(ctx, authReqID)
	if err != nil {
		return Grant{}, err
	}

	clock := h.Config.GetClock(ctx)
	now := clock.Now()

	if stored.IsExpired(clock) {
		if err = h.deleteGrant(ctx, authReqID); err != nil {
			return Grant{}, err
		}

		return Grant{}, errorsx.WithStack(oidc.ErrExpiredToken)
	}

	if !stored.LastPolledAt.IsZero() && now.Sub(stored.LastPolledAt) < stored.PollingInterval {
		return Grant{}, errorsx.WithStack(oidc.ErrSlowDown)
	}

	switch stored.Status {
	case StatusPending:
		polled := stored
		polled.LastPolledAt = now

		if err = h.Storage.UpdateGrant(ctx, StatusPending, polled); err != nil {
			return Grant{}, err
		}

		return Grant{}, errorsx.WithStack(oidc.ErrAuthorizationPending)
	case StatusDenied:
		if err = h.deleteGrant(ctx, authReqID); err != nil {
			return Grant{}, err
		}

		return Grant{}, errorsx.WithStack(oidc.ErrAccessDenied)
	case StatusAuthorized:
		return h.Storage.GetAndInvalidateGrant(ctx, authReqID)
	default:
		return Grant{}, errorsx.WithStack(oidc.ErrServerError.WithHintf("The backchannel authentication grant is in the unknown state '%s'.", stored.Status))
	}
}

// deleteGrant removes a finished grant, tolerating a concurrent poll having
// already removed it.
func (h *Handler) deleteGrant(ctx context.Context, authReqID string) error {
	if err := h.Storage.DeleteGrant(ctx, authReqID); err != nil && !stderr.Is(err, oidc.ErrNotFound) {
		return err
	}

	return nil
}
