// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package ciba_test

import (
	"context"
	stderr "errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/handler/ciba"
	"github.com/gatekit/oidc/handler/fapi"
	"github.com/gatekit/oidc/storage"
)

func newHandlerConfig(clock *oidc.FixedClock) *oidc.Config {
	return &oidc.Config{
		IssuerURL: "https://op.example.com",
		Clock:     clock,
		ProfileCapabilities: oidc.ProfileCapabilities{
			FAPIAdvanceEnabled: true,
			FAPIAdvanceScopes:  oidc.Arguments{"payments"},
		},
		SupportedResponseTypes:              oidc.Arguments{"code"},
		SupportedResponseModes:              oidc.Arguments{"query", "fragment"},
		CertificateBoundAccessTokensEnabled: true,
		BackchannelGrantLifespan:            time.Minute * 5,
		BackchannelTokenPollingInterval:     time.Second * 5,
	}
}

func newBackchannelContext(config *oidc.Config) *oidc.AuthorizationRequestContext {
	client := &oidc.DefaultClient{
		ID:                           "client",
		RedirectURIs:                 []string{"https://rp.example.com/callback"},
		Scopes:                       oidc.Arguments{"openid", "payments"},
		CertificateBoundAccessTokens: true,
		BackchannelTokenDeliveryMode: "poll",
	}

	form := url.Values{
		"scope":   {"openid payments"},
		"request": {"<jwt>"},
	}

	requestObject := &oidc.RequestObject{
		Raw:       "<jwt>",
		Signed:    true,
		Algorithm: "PS256",
		Claims: oidc.RequestObjectClaims{
			"scope":           "openid payments",
			"binding_message": "X4-99",
		},
	}

	request := oidc.NewAuthorizationRequest(form, client, time.Now())

	return oidc.NewAuthorizationRequestContext(context.Background(), config, request, requestObject)
}

func TestHandlerAuthenticationRequest(t *testing.T) {
	clock := oidc.NewFixedClock(testNow)
	config := newHandlerConfig(clock)
	store := storage.NewMemoryStore()

	handler := &ciba.Handler{Config: config, Storage: store}

	t.Run("ShouldCreatePendingGrant", func(t *testing.T) {
		response, err := handler.HandleAuthenticationRequest(context.Background(), newBackchannelContext(config), oidc.ClientCredentials{}, "bc-request-1", "tenant-1")
		require.NoError(t, err)

		assert.NotEmpty(t, response.AuthReqID)
		assert.Equal(t, int64(300), response.ExpiresIn)
		assert.Equal(t, int64(5), response.Interval)

		stored, err := store.GetGrant(context.Background(), response.AuthReqID)
		require.NoError(t, err)

		assert.Equal(t, ciba.StatusPending, stored.Status)
		assert.Equal(t, "tenant-1", stored.Tenant)
		assert.Equal(t, "client", stored.Grant.ClientID)
		assert.Equal(t, oidc.Arguments{"openid", "payments"}, stored.Grant.Scopes)
	})

	t.Run("ShouldRunTheVerifierBeforeCreatingAGrant", func(t *testing.T) {
		guarded := &ciba.Handler{Config: config, Storage: store, Verifier: fapi.NewCibaVerifier(config)}

		// The request object lacks the iat/exp/nbf claims the FAPI-CIBA rules
		// mandate, so no grant is created.
		_, err := guarded.HandleAuthenticationRequest(context.Background(), newBackchannelContext(config), oidc.ClientCredentials{Type: oidc.AuthenticationTypeNone}, "bc-request-2", "tenant-1")
		assert.ErrorIs(t, err, oidc.ErrInvalidRequest)
	})
}

func TestHandlerDecisions(t *testing.T) {
	setup := func(t *testing.T) (*ciba.Handler, *oidc.FixedClock, string) {
		clock := oidc.NewFixedClock(testNow)
		config := newHandlerConfig(clock)
		handler := &ciba.Handler{Config: config, Storage: storage.NewMemoryStore()}

		response, err := handler.HandleAuthenticationRequest(context.Background(), newBackchannelContext(config), oidc.ClientCredentials{}, "bc-request-1", "tenant-1")
		require.NoError(t, err)

		return handler, clock, response.AuthReqID
	}

	authentication := oidc.Authentication{Subject: "user", AuthenticatedAt: testNow}

	t.Run("ShouldAuthorizePendingGrantExactlyOnce", func(t *testing.T) {
		handler, _, authReqID := setup(t)

		authorized, err := handler.AuthorizeGrant(context.Background(), authReqID, authentication)
		require.NoError(t, err)
		assert.Equal(t, ciba.StatusAuthorized, authorized.Status)
		assert.Equal(t, "user", authorized.Grant.Subject)

		_, err = handler.AuthorizeGrant(context.Background(), authReqID, authentication)
		assert.ErrorIs(t, err, oidc.ErrConflict)

		_, err = handler.DenyGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrConflict)
	})

	t.Run("ShouldDenyPendingGrant", func(t *testing.T) {
		handler, _, authReqID := setup(t)

		denied, err := handler.DenyGrant(context.Background(), authReqID)
		require.NoError(t, err)
		assert.Equal(t, ciba.StatusDenied, denied.Status)
	})

	t.Run("ShouldRejectDecisionOnExpiredGrant", func(t *testing.T) {
		handler, clock, authReqID := setup(t)

		clock.Advance(time.Minute * 6)

		_, err := handler.AuthorizeGrant(context.Background(), authReqID, authentication)
		assert.ErrorIs(t, err, oidc.ErrExpiredToken)
	})

	t.Run("ShouldRejectDecisionOnUnknownGrant", func(t *testing.T) {
		handler, _, _ := setup(t)

		_, err := handler.AuthorizeGrant(context.Background(), "unknown", authentication)
		assert.ErrorIs(t, err, oidc.ErrNotFound)
	})
}

func TestHandlerPollGrant(t *testing.T) {
	setup := func(t *testing.T) (*ciba.Handler, *oidc.FixedClock, string) {
		clock := oidc.NewFixedClock(testNow)
		config := newHandlerConfig(clock)
		handler := &ciba.Handler{Config: config, Storage: storage.NewMemoryStore()}

		response, err := handler.HandleAuthenticationRequest(context.Background(), newBackchannelContext(config), oidc.ClientCredentials{}, "bc-request-1", "tenant-1")
		require.NoError(t, err)

		return handler, clock, response.AuthReqID
	}

	authentication := oidc.Authentication{Subject: "user", AuthenticatedAt: testNow}

	t.Run("ShouldReportAuthorizationPendingWhileUndecided", func(t *testing.T) {
		handler, _, authReqID := setup(t)

		_, err := handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrAuthorizationPending)
	})

	t.Run("ShouldSlowDownAPollerFasterThanTheInterval", func(t *testing.T) {
		handler, clock, authReqID := setup(t)

		_, err := handler.PollGrant(context.Background(), authReqID)
		require.ErrorIs(t, err, oidc.ErrAuthorizationPending)

		clock.Advance(time.Second * 2)

		_, err = handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrSlowDown)

		clock.Advance(time.Second * 3)

		_, err = handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrAuthorizationPending)
	})

	t.Run("ShouldReportExpiredToken", func(t *testing.T) {
		handler, clock, authReqID := setup(t)

		clock.Advance(time.Minute * 6)

		_, err := handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrExpiredToken)
	})

	t.Run("ShouldReportAccessDeniedAfterDeny", func(t *testing.T) {
		handler, _, authReqID := setup(t)

		_, err := handler.DenyGrant(context.Background(), authReqID)
		require.NoError(t, err)

		_, err = handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrAccessDenied)
	})

	t.Run("ShouldConsumeAuthorizedGrantExactlyOnce", func(t *testing.T) {
		handler, _, authReqID := setup(t)

		_, err := handler.AuthorizeGrant(context.Background(), authReqID, authentication)
		require.NoError(t, err)

		consumed, err := handler.PollGrant(context.Background(), authReqID)
		require.NoError(t, err)
		assert.Equal(t, ciba.StatusAuthorized, consumed.Status)
		assert.Equal(t, "user", consumed.Grant.Subject)

		_, err = handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrNotFound)
	})
}

// faultyDeleteStore injects a failure into DeleteGrant while delegating every
// other operation to the wrapped store.
type faultyDeleteStore struct {
	ciba.Storage

	deleteErr error
}

func (s *faultyDeleteStore) DeleteGrant(ctx context.Context, authReqID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}

	return s.Storage.DeleteGrant(ctx, authReqID)
}

func TestHandlerPollGrantCleanupFailures(t *testing.T) {
	setup := func(t *testing.T) (*ciba.Handler, *faultyDeleteStore, *oidc.FixedClock, string) {
		clock := oidc.NewFixedClock(testNow)
		config := newHandlerConfig(clock)
		store := &faultyDeleteStore{Storage: storage.NewMemoryStore()}
		handler := &ciba.Handler{Config: config, Storage: store}

		response, err := handler.HandleAuthenticationRequest(context.Background(), newBackchannelContext(config), oidc.ClientCredentials{}, "bc-request-1", "tenant-1")
		require.NoError(t, err)

		return handler, store, clock, response.AuthReqID
	}

	errStore := stderr.New("connection reset")

	t.Run("ShouldSurfaceDeleteFailureOnExpiredGrant", func(t *testing.T) {
		handler, store, clock, authReqID := setup(t)

		clock.Advance(time.Minute * 6)
		store.deleteErr = errStore

		_, err := handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, errStore)
	})

	t.Run("ShouldSurfaceDeleteFailureOnDeniedGrant", func(t *testing.T) {
		handler, store, _, authReqID := setup(t)

		_, err := handler.DenyGrant(context.Background(), authReqID)
		require.NoError(t, err)

		store.deleteErr = errStore

		_, err = handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, errStore)
	})

	t.Run("ShouldTolerateAGrantAlreadyRemoved", func(t *testing.T) {
		handler, store, clock, authReqID := setup(t)

		clock.Advance(time.Minute * 6)
		store.deleteErr = oidc.ErrNotFound

		_, err := handler.PollGrant(context.Background(), authReqID)
		assert.ErrorIs(t, err, oidc.ErrExpiredToken)
	})
}
