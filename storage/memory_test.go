// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/handler/ciba"
	"github.com/gatekit/oidc/storage"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newStoredGrant() ciba.Grant {
	return ciba.NewGrant("bc-request-1", "tenant-1", oidc.AuthorizationGrant{
		Tenant:   "tenant-1",
		ClientID: "client",
		Scopes:   oidc.Arguments{"openid"},
	}, oidc.NewFixedClock(testNow), time.Minute*5, time.Second*5)
}

func TestMemoryStoreSessions(t *testing.T) {
	store := storage.NewMemoryStore()
	key := oidc.NewSessionKey("https://op.example.com", "client")

	t.Run("ShouldMissBeforeRegistration", func(t *testing.T) {
		_, err := store.GetSession(context.Background(), key)
		assert.ErrorIs(t, err, oidc.ErrNotFound)
	})

	t.Run("ShouldRoundTripASession", func(t *testing.T) {
		session := &oidc.Session{
			Key:     key,
			Subject: "user",
			Authentication: oidc.Authentication{
				Subject:         "user",
				AuthenticatedAt: testNow,
			},
		}

		require.NoError(t, store.RegisterSession(context.Background(), session))

		found, err := store.GetSession(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, session, found)
	})

	t.Run("ShouldReplaceAnExistingSession", func(t *testing.T) {
		replacement := &oidc.Session{Key: key, Subject: "other"}

		require.NoError(t, store.RegisterSession(context.Background(), replacement))

		found, err := store.GetSession(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, "other", found.Subject)
	})
}

func TestMemoryStoreGrants(t *testing.T) {
	t.Run("ShouldCreateAndGet", func(t *testing.T) {
		store := storage.NewMemoryStore()
		grant := newStoredGrant()

		require.NoError(t, store.CreateGrant(context.Background(), grant))

		found, err := store.GetGrant(context.Background(), grant.AuthReqID)
		require.NoError(t, err)
		assert.Equal(t, grant, found)
	})

	t.Run("ShouldRejectDuplicateAuthReqID", func(t *testing.T) {
		store := storage.NewMemoryStore()
		grant := newStoredGrant()

		require.NoError(t, store.CreateGrant(context.Background(), grant))
		assert.ErrorIs(t, store.CreateGrant(context.Background(), grant), oidc.ErrConflict)
	})

	t.Run("ShouldMissUnknownAuthReqID", func(t *testing.T) {
		store := storage.NewMemoryStore()

		_, err := store.GetGrant(context.Background(), "unknown")
		assert.ErrorIs(t, err, oidc.ErrNotFound)
	})

	t.Run("ShouldUpdateWithMatchingExpectedStatus", func(t *testing.T) {
		store := storage.NewMemoryStore()
		grant := newStoredGrant()

		require.NoError(t, store.CreateGrant(context.Background(), grant))

		authorized, err := grant.Authorize(oidc.Authentication{Subject: "user"})
		require.NoError(t, err)

		require.NoError(t, store.UpdateGrant(context.Background(), ciba.StatusPending, authorized))

		found, err := store.GetGrant(context.Background(), grant.AuthReqID)
		require.NoError(t, err)
		assert.Equal(t, ciba.StatusAuthorized, found.Status)
	})

	t.Run("ShouldLoseTheRaceWithStaleExpectedStatus", func(t *testing.T) {
		store := storage.NewMemoryStore()
		grant := newStoredGrant()

		require.NoError(t, store.CreateGrant(context.Background(), grant))

		authorized, err := grant.Authorize(oidc.Authentication{Subject: "user"})
		require.NoError(t, err)
		require.NoError(t, store.UpdateGrant(context.Background(), ciba.StatusPending, authorized))

		// A second device raced the first and still expects PENDING.
		denied, err := grant.Deny()
		require.NoError(t, err)
		assert.ErrorIs(t, store.UpdateGrant(context.Background(), ciba.StatusPending, denied), oidc.ErrConflict)

		found, err := store.GetGrant(context.Background(), grant.AuthReqID)
		require.NoError(t, err)
		assert.Equal(t, ciba.StatusAuthorized, found.Status)
	})

	t.Run("ShouldConsumeExactlyOnce", func(t *testing.T) {
		store := storage.NewMemoryStore()
		grant := newStoredGrant()

		require.NoError(t, store.CreateGrant(context.Background(), grant))

		consumed, err := store.GetAndInvalidateGrant(context.Background(), grant.AuthReqID)
		require.NoError(t, err)
		assert.Equal(t, grant.AuthReqID, consumed.AuthReqID)

		_, err = store.GetAndInvalidateGrant(context.Background(), grant.AuthReqID)
		assert.ErrorIs(t, err, oidc.ErrNotFound)
	})

	t.Run("ShouldDeleteGrant", func(t *testing.T) {
		store := storage.NewMemoryStore()
		grant := newStoredGrant()

		require.NoError(t, store.CreateGrant(context.Background(), grant))
		require.NoError(t, store.DeleteGrant(context.Background(), grant.AuthReqID))

		assert.ErrorIs(t, store.DeleteGrant(context.Background(), grant.AuthReqID), oidc.ErrNotFound)
	})
}
