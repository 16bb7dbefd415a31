// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizationGrantWithAuthentication(t *testing.T) {
	original := AuthorizationGrant{
		Tenant:   "tenant-1",
		ClientID: "client",
		Scopes:   Arguments{"openid", "accounts"},
	}

	authentication := Authentication{
		Subject:         "user",
		AuthenticatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		MethodReferences: Arguments{
			"pwd", "otp",
		},
	}

	finalized := original.WithAuthentication(authentication)

	assert.Equal(t, "user", finalized.Subject)
	assert.Equal(t, authentication, finalized.Authentication)

	t.Run("ShouldNotMutateTheReceiver", func(t *testing.T) {
		assert.Empty(t, original.Subject)
		assert.Empty(t, original.Authentication.Subject)
	})
}

func TestAuthorizationGrantClone(t *testing.T) {
	original := AuthorizationGrant{
		Tenant:           "tenant-1",
		Subject:          "user",
		ClientID:         "client",
		Scopes:           Arguments{"openid"},
		IDTokenClaims:    map[string]any{"name": "Jane Doe"},
		CustomProperties: map[string]any{"department": "treasury"},
	}

	clone := original.Clone()

	assert.Equal(t, original, clone)

	t.Run("ShouldNotShareClaimMaps", func(t *testing.T) {
		clone.IDTokenClaims["name"] = "tampered"
		clone.CustomProperties["department"] = "tampered"

		assert.Equal(t, "Jane Doe", original.IDTokenClaims["name"])
		assert.Equal(t, "treasury", original.CustomProperties["department"])
	})

	t.Run("ShouldNotShareScopeSlice", func(t *testing.T) {
		clone2 := original.Clone()
		clone2.Scopes[0] = "tampered"

		assert.Equal(t, "openid", original.Scopes[0])
	})
}
