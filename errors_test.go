// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFC6749ErrorStatusCodes(t *testing.T) {
	testCases := []struct {
		err      *RFC6749Error
		name     string
		expected int
	}{
		{ErrInvalidRequest, "invalid_request", http.StatusBadRequest},
		{ErrInvalidClient, "invalid_client", http.StatusUnauthorized},
		{ErrUnauthorizedClient, "unauthorized_client", http.StatusBadRequest},
		{ErrTokenUnauthorizedClient, "unauthorized_client", http.StatusUnauthorized},
		{ErrInvalidScope, "invalid_scope", http.StatusBadRequest},
		{ErrAccessDenied, "access_denied", http.StatusForbidden},
		{ErrInvalidAuthDetails, "invalid_authorization_details", http.StatusBadRequest},
		{ErrAuthorizationPending, "authorization_pending", http.StatusBadRequest},
		{ErrSlowDown, "slow_down", http.StatusBadRequest},
		{ErrExpiredToken, "expired_token", http.StatusBadRequest},
		{ErrNotFound, "not_found", http.StatusNotFound},
		{ErrConflict, "conflict", http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("ShouldMap%sTo%d", tc.name, tc.expected), func(t *testing.T) {
			assert.Equal(t, tc.name, tc.err.Error())
			assert.Equal(t, tc.expected, tc.err.StatusCode())
		})
	}
}

func TestRFC6749ErrorIs(t *testing.T) {
	t.Run("ShouldMatchDerivedErrorByNameAndCode", func(t *testing.T) {
		err := ErrInvalidRequest.WithHint("The request object must contain an 'exp' claim.")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("ShouldMatchThroughStackWrapping", func(t *testing.T) {
		err := errors.WithStack(ErrConflict.WithHint("Already decided."))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("ShouldDistinguishAuthorizeAndTokenUnauthorizedClient", func(t *testing.T) {
		// Same error name, different status code.
		assert.NotErrorIs(t, ErrUnauthorizedClient, ErrTokenUnauthorizedClient)
	})

	t.Run("ShouldNotMatchDifferentError", func(t *testing.T) {
		assert.NotErrorIs(t, ErrInvalidRequest.WithHint("hint"), ErrInvalidClient)
	})
}

func TestRFC6749ErrorHintsAndDebug(t *testing.T) {
	t.Run("ShouldNotMutateTheSentinel", func(t *testing.T) {
		derived := ErrInvalidRequest.WithHint("A hint.")
		assert.Equal(t, "A hint.", derived.HintField)
		assert.Empty(t, ErrInvalidRequest.HintField)
	})

	t.Run("ShouldCombineDescriptionAndHint", func(t *testing.T) {
		derived := ErrInvalidScope.WithHint("The scope 'payments' is not allowed.")
		assert.Equal(t, ErrInvalidScope.DescriptionField+" The scope 'payments' is not allowed.", derived.GetDescription())
	})

	t.Run("ShouldHideDebugUnlessExposed", func(t *testing.T) {
		derived := ErrServerError.WithDebug("connection refused")
		assert.NotContains(t, derived.GetDescription(), "connection refused")
		assert.Contains(t, derived.WithExposeDebug(true).GetDescription(), "connection refused")
	})

	t.Run("ShouldReplaceDoubleQuotesInDescription", func(t *testing.T) {
		derived := ErrInvalidRequest.WithHint(`The parameter "scope" is malformed.`)
		assert.Contains(t, derived.GetDescription(), "'scope'")
		assert.NotContains(t, derived.GetDescription(), `"scope"`)
	})
}

func TestRFC6749ErrorWireEncoding(t *testing.T) {
	derived := ErrAuthorizationPending.WithHint("Poll again after the interval.")

	t.Run("ShouldMarshalJSONWithErrorAndDescription", func(t *testing.T) {
		raw, err := json.Marshal(derived)
		require.NoError(t, err)

		var decoded map[string]string
		require.NoError(t, json.Unmarshal(raw, &decoded))

		assert.Equal(t, "authorization_pending", decoded["error"])
		assert.Contains(t, decoded["error_description"], "Poll again after the interval.")
		assert.Len(t, decoded, 2)
	})

	t.Run("ShouldEncodeToRedirectValues", func(t *testing.T) {
		values := derived.ToValues()
		assert.Equal(t, "authorization_pending", values.Get("error"))
		assert.NotEmpty(t, values.Get("error_description"))
	})
}

func TestErrorToRFC6749Error(t *testing.T) {
	t.Run("ShouldUnwrapKnownError", func(t *testing.T) {
		err := errors.WithStack(ErrSlowDown.WithHint("Too fast."))
		assert.Equal(t, "slow_down", ErrorToRFC6749Error(err).Error())
	})

	t.Run("ShouldFallBackToGenericErrorForUnknownValues", func(t *testing.T) {
		converted := ErrorToRFC6749Error(errors.New("boom"))
		assert.Equal(t, "error", converted.Error())
		assert.Equal(t, http.StatusInternalServerError, converted.StatusCode())
		assert.Equal(t, "boom", converted.Debug())
	})
}
