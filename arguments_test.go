// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArguments(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected Arguments
	}{
		{"ShouldParseSpaceDelimitedValues", "openid accounts", Arguments{"openid", "accounts"}},
		{"ShouldCollapseDuplicatesKeepingFirstSeenOrder", "openid accounts openid", Arguments{"openid", "accounts"}},
		{"ShouldHandleMixedWhitespace", " openid\taccounts\npayments ", Arguments{"openid", "accounts", "payments"}},
		{"ShouldReturnNilForEmptyValue", "", nil},
		{"ShouldReturnNilForWhitespaceOnlyValue", "   ", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseArguments(tc.value))
		})
	}
}

func TestArgumentsMatches(t *testing.T) {
	args := Arguments{"openid", "accounts"}

	assert.True(t, args.Matches("accounts", "openid"))
	assert.False(t, args.Matches("openid"))
	assert.False(t, args.Matches("openid", "accounts", "payments"))
	assert.False(t, args.Matches("openid", "openid"))
}

func TestArgumentsHas(t *testing.T) {
	args := Arguments{"openid", "accounts"}

	assert.True(t, args.Has("openid"))
	assert.True(t, args.Has("openid", "accounts"))
	assert.False(t, args.Has("payments"))
	assert.False(t, args.Has("openid", "payments"))
}

func TestArgumentsHasOneOf(t *testing.T) {
	args := Arguments{"openid", "accounts"}

	assert.True(t, args.HasOneOf("payments", "accounts"))
	assert.False(t, args.HasOneOf("payments", "photos"))
	assert.False(t, args.HasOneOf())
}

func TestArgumentsExactOne(t *testing.T) {
	assert.True(t, Arguments{"code"}.ExactOne("code"))
	assert.False(t, Arguments{"code", "token"}.ExactOne("code"))
	assert.False(t, Arguments{"token"}.ExactOne("code"))
}

func TestArgumentsMatchesExact(t *testing.T) {
	args := Arguments{"code", "id_token"}

	assert.True(t, args.MatchesExact("code", "id_token"))
	assert.False(t, args.MatchesExact("id_token", "code"))
	assert.False(t, args.MatchesExact("code"))
}

func TestRemoveEmpty(t *testing.T) {
	assert.Equal(t, []string{"code", "id_token"}, RemoveEmpty([]string{"code", "", "  ", "id_token"}))
	assert.Nil(t, RemoveEmpty([]string{"", " "}))
}
