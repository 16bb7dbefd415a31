// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBCryptClientSecret(t *testing.T) {
	// A low work factor keeps the test fast.
	secret, err := NewBCryptClientSecretPlain("correct horse battery staple", 4)
	require.NoError(t, err)

	t.Run("ShouldCompareEqualSecret", func(t *testing.T) {
		assert.NoError(t, secret.Compare(context.Background(), []byte("correct horse battery staple")))
	})

	t.Run("ShouldRejectWrongSecret", func(t *testing.T) {
		assert.Error(t, secret.Compare(context.Background(), []byte("wrong")))
	})

	t.Run("ShouldNotSupportPlainText", func(t *testing.T) {
		assert.False(t, secret.IsPlainText())

		_, err := secret.GetPlainTextValue()
		assert.Error(t, err)
	})

	t.Run("ShouldBeValidWithValue", func(t *testing.T) {
		assert.True(t, secret.Valid())
		assert.False(t, NewBCryptClientSecret("").Valid())
	})
}

func TestPlainTextClientSecret(t *testing.T) {
	secret := NewPlainTextClientSecret("correct horse battery staple")

	t.Run("ShouldCompareEqualSecret", func(t *testing.T) {
		assert.NoError(t, secret.Compare(context.Background(), []byte("correct horse battery staple")))
	})

	t.Run("ShouldRejectWrongSecret", func(t *testing.T) {
		assert.Error(t, secret.Compare(context.Background(), []byte("wrong")))
	})

	t.Run("ShouldExposePlainTextValue", func(t *testing.T) {
		assert.True(t, secret.IsPlainText())

		value, err := secret.GetPlainTextValue()
		require.NoError(t, err)
		assert.Equal(t, []byte("correct horse battery staple"), value)
	})

	t.Run("ShouldBeInvalidWithoutValue", func(t *testing.T) {
		assert.False(t, NewPlainTextClientSecret("").Valid())
	})
}
