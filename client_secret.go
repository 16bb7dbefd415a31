// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatekit/oidc/x/errorsx"
)

// ClientSecret is a service interface for client secret comparisons.
type ClientSecret interface {
	// Compare returns nil if the secret input matches the expected value, otherwise an
	// error.
	Compare(ctx context.Context, secret []byte) (err error)

	// IsPlainText returns true if this secret is stored in a plaintext format making it
	// usable for the client_secret_jwt authentication method.
	IsPlainText() (is bool)

	// GetPlainTextValue returns the secret in plaintext format when available.
	GetPlainTextValue() (secret []byte, err error)

	// Valid returns false if the secret is nil or otherwise invalid.
	Valid() (valid bool)
}

const DefaultBCryptWorkFactor = 12

// NewBCryptClientSecret returns a new BCryptClientSecret given a hash.
func NewBCryptClientSecret(hash string) *BCryptClientSecret {
	return &BCryptClientSecret{value: []byte(hash)}
}

// NewBCryptClientSecretPlain returns a new BCryptClientSecret given a plaintext secret.
func NewBCryptClientSecretPlain(rawSecret string, cost int) (secret *BCryptClientSecret, err error) {
	if cost == 0 {
		cost = DefaultBCryptWorkFactor
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(rawSecret), cost)
	if err != nil {
		return nil, err
	}

	return &BCryptClientSecret{value: hashed}, nil
}

// BCryptClientSecret is a ClientSecret stored as a bcrypt hash.
type BCryptClientSecret struct {
	value []byte
}

func (s *BCryptClientSecret) IsPlainText() (is bool) {
	return false
}

func (s *BCryptClientSecret) GetPlainTextValue() (secret []byte, err error) {
	return nil, fmt.Errorf("this secret doesn't support plaintext")
}

func (s *BCryptClientSecret) Compare(ctx context.Context, secret []byte) (err error) {
	if err = bcrypt.CompareHashAndPassword(s.value, secret); err != nil {
		return errorsx.WithStack(err)
	}

	return nil
}

func (s *BCryptClientSecret) Valid() (valid bool) {
	return s != nil && len(s.value) != 0
}

// NewPlainTextClientSecret returns a new PlainTextClientSecret given the raw value.
func NewPlainTextClientSecret(value string) *PlainTextClientSecret {
	return &PlainTextClientSecret{value: []byte(value)}
}

// PlainTextClientSecret is a ClientSecret stored in plaintext, required for
// the client_secret_jwt authentication method.
type PlainTextClientSecret struct {
	value []byte
}

func (s *PlainTextClientSecret) IsPlainText() (is bool) {
	return true
}

func (s *PlainTextClientSecret) GetPlainTextValue() (secret []byte, err error) {
	return s.value, nil
}

func (s *PlainTextClientSecret) Compare(ctx context.Context, secret []byte) (err error) {
	if subtle.ConstantTimeCompare(s.value, secret) == 0 {
		return errorsx.WithStack(fmt.Errorf("secrets don't match"))
	}

	return nil
}

func (s *PlainTextClientSecret) Valid() (valid bool) {
	return s != nil && len(s.value) != 0
}

var (
	_ ClientSecret = (*BCryptClientSecret)(nil)
	_ ClientSecret = (*PlainTextClientSecret)(nil)
)
