// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"

	"github.com/gatekit/oidc/internal/consts"
	"github.com/gatekit/oidc/x/errorsx"
)

// AuthenticationType is the client authentication method used on the current
// request, as determined by the transport layer collaborator.
type AuthenticationType string

const (
	AuthenticationTypeClientSecretBasic       AuthenticationType = consts.ClientAuthMethodClientSecretBasic
	AuthenticationTypeClientSecretPost        AuthenticationType = consts.ClientAuthMethodClientSecretPost
	AuthenticationTypeClientSecretJWT         AuthenticationType = consts.ClientAuthMethodClientSecretJWT
	AuthenticationTypePrivateKeyJWT           AuthenticationType = consts.ClientAuthMethodPrivateKeyJWT
	AuthenticationTypeTLSClientAuth           AuthenticationType = consts.ClientAuthMethodTLSClientAuth
	AuthenticationTypeSelfSignedTLSClientAuth AuthenticationType = consts.ClientAuthMethodSelfSignedTLSClientAuth
	AuthenticationTypeNone                    AuthenticationType = consts.ClientAuthMethodNone
)

// String implements fmt.Stringer.
func (t AuthenticationType) String() string {
	return string(t)
}

// IsSecretBased returns true for the methods which prove possession of a
// shared client secret rather than a private key or certificate.
func (t AuthenticationType) IsSecretBased() bool {
	switch t {
	case AuthenticationTypeClientSecretBasic, AuthenticationTypeClientSecretPost, AuthenticationTypeClientSecretJWT:
		return true
	default:
		return false
	}
}

// ClientCredentials describes how the client authenticated on the current
// request. It is supplied by the transport layer which terminates mutual TLS
// and parses client assertions; this package only reads it.
type ClientCredentials struct {
	// Type is the authentication method used on this request.
	Type AuthenticationType

	// CertificatePresented is true when the request carried a client certificate.
	CertificatePresented bool

	// AssertionAlgorithm is the JWS alg of the client assertion when Type is one of the
	// JWT methods, otherwise empty.
	AssertionAlgorithm string

	// AssertionKeyBits is the size in bits of the key the client assertion verified
	// against: the modulus size for RSA keys and the curve field size for EC keys.
	AssertionKeyBits int
}

// IsConfidential returns false when the client did not authenticate at all.
func (c ClientCredentials) IsConfidential() bool {
	return c.Type != AuthenticationTypeNone && c.Type != ""
}

// NewSecretClientCredentials builds the ClientCredentials for a request which
// authenticated with one of the secret-based methods, comparing rawSecret
// against the client's registered secret.
func NewSecretClientCredentials(ctx context.Context, client Client, method AuthenticationType, rawSecret []byte) (credentials ClientCredentials, err error) {
	if !method.IsSecretBased() {
		return credentials, errorsx.WithStack(ErrInvalidClient.WithHintf("The client authentication method '%s' is not secret based.", method))
	}

	c, ok := client.(SecretClient)
	if !ok || c.GetClientSecret() == nil || !c.GetClientSecret().Valid() {
		return credentials, errorsx.WithStack(ErrInvalidClient.WithHint("The OAuth 2.0 Client has no client secret registered."))
	}

	if err = c.GetClientSecret().Compare(ctx, rawSecret); err != nil {
		return credentials, errorsx.WithStack(ErrInvalidClient.WithHint("The provided client secret did not match the registered client secret.").WithWrap(err).WithDebugError(err))
	}

	return ClientCredentials{Type: method}, nil
}
