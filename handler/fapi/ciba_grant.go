// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package fapi

import (
	"context"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/x/errorsx"
)

// NewCibaGrantVerifier returns the FAPI-CIBA rule set applied at token
// exchange time, after the base backchannel grant checks have passed.
func NewCibaGrantVerifier(config Configurator) *GrantVerifierChain {
	v := &cibaGrantVerifier{Config: config}

	return &GrantVerifierChain{
		Rules: []GrantRule{
			{Name: "sender_constrained_access_token", Verify: v.verifyCertificatePresented},
			{Name: "holder_of_key_client_auth", Verify: v.verifyAuthenticationType},
			{Name: "assertion_signing_alg", Verify: v.verifyAssertionAlgorithm},
			{Name: "assertion_key_size", Verify: v.verifyAssertionKeySize},
		},
	}
}

type cibaGrantVerifier struct {
	Config Configurator
}

func (v *cibaGrantVerifier) verifyCertificatePresented(_ context.Context, credentials oidc.ClientCredentials) error {
	if !credentials.CertificatePresented {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("Sender-constrained access tokens are mandatory, but the request presented no client certificate."))
	}

	return nil
}

func (v *cibaGrantVerifier) verifyAuthenticationType(_ context.Context, credentials oidc.ClientCredentials) error {
	if credentials.Type.IsSecretBased() || !credentials.IsConfidential() {
		return errorsx.WithStack(oidc.ErrTokenUnauthorizedClient.WithHintf("The client authentication method '%s' is not allowed, only 'private_key_jwt', 'tls_client_auth', and 'self_signed_tls_client_auth' are.", credentials.Type))
	}

	return nil
}

func (v *cibaGrantVerifier) verifyAssertionAlgorithm(_ context.Context, credentials oidc.ClientCredentials) error {
	if credentials.Type != oidc.AuthenticationTypePrivateKeyJWT {
		return nil
	}

	switch credentials.AssertionAlgorithm {
	case algPS256, algES256:
		return nil
	default:
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The client assertion is signed with '%s', but must be signed with PS256 or ES256.", credentials.AssertionAlgorithm))
	}
}

func (v *cibaGrantVerifier) verifyAssertionKeySize(_ context.Context, credentials oidc.ClientCredentials) error {
	if credentials.Type != oidc.AuthenticationTypePrivateKeyJWT {
		return nil
	}

	switch credentials.AssertionAlgorithm {
	case algPS256:
		if credentials.AssertionKeyBits < minimumRSAKeyBits {
			return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The client assertion is signed with an RSA key of %d bits, but PS256 requires 2048 bits or larger.", credentials.AssertionKeyBits))
		}
	case algES256:
		if credentials.AssertionKeyBits < minimumECKeyBits {
			return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The client assertion is signed with an EC key of %d bits, but ES256 requires 160 bits or larger.", credentials.AssertionKeyBits))
		}
	}

	return nil
}
