// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package fapi

import (
	"context"
	"time"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/x/errorsx"
)

const (
	// requestObjectValidityWindow is the longest validity window FAPI allows a
	// request object: exp may not be more than 60 minutes after nbf, and nbf may
	// not be more than 60 minutes in the past.
	requestObjectValidityWindow = time.Minute * 60

	minimumRSAKeyBits = 2048
	minimumECKeyBits  = 160
)

const (
	algPS256 = "PS256"
	algES256 = "ES256"
)

// NewAdvanceVerifier returns the FAPI Advance rule set: the base rules plus
// the Advance specific hardening applied to signed request objects, client
// authentication, and token binding.
func NewAdvanceVerifier(config Configurator) *RequestVerifierChain {
	base := NewBaseVerifier(config)
	v := &advanceVerifier{Config: config}

	return &RequestVerifierChain{
		Rules: append(base.Rules,
			RequestRule{Name: "signed_request_object_required", Verify: v.verifySignedRequestObject},
			RequestRule{Name: "request_object_validity_window", Verify: v.verifyValidityWindow},
			RequestRule{Name: "request_object_signing_alg", Verify: v.verifySigningAlgorithm},
			RequestRule{Name: "request_object_key_size", Verify: v.verifyKeySize},
			RequestRule{Name: "client_auth_method", Verify: v.verifyAuthenticationMethod},
			RequestRule{Name: "sender_constrained_tokens", Verify: v.verifySenderConstrainedTokens},
		),
	}
}

type advanceVerifier struct {
	Config Configurator
}

func (v *advanceVerifier) verifySignedRequestObject(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifySignedRequestObject(rctx)
}

func (v *advanceVerifier) verifyValidityWindow(ctx context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifyRequestObjectValidityWindow(v.Config.GetClock(ctx), rctx.RequestObject())
}

func (v *advanceVerifier) verifySigningAlgorithm(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifyRequestObjectSigningAlgorithm(rctx.RequestObject())
}

func (v *advanceVerifier) verifyKeySize(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifyRequestObjectKeySize(rctx.RequestObject())
}

func (v *advanceVerifier) verifyAuthenticationMethod(_ context.Context, _ *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error {
	return verifyHolderOfKeyAuthenticationMethod(credentials)
}

func (v *advanceVerifier) verifySenderConstrainedTokens(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifySenderConstrainedTokens(rctx)
}

// The checks below are shared between the FAPI Advance and FAPI-CIBA rule
// sets, which impose identical request object and client requirements.

func verifySignedRequestObject(rctx *oidc.AuthorizationRequestContext) error {
	if rctx.Pattern() != oidc.RequestPatternRequestObject {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The authorization parameters must be conveyed in a signed request object via the 'request' parameter."))
	}

	if rctx.IsUnsignedRequestObject() {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object must be signed, but it carries no JWS."))
	}

	return nil
}

func verifyRequestObjectIssuedAt(requestObject *oidc.RequestObject) error {
	if _, ok := requestObject.Claims.IssuedAt(); !ok {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object must contain an 'iat' claim."))
	}

	return nil
}

func verifyRequestObjectValidityWindow(clock oidc.ClockProvider, requestObject *oidc.RequestObject) error {
	exp, ok := requestObject.Claims.ExpiresAt()
	if !ok {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object must contain an 'exp' claim."))
	}

	nbf, ok := requestObject.Claims.NotBefore()
	if !ok {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object must contain an 'nbf' claim."))
	}

	if !exp.After(nbf) {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object 'exp' claim must be after the 'nbf' claim."))
	}

	if exp.Sub(nbf) > requestObjectValidityWindow {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object 'exp' claim must not be more than 60 minutes after the 'nbf' claim."))
	}

	if now := clock.Now(); now.Sub(nbf) > requestObjectValidityWindow {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object 'nbf' claim must not be more than 60 minutes in the past."))
	}

	return nil
}

func verifyRequestObjectSigningAlgorithm(requestObject *oidc.RequestObject) error {
	switch requestObject.Algorithm {
	case algPS256, algES256:
		return nil
	default:
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The request object is signed with '%s', but must be signed with PS256 or ES256.", requestObject.Algorithm))
	}
}

func verifyRequestObjectKeySize(requestObject *oidc.RequestObject) error {
	switch requestObject.Algorithm {
	case algPS256:
		if requestObject.KeyBits() < minimumRSAKeyBits {
			return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The request object is signed with an RSA key of %d bits, but PS256 requires 2048 bits or larger.", requestObject.KeyBits()))
		}
	case algES256:
		if requestObject.KeyBits() < minimumECKeyBits {
			return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The request object is signed with an EC key of %d bits, but ES256 requires 160 bits or larger.", requestObject.KeyBits()))
		}
	}

	return nil
}

func verifyHolderOfKeyAuthenticationMethod(credentials oidc.ClientCredentials) error {
	switch credentials.Type {
	case oidc.AuthenticationTypePrivateKeyJWT, oidc.AuthenticationTypeTLSClientAuth, oidc.AuthenticationTypeSelfSignedTLSClientAuth:
		return nil
	default:
		return errorsx.WithStack(oidc.ErrInvalidClient.WithHintf("The client authentication method '%s' is not allowed, only 'private_key_jwt', 'tls_client_auth', and 'self_signed_tls_client_auth' are.", credentials.Type))
	}
}

func verifySenderConstrainedTokens(rctx *oidc.AuthorizationRequestContext) error {
	if !rctx.CertificateBoundAccessTokens() {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("Sender-constrained access tokens are mandatory, but the server or client configuration does not enable certificate bound access tokens."))
	}

	return nil
}
