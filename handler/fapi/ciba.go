// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package fapi

import (
	"context"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/internal/consts"
	"github.com/gatekit/oidc/x/errorsx"
)

// NewCibaVerifier returns the FAPI-CIBA rule set applied when a backchannel
// authentication request is accepted. The rule order is fixed; conformance
// suites check both the order and the exact error codes.
func NewCibaVerifier(config Configurator) *RequestVerifierChain {
	v := &cibaVerifier{Config: config}

	return &RequestVerifierChain{
		Rules: []RequestRule{
			{Name: "signed_request_object_required", Verify: v.verifySignedRequestObject},
			{Name: "request_object_iat", Verify: v.verifyIssuedAt},
			{Name: "request_object_validity_window", Verify: v.verifyValidityWindow},
			{Name: "request_object_signing_alg", Verify: v.verifySigningAlgorithm},
			{Name: "request_object_key_size", Verify: v.verifyKeySize},
			{Name: "confidential_client_required", Verify: v.verifyConfidentialClient},
			{Name: "binding_message_required", Verify: v.verifyBindingMessage},
			{Name: "push_delivery_prohibited", Verify: v.verifyDeliveryMode},
			{Name: "client_auth_method", Verify: v.verifyAuthenticationMethod},
			{Name: "request_object_aud", Verify: v.verifyAudience},
			{Name: "sender_constrained_tokens", Verify: v.verifySenderConstrainedTokens},
		},
	}
}

type cibaVerifier struct {
	Config Configurator
}

func (v *cibaVerifier) verifySignedRequestObject(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifySignedRequestObject(rctx)
}

func (v *cibaVerifier) verifyIssuedAt(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifyRequestObjectIssuedAt(rctx.RequestObject())
}

func (v *cibaVerifier) verifyValidityWindow(ctx context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifyRequestObjectValidityWindow(v.Config.GetClock(ctx), rctx.RequestObject())
}

func (v *cibaVerifier) verifySigningAlgorithm(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifyRequestObjectSigningAlgorithm(rctx.RequestObject())
}

func (v *cibaVerifier) verifyKeySize(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifyRequestObjectKeySize(rctx.RequestObject())
}

func (v *cibaVerifier) verifyConfidentialClient(_ context.Context, _ *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error {
	if !credentials.IsConfidential() {
		return errorsx.WithStack(oidc.ErrInvalidClient.WithHint("Public clients are not allowed to make backchannel authentication requests."))
	}

	return nil
}

func (v *cibaVerifier) verifyBindingMessage(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	if rctx.HasAuthorizationDetails() {
		return nil
	}

	if rctx.BindingMessage() == "" {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The backchannel authentication request must contain a 'binding_message' when no 'authorization_details' are present."))
	}

	return nil
}

func (v *cibaVerifier) verifyDeliveryMode(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	client, ok := rctx.Client().(oidc.BackchannelClient)
	if !ok {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The OAuth 2.0 Client with id '%s' is not registered for the backchannel authentication grant.", rctx.Client().GetID()))
	}

	if client.GetBackchannelTokenDeliveryMode() == consts.DeliveryModePush {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The push token delivery mode is prohibited under the FAPI-CIBA profile."))
	}

	return nil
}

func (v *cibaVerifier) verifyAuthenticationMethod(_ context.Context, _ *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error {
	return verifyHolderOfKeyAuthenticationMethod(credentials)
}

func (v *cibaVerifier) verifyAudience(ctx context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	aud, ok := rctx.RequestObject().Claims.Audience()
	if !ok {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request object must contain an 'aud' claim."))
	}

	if issuer := v.Config.GetIssuerURL(ctx); !aud.Has(issuer) {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The request object 'aud' claim must contain the issuer URL '%s'.", issuer))
	}

	return nil
}

func (v *cibaVerifier) verifySenderConstrainedTokens(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	return verifySenderConstrainedTokens(rctx)
}
