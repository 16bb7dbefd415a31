// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package fapi

import (
	"context"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/x/errorsx"
)

// NewBaseVerifier returns the rule set every profile runs at request
// acceptance time.
func NewBaseVerifier(config Configurator) *RequestVerifierChain {
	v := &baseVerifier{Config: config}

	return &RequestVerifierChain{
		Rules: []RequestRule{
			{Name: "redirect_uri_registered", Verify: v.verifyRedirectURI},
			{Name: "response_type_supported", Verify: v.verifyResponseType},
			{Name: "response_mode_supported", Verify: v.verifyResponseMode},
			{Name: "scope_granted", Verify: v.verifyScopes},
			{Name: "authorization_details_well_formed", Verify: v.verifyAuthorizationDetails},
		},
	}
}

type baseVerifier struct {
	Config Configurator
}

func (v *baseVerifier) verifyRedirectURI(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	if rctx.RedirectURI() == "" {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request supplied no 'redirect_uri' and the OAuth 2.0 Client has none registered."))
	}

	if rctx.Request().GetRedirectURI() == "" && !rctx.HasSingleRegisteredRedirectURI() {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("The request supplied no 'redirect_uri' and the OAuth 2.0 Client has more than one registered, so no default can be chosen."))
	}

	if !rctx.IsRedirectURIRegistered() {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The redirect URI '%s' is not registered for the OAuth 2.0 Client.", rctx.RedirectURI()))
	}

	return nil
}

func (v *baseVerifier) verifyResponseType(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	if len(rctx.Request().ResponseTypes) == 0 {
		// Backchannel authentication requests carry no response_type.
		return nil
	}

	if !rctx.IsResponseTypeSupported() {
		return errorsx.WithStack(oidc.ErrUnsupportedResponseType.WithHintf("The client is not allowed to request response type '%s'.", rctx.Request().Form.Get("response_type")))
	}

	return nil
}

func (v *baseVerifier) verifyResponseMode(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	if len(rctx.Request().ResponseTypes) == 0 {
		return nil
	}

	if !rctx.IsResponseModeSupported() {
		return errorsx.WithStack(oidc.ErrUnsupportedResponseMode.WithHintf("The request has the response mode '%s' which is not allowed.", rctx.ResponseMode()))
	}

	return nil
}

func (v *baseVerifier) verifyScopes(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	if len(rctx.Scopes()) == 0 {
		return errorsx.WithStack(oidc.ErrInvalidScope.WithHint("The request contains no scope the OAuth 2.0 Client is allowed to request."))
	}

	return nil
}

func (v *baseVerifier) verifyAuthorizationDetails(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	if err := rctx.ValidateAuthorizationDetails(); err != nil {
		return errorsx.WithStack(err)
	}

	return nil
}
