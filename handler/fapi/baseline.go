// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package fapi

import (
	"context"
	"net/url"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/internal/consts"
	"github.com/gatekit/oidc/x/errorsx"
)

// NewBaselineVerifier returns the FAPI Baseline rule set: the base rules plus
// the Baseline specific hardening.
func NewBaselineVerifier(config Configurator) *RequestVerifierChain {
	base := NewBaseVerifier(config)
	v := &baselineVerifier{Config: config}

	return &RequestVerifierChain{
		Rules: append(base.Rules,
			RequestRule{Name: "pkce_required", Verify: v.verifyPKCE},
			RequestRule{Name: "pkce_method_s256", Verify: v.verifyPKCEMethod},
			RequestRule{Name: "redirect_uri_https", Verify: v.verifyRedirectURIScheme},
		),
	}
}

type baselineVerifier struct {
	Config Configurator
}

func (v *baselineVerifier) verifyPKCE(_ context.Context, rctx *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error {
	if rctx.HasPKCE() {
		return nil
	}

	// Confidential clients satisfy Baseline without PKCE; public clients never do.
	if credentials.IsConfidential() {
		return nil
	}

	return errorsx.WithStack(oidc.ErrInvalidRequest.WithHint("Public clients must include a 'code_challenge' under the FAPI Baseline profile, but it is missing."))
}

func (v *baselineVerifier) verifyPKCEMethod(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	if !rctx.HasPKCE() {
		return nil
	}

	if method := rctx.CodeChallengeMethod(); method != consts.PKCEChallengeMethodSHA256 {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The code challenge method '%s' is not allowed under the FAPI Baseline profile, only 'S256' is.", method))
	}

	return nil
}

func (v *baselineVerifier) verifyRedirectURIScheme(_ context.Context, rctx *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
	uri, err := url.Parse(rctx.RedirectURI())
	if err != nil || uri.Scheme != consts.SchemeHTTPS {
		return errorsx.WithStack(oidc.ErrInvalidRequest.WithHintf("The redirect URI '%s' must use the https scheme under the FAPI Baseline profile.", rctx.RedirectURI()))
	}

	return nil
}
