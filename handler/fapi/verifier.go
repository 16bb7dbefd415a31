// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package fapi

import (
	"context"

	"github.com/gatekit/oidc"
)

// RequestRule is a single pass/fail check applied to a request context. A rule
// returns nil to pass; the first failing rule of a chain wins and its error is
// surfaced verbatim with the rule's fixed error code.
type RequestRule struct {
	Name   string
	Verify func(ctx context.Context, rctx *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error
}

// GrantRule is a single pass/fail check applied at token exchange time to the
// client credentials presented with the grant.
type GrantRule struct {
	Name   string
	Verify func(ctx context.Context, credentials oidc.ClientCredentials) error
}

// RequestVerifier verifies an authorization or backchannel authentication
// request against a profile's rule set.
type RequestVerifier interface {
	Verify(ctx context.Context, rctx *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error
}

// GrantVerifier verifies the conditions a profile imposes at token exchange
// time.
type GrantVerifier interface {
	VerifyGrant(ctx context.Context, credentials oidc.ClientCredentials) error
}

// RequestVerifierChain runs an ordered rule list, failing fast on the first
// violated rule. Each run is a fresh, side-effect free pass.
type RequestVerifierChain struct {
	Rules []RequestRule
}

func (c *RequestVerifierChain) Verify(ctx context.Context, rctx *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error {
	for _, rule := range c.Rules {
		if err := rule.Verify(ctx, rctx, credentials); err != nil {
			return err
		}
	}

	return nil
}

// GrantVerifierChain is the token exchange time counterpart of
// RequestVerifierChain.
type GrantVerifierChain struct {
	Rules []GrantRule
}

func (c *GrantVerifierChain) VerifyGrant(ctx context.Context, credentials oidc.ClientCredentials) error {
	for _, rule := range c.Rules {
		if err := rule.Verify(ctx, credentials); err != nil {
			return err
		}
	}

	return nil
}

// Registry maps each security profile to its request verifier. It is built
// explicitly at startup; no discovery happens at verification time.
type Registry struct {
	verifiers map[oidc.SecurityProfile]RequestVerifier
}

// NewRegistry builds the default registry: every profile runs the base rules,
// the FAPI profiles additionally run their own rule set.
func NewRegistry(config Configurator) *Registry {
	base := NewBaseVerifier(config)

	return &Registry{
		verifiers: map[oidc.SecurityProfile]RequestVerifier{
			oidc.SecurityProfileOAuth2:       base,
			oidc.SecurityProfileOIDC:         base,
			oidc.SecurityProfileFAPIBaseline: NewBaselineVerifier(config),
			oidc.SecurityProfileFAPIAdvance:  NewAdvanceVerifier(config),
		},
	}
}

// Register overrides the verifier for a profile.
func (r *Registry) Register(profile oidc.SecurityProfile, verifier RequestVerifier) {
	r.verifiers[profile] = verifier
}

// Verify runs the rule set of the profile assigned to the request context.
func (r *Registry) Verify(ctx context.Context, rctx *oidc.AuthorizationRequestContext, credentials oidc.ClientCredentials) error {
	verifier, ok := r.verifiers[rctx.Profile()]
	if !ok {
		return oidc.ErrServerError.WithHintf("No verifier is registered for the '%s' security profile.", rctx.Profile())
	}

	return verifier.Verify(ctx, rctx, credentials)
}

// Configurator is the configuration surface the verifiers read.
type Configurator interface {
	oidc.IssuerProvider
	oidc.ClockConfigProvider
}
