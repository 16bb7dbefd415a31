// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"github.com/gatekit/oidc/internal/consts"
)

// SecurityProfile is the security profile a request is handled under. Exactly
// one profile is ever assigned to a request.
type SecurityProfile string

const (
	// SecurityProfileOAuth2 is plain OAuth 2.0 without the openid scope.
	SecurityProfileOAuth2 SecurityProfile = "oauth2"

	// SecurityProfileOIDC is OpenID Connect 1.0.
	SecurityProfileOIDC SecurityProfile = "oidc"

	// SecurityProfileFAPIBaseline is the Financial-grade API Baseline profile.
	SecurityProfileFAPIBaseline SecurityProfile = "fapi_baseline"

	// SecurityProfileFAPIAdvance is the Financial-grade API Advance profile.
	SecurityProfileFAPIAdvance SecurityProfile = "fapi_advance"
)

// String implements fmt.Stringer.
func (p SecurityProfile) String() string {
	return string(p)
}

// IsFAPI returns true for either of the Financial-grade API profiles.
func (p SecurityProfile) IsFAPI() bool {
	return p == SecurityProfileFAPIBaseline || p == SecurityProfileFAPIAdvance
}

// ProfileCapabilities are the server capability flags and scope markers which
// drive profile detection. A request qualifies for a FAPI profile when the
// server has the capability enabled and the filtered scopes intersect the
// profile's registered marker scopes.
type ProfileCapabilities struct {
	FAPIAdvanceEnabled  bool
	FAPIBaselineEnabled bool
	FAPIAdvanceScopes   Arguments
	FAPIBaselineScopes  Arguments
}

// AnalyzeSecurityProfile assigns the security profile for the filtered scope
// set. Precedence is fixed, most to least specific: FAPI Advance, FAPI
// Baseline, OIDC, OAuth 2.0. The first matching profile wins, so a request
// qualifying for both FAPI Advance and plain OIDC is always FAPI Advance.
func AnalyzeSecurityProfile(scopes Arguments, caps ProfileCapabilities) SecurityProfile {
	switch {
	case caps.FAPIAdvanceEnabled && scopes.HasOneOf(caps.FAPIAdvanceScopes...):
		return SecurityProfileFAPIAdvance
	case caps.FAPIBaselineEnabled && scopes.HasOneOf(caps.FAPIBaselineScopes...):
		return SecurityProfileFAPIBaseline
	case scopes.Has(consts.ScopeOpenID):
		return SecurityProfileOIDC
	default:
		return SecurityProfileOAuth2
	}
}

// EffectiveScopes resolves the requested scope set. Clients registered to
// require signed request objects take the scope from the verified request
// object claims; all other clients use the top-level scope parameter. The raw
// value is whitespace-split with duplicates collapsed.
func EffectiveScopes(param string, claims RequestObjectClaims, client Client) Arguments {
	if c, ok := client.(RequestObjectClient); ok && c.GetRequireSignedRequestObject() {
		if claim, ok := claims.Scope(); ok {
			return ParseArguments(claim)
		}

		return nil
	}

	return ParseArguments(param)
}

// FilterScopes drops every scope the client is not registered for using the
// provided strategy.
func FilterScopes(strategy ScopeStrategy, client Client, scopes Arguments) (granted Arguments) {
	for _, scope := range scopes {
		if strategy(client.GetScopes(), scope) {
			granted = append(granted, scope)
		}
	}

	return granted
}

// ScopeStrategy is a strategy for matching scopes.
type ScopeStrategy func(haystack []string, needle string) bool

// ExactScopeStrategy matches scopes by equality.
func ExactScopeStrategy(haystack []string, needle string) bool {
	if needle == "" {
		return false
	}

	return StringInSlice(needle, haystack)
}

// HierarchicScopeStrategy matches scopes hierarchically such that a registered
// scope 'read' also grants 'read.anything'.
func HierarchicScopeStrategy(haystack []string, needle string) bool {
	for _, this := range haystack {
		if this == needle {
			return true
		}

		if len(this) > len(needle) {
			continue
		}

		needles := splitScope(needle)
		haystack := splitScope(this)
		haystackLen := len(haystack) - 1
		for k, needle := range needles {
			if haystackLen < k {
				return true
			}

			current := haystack[k]
			if current != needle {
				break
			}
		}
	}

	return false
}

func splitScope(scope string) (parts []string) {
	var current string
	for _, r := range scope {
		if r == '.' {
			parts = append(parts, current)
			current = ""
			continue
		}

		current += string(r)
	}

	return append(parts, current)
}
