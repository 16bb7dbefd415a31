// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package fapi_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/handler/fapi"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestConfig() *oidc.Config {
	return &oidc.Config{
		IssuerURL: "https://op.example.com",
		Clock:     oidc.NewFixedClock(testNow),
		ProfileCapabilities: oidc.ProfileCapabilities{
			FAPIAdvanceEnabled:  true,
			FAPIBaselineEnabled: true,
			FAPIAdvanceScopes:   oidc.Arguments{"payments"},
			FAPIBaselineScopes:  oidc.Arguments{"accounts"},
		},
		SupportedResponseTypes:              oidc.Arguments{"code", "code id_token"},
		SupportedResponseModes:              oidc.Arguments{"query", "fragment"},
		CertificateBoundAccessTokensEnabled: true,
	}
}

func newTestClient() *oidc.DefaultClient {
	return &oidc.DefaultClient{
		ID:                           "client",
		RedirectURIs:                 []string{"https://rp.example.com/callback"},
		ResponseTypes:                oidc.Arguments{"code", "code id_token"},
		Scopes:                       oidc.Arguments{"openid", "accounts", "payments", "photos"},
		CertificateBoundAccessTokens: true,
		BackchannelTokenDeliveryMode: "poll",
	}
}

// rsa2048Key is a synthetic 2048 bit public key; the verifiers only inspect the
// modulus size, never the key material.
func rsa2048Key() *rsa.PublicKey {
	return &rsa.PublicKey{N: new(big.Int).Lsh(big.NewInt(1), 2047), E: 65537}
}

func rsa1024Key() *rsa.PublicKey {
	return &rsa.PublicKey{N: new(big.Int).Lsh(big.NewInt(1), 1023), E: 65537}
}

func ec256Key() *ecdsa.PublicKey {
	return &ecdsa.PublicKey{Curve: elliptic.P256()}
}

func ec159Key() *ecdsa.PublicKey {
	return &ecdsa.PublicKey{Curve: &elliptic.CurveParams{Name: "P-159", BitSize: 159}}
}

func signedRequestObject(alg string, key any, claims oidc.RequestObjectClaims) *oidc.RequestObject {
	return &oidc.RequestObject{
		Raw:       "<jwt>",
		Signed:    true,
		Algorithm: alg,
		Key:       &jose.JSONWebKey{Key: key, Algorithm: alg},
		Claims:    claims,
	}
}

func validAdvanceClaims() oidc.RequestObjectClaims {
	return oidc.RequestObjectClaims{
		"iat":          testNow,
		"nbf":          testNow,
		"exp":          testNow.Add(time.Hour),
		"aud":          "https://op.example.com",
		"scope":        "openid payments",
		"redirect_uri": "https://rp.example.com/callback",
	}
}

func newRequestContext(config *oidc.Config, client oidc.Client, form url.Values, requestObject *oidc.RequestObject) *oidc.AuthorizationRequestContext {
	request := oidc.NewAuthorizationRequest(form, client, testNow)

	return oidc.NewAuthorizationRequestContext(context.Background(), config, request, requestObject)
}

func advanceForm() url.Values {
	return url.Values{
		"scope":         {"openid payments"},
		"response_type": {"code"},
		"request":       {"<jwt>"},
	}
}

func privateKeyJWTCredentials() oidc.ClientCredentials {
	return oidc.ClientCredentials{
		Type:                 oidc.AuthenticationTypePrivateKeyJWT,
		CertificatePresented: true,
		AssertionAlgorithm:   "PS256",
		AssertionKeyBits:     2048,
	}
}

func TestRegistryDispatch(t *testing.T) {
	config := newTestConfig()
	registry := fapi.NewRegistry(config)

	t.Run("ShouldRunBaseRulesForOIDCProfile", func(t *testing.T) {
		form := url.Values{
			"scope":         {"openid photos"},
			"response_type": {"code"},
			"redirect_uri":  {"https://rp.example.com/callback"},
		}

		rctx := newRequestContext(config, newTestClient(), form, nil)
		assert.Equal(t, oidc.SecurityProfileOIDC, rctx.Profile())
		assert.NoError(t, registry.Verify(context.Background(), rctx, privateKeyJWTCredentials()))
	})

	t.Run("ShouldRunAdvanceRulesForAdvanceProfile", func(t *testing.T) {
		// The same plain request is rejected once the payments scope promotes it
		// to FAPI Advance, because no signed request object is present.
		form := url.Values{
			"scope":         {"openid payments"},
			"response_type": {"code"},
			"redirect_uri":  {"https://rp.example.com/callback"},
		}

		rctx := newRequestContext(config, newTestClient(), form, nil)
		assert.Equal(t, oidc.SecurityProfileFAPIAdvance, rctx.Profile())

		err := registry.Verify(context.Background(), rctx, privateKeyJWTCredentials())
		assert.ErrorIs(t, err, oidc.ErrInvalidRequest)
	})

	t.Run("ShouldAllowOverridingAProfile", func(t *testing.T) {
		overridden := fapi.NewRegistry(config)
		overridden.Register(oidc.SecurityProfileFAPIAdvance, fapi.NewBaseVerifier(config))

		form := url.Values{
			"scope":         {"openid payments"},
			"response_type": {"code"},
			"redirect_uri":  {"https://rp.example.com/callback"},
		}

		rctx := newRequestContext(config, newTestClient(), form, nil)
		assert.NoError(t, overridden.Verify(context.Background(), rctx, privateKeyJWTCredentials()))
	})
}

func TestRequestVerifierChainFailsFast(t *testing.T) {
	var calls []string

	rule := func(name string, err error) fapi.RequestRule {
		return fapi.RequestRule{
			Name: name,
			Verify: func(_ context.Context, _ *oidc.AuthorizationRequestContext, _ oidc.ClientCredentials) error {
				calls = append(calls, name)

				return err
			},
		}
	}

	chain := &fapi.RequestVerifierChain{
		Rules: []fapi.RequestRule{
			rule("first", nil),
			rule("second", oidc.ErrInvalidRequest.WithHint("The second rule failed.")),
			rule("third", nil),
		},
	}

	err := chain.Verify(context.Background(), nil, oidc.ClientCredentials{})

	assert.ErrorIs(t, err, oidc.ErrInvalidRequest)
	assert.Equal(t, []string{"first", "second"}, calls)
}
