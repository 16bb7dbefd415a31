// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"github.com/go-jose/go-jose/v4"
)

// Client represents a registered client or app.
type Client interface {
	// GetID returns the client ID.
	GetID() (id string)

	// GetRedirectURIs returns the client's registered redirect URIs.
	GetRedirectURIs() []string

	// GetResponseTypes returns the client's allowed response types.
	// All allowed combinations of response types have to be listed, each combination having
	// response types of the combination separated by a space.
	GetResponseTypes() (types Arguments)

	// GetResponseModes returns the client's allowed response modes.
	GetResponseModes() (modes Arguments)

	// GetScopes returns the scopes this client is allowed to request.
	GetScopes() (scopes Arguments)

	// IsPublic returns true, if this client is marked as public.
	IsPublic() (public bool)

	// GetAudience returns the allowed audience(s) for this client.
	GetAudience() (audience Arguments)
}

// RequestObjectClient is a Client which can carry its authorization parameters
// in a signed request object per the JAR specification.
type RequestObjectClient interface {
	// GetRequireSignedRequestObject returns true when the client is registered such that
	// authorization parameters are only ever taken from a verified request object.
	GetRequireSignedRequestObject() (require bool)

	// GetRequestObjectSigningAlg returns the JWS alg the client registered for signing
	// request objects, or an empty string when any supported alg is acceptable.
	GetRequestObjectSigningAlg() (alg string)

	// GetRequestURIs returns the whitelisted request_uri values.
	GetRequestURIs() []string

	// GetJSONWebKeys returns the JSON Web Key Set containing the public keys used by the
	// client to sign request objects and client assertions.
	GetJSONWebKeys() (jwks *jose.JSONWebKeySet)

	// GetJSONWebKeysURI returns the URL for lookup of the client's JSON Web Key Set.
	GetJSONWebKeysURI() (uri string)

	Client
}

// AuthenticationMethodClient is a Client which registers the token endpoint
// authentication method it uses.
type AuthenticationMethodClient interface {
	// GetTokenEndpointAuthMethod returns the registered client authentication method.
	GetTokenEndpointAuthMethod() (method string)

	Client
}

// SecretClient is a Client which registers a secret for the secret-based
// authentication methods.
type SecretClient interface {
	// GetClientSecret returns the registered client secret.
	GetClientSecret() (secret ClientSecret)

	Client
}

// SenderConstrainedClient is a Client which can be issued certificate bound
// access tokens per RFC8705.
type SenderConstrainedClient interface {
	// GetCertificateBoundAccessTokens returns true when tokens issued to this client must
	// be bound to the client's mutual TLS certificate.
	GetCertificateBoundAccessTokens() (bound bool)

	Client
}

// BackchannelClient is a Client registered for the CIBA grant.
type BackchannelClient interface {
	// GetBackchannelTokenDeliveryMode returns one of 'poll', 'ping', or 'push'.
	GetBackchannelTokenDeliveryMode() (mode string)

	// GetBackchannelUserCodeParameterSupported returns true when the client supports the
	// CIBA user_code parameter.
	GetBackchannelUserCodeParameterSupported() (supported bool)

	Client
}

// DefaultClient is a simple default implementation of the Client and related
// interfaces.
type DefaultClient struct {
	ID                           string              `json:"id"`
	Secret                       ClientSecret        `json:"-"`
	RedirectURIs                 []string            `json:"redirect_uris"`
	ResponseTypes                Arguments           `json:"response_types"`
	ResponseModes                Arguments           `json:"response_modes"`
	Scopes                       Arguments           `json:"scopes"`
	Audience                     Arguments           `json:"audience"`
	Public                       bool                `json:"public"`
	RequireSignedRequestObject   bool                `json:"require_signed_request_object"`
	RequestObjectSigningAlg      string              `json:"request_object_signing_alg"`
	RequestURIs                  []string            `json:"request_uris"`
	JSONWebKeys                  *jose.JSONWebKeySet `json:"jwks"`
	JSONWebKeysURI               string              `json:"jwks_uri"`
	TokenEndpointAuthMethod      string              `json:"token_endpoint_auth_method"`
	CertificateBoundAccessTokens bool                `json:"tls_client_certificate_bound_access_tokens"`
	BackchannelTokenDeliveryMode string              `json:"backchannel_token_delivery_mode"`
	BackchannelUserCodeParameter bool                `json:"backchannel_user_code_parameter"`
}

func (c *DefaultClient) GetID() string {
	return c.ID
}

func (c *DefaultClient) GetClientSecret() ClientSecret {
	return c.Secret
}

func (c *DefaultClient) GetRedirectURIs() []string {
	return c.RedirectURIs
}

func (c *DefaultClient) GetResponseTypes() Arguments {
	return c.ResponseTypes
}

func (c *DefaultClient) GetResponseModes() Arguments {
	return c.ResponseModes
}

func (c *DefaultClient) GetScopes() Arguments {
	return c.Scopes
}

func (c *DefaultClient) IsPublic() bool {
	return c.Public
}

func (c *DefaultClient) GetAudience() Arguments {
	return c.Audience
}

func (c *DefaultClient) GetRequireSignedRequestObject() bool {
	return c.RequireSignedRequestObject
}

func (c *DefaultClient) GetRequestObjectSigningAlg() string {
	return c.RequestObjectSigningAlg
}

func (c *DefaultClient) GetRequestURIs() []string {
	return c.RequestURIs
}

func (c *DefaultClient) GetJSONWebKeys() *jose.JSONWebKeySet {
	return c.JSONWebKeys
}

func (c *DefaultClient) GetJSONWebKeysURI() string {
	return c.JSONWebKeysURI
}

func (c *DefaultClient) GetTokenEndpointAuthMethod() string {
	return c.TokenEndpointAuthMethod
}

func (c *DefaultClient) GetCertificateBoundAccessTokens() bool {
	return c.CertificateBoundAccessTokens
}

func (c *DefaultClient) GetBackchannelTokenDeliveryMode() string {
	return c.BackchannelTokenDeliveryMode
}

func (c *DefaultClient) GetBackchannelUserCodeParameterSupported() bool {
	return c.BackchannelUserCodeParameter
}

var (
	_ Client                     = (*DefaultClient)(nil)
	_ RequestObjectClient        = (*DefaultClient)(nil)
	_ AuthenticationMethodClient = (*DefaultClient)(nil)
	_ SecretClient               = (*DefaultClient)(nil)
	_ SenderConstrainedClient    = (*DefaultClient)(nil)
	_ BackchannelClient          = (*DefaultClient)(nil)
)
