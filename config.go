// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gatekit/oidc/i18n"
	"github.com/gatekit/oidc/internal/consts"
)

// IssuerProvider returns the provider for configuring the issuer URL.
type IssuerProvider interface {
	// GetIssuerURL returns the issuer URL of this authorization server.
	GetIssuerURL(ctx context.Context) (issuer string)
}

// ClockConfigProvider returns the provider for configuring the clock.
type ClockConfigProvider interface {
	// GetClock returns the clock all time comparisons use.
	GetClock(ctx context.Context) ClockProvider
}

// HTTPClientProvider returns the provider for configuring the outbound HTTP client.
type HTTPClientProvider interface {
	// GetHTTPClient returns the HTTP client used for request_uri and JWKS fetching.
	GetHTTPClient(ctx context.Context) *retryablehttp.Client
}

// ScopeStrategyProvider returns the provider for configuring the scope strategy.
type ScopeStrategyProvider interface {
	// GetScopeStrategy returns the scope strategy.
	GetScopeStrategy(ctx context.Context) ScopeStrategy
}

// MessageCatalogProvider returns the provider for configuring the message catalog.
type MessageCatalogProvider interface {
	// GetMessageCatalog returns the message catalog.
	GetMessageCatalog(ctx context.Context) i18n.MessageCatalog
}

// ProfileCapabilitiesProvider returns the provider for configuring the security
// profile detection capabilities.
type ProfileCapabilitiesProvider interface {
	// GetProfileCapabilities returns the FAPI capability flags and marker scopes.
	GetProfileCapabilities(ctx context.Context) ProfileCapabilities
}

// ResponseSupportProvider returns the provider for configuring the supported
// response types and modes.
type ResponseSupportProvider interface {
	// GetSupportedResponseTypes returns the response types this server supports.
	GetSupportedResponseTypes(ctx context.Context) (types Arguments)

	// GetSupportedResponseModes returns the response modes this server supports.
	GetSupportedResponseModes(ctx context.Context) (modes Arguments)
}

// CertificateBoundTokensProvider returns the provider for configuring
// certificate bound access token issuance.
type CertificateBoundTokensProvider interface {
	// GetCertificateBoundAccessTokensEnabled returns true when the server can issue
	// tokens bound to the client's mutual TLS certificate.
	GetCertificateBoundAccessTokensEnabled(ctx context.Context) bool
}

// BackchannelConfigProvider returns the provider for configuring the CIBA grant.
type BackchannelConfigProvider interface {
	// GetBackchannelGrantLifespan returns the lifespan of an auth_req_id.
	GetBackchannelGrantLifespan(ctx context.Context) time.Duration

	// GetBackchannelTokenPollingInterval returns the minimum interval between token
	// endpoint polls for a pending backchannel grant.
	GetBackchannelTokenPollingInterval(ctx context.Context) time.Duration
}

// Config is the configuration struct satisfying every provider interface of
// this package with sensible defaults. The getters never write to the struct,
// so a single Config may be shared by concurrent requests.
type Config struct {
	// IssuerURL is the issuer URL of this authorization server.
	IssuerURL string

	// Clock is the clock all time comparisons use. Defaults to the real clock.
	Clock ClockProvider

	// HTTPClient is the client used for request_uri and JWKS fetching.
	HTTPClient *retryablehttp.Client

	// ScopeStrategy defaults to the exact matching strategy.
	ScopeStrategy ScopeStrategy

	// MessageCatalog localizes error descriptions. May be nil.
	MessageCatalog i18n.MessageCatalog

	// ProfileCapabilities are the FAPI capability flags and marker scopes.
	ProfileCapabilities ProfileCapabilities

	// SupportedResponseTypes defaults to the authorization code flow only.
	SupportedResponseTypes Arguments

	// SupportedResponseModes defaults to query and fragment.
	SupportedResponseModes Arguments

	// CertificateBoundAccessTokensEnabled enables RFC8705 token binding.
	CertificateBoundAccessTokensEnabled bool

	// BackchannelGrantLifespan defaults to 5 minutes.
	BackchannelGrantLifespan time.Duration

	// BackchannelTokenPollingInterval defaults to 5 seconds.
	BackchannelTokenPollingInterval time.Duration
}

func (c *Config) GetIssuerURL(_ context.Context) string {
	return c.IssuerURL
}

func (c *Config) GetClock(_ context.Context) ClockProvider {
	if c.Clock == nil {
		return NewRealClock()
	}

	return c.Clock
}

func (c *Config) GetHTTPClient(_ context.Context) *retryablehttp.Client {
	if c.HTTPClient == nil {
		return retryablehttp.NewClient()
	}

	return c.HTTPClient
}

func (c *Config) GetScopeStrategy(_ context.Context) ScopeStrategy {
	if c.ScopeStrategy == nil {
		return ExactScopeStrategy
	}

	return c.ScopeStrategy
}

func (c *Config) GetMessageCatalog(_ context.Context) i18n.MessageCatalog {
	return c.MessageCatalog
}

func (c *Config) GetProfileCapabilities(_ context.Context) ProfileCapabilities {
	return c.ProfileCapabilities
}

func (c *Config) GetSupportedResponseTypes(_ context.Context) Arguments {
	if c.SupportedResponseTypes == nil {
		return Arguments{consts.ResponseTypeAuthorizationCodeFlow}
	}

	return c.SupportedResponseTypes
}

func (c *Config) GetSupportedResponseModes(_ context.Context) Arguments {
	if c.SupportedResponseModes == nil {
		return Arguments{consts.ResponseModeQuery, consts.ResponseModeFragment}
	}

	return c.SupportedResponseModes
}

func (c *Config) GetCertificateBoundAccessTokensEnabled(_ context.Context) bool {
	return c.CertificateBoundAccessTokensEnabled
}

func (c *Config) GetBackchannelGrantLifespan(_ context.Context) time.Duration {
	if c.BackchannelGrantLifespan <= 0 {
		return time.Minute * 5
	}

	return c.BackchannelGrantLifespan
}

func (c *Config) GetBackchannelTokenPollingInterval(_ context.Context) time.Duration {
	if c.BackchannelTokenPollingInterval <= 0 {
		return time.Second * 5
	}

	return c.BackchannelTokenPollingInterval
}

var (
	_ IssuerProvider                 = (*Config)(nil)
	_ ClockConfigProvider            = (*Config)(nil)
	_ HTTPClientProvider             = (*Config)(nil)
	_ ScopeStrategyProvider          = (*Config)(nil)
	_ MessageCatalogProvider         = (*Config)(nil)
	_ ProfileCapabilitiesProvider    = (*Config)(nil)
	_ ResponseSupportProvider        = (*Config)(nil)
	_ CertificateBoundTokensProvider = (*Config)(nil)
	_ BackchannelConfigProvider      = (*Config)(nil)
)
