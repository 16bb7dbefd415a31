// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gatekit/oidc/internal/consts"
)

// AuthorizationRequestContext is the single immutable view of an authorization
// request every downstream decision consumes. It merges the raw parameters,
// the verified request object claims, and the server and client configuration.
// Pattern, profile, redirect URI, and response mode are fully determined at
// construction time and never recomputed.
type AuthorizationRequestContext struct {
	request       *AuthorizationRequest
	requestObject *RequestObject
	pattern       RequestPattern
	profile       SecurityProfile
	scopes        Arguments
	redirectURI   string
	responseMode  string
	issuer        string

	supportedResponseTypes Arguments
	supportedResponseModes Arguments
	certBoundTokensEnabled bool
}

// ContextConfigurator is the configuration surface required to construct an
// AuthorizationRequestContext.
type ContextConfigurator interface {
	IssuerProvider
	ScopeStrategyProvider
	ProfileCapabilitiesProvider
	ResponseSupportProvider
	CertificateBoundTokensProvider
}

// NewAuthorizationRequestContext builds the immutable request context. The
// requestObject may be nil for the normal pattern; when present and signed its
// claims take precedence over the matching raw parameters.
func NewAuthorizationRequestContext(ctx context.Context, config ContextConfigurator, request *AuthorizationRequest, requestObject *RequestObject) *AuthorizationRequestContext {
	c := &AuthorizationRequestContext{
		request:                request,
		requestObject:          requestObject,
		pattern:                ClassifyRequestPattern(request.Form),
		issuer:                 config.GetIssuerURL(ctx),
		supportedResponseTypes: config.GetSupportedResponseTypes(ctx),
		supportedResponseModes: config.GetSupportedResponseModes(ctx),
		certBoundTokensEnabled: config.GetCertificateBoundAccessTokensEnabled(ctx),
	}

	var claims RequestObjectClaims
	if requestObject != nil && requestObject.Signed {
		claims = requestObject.Claims
	}

	effective := EffectiveScopes(request.Form.Get(consts.FormParameterScope), claims, request.Client)
	c.scopes = FilterScopes(config.GetScopeStrategy(ctx), request.Client, effective)
	c.profile = AnalyzeSecurityProfile(c.scopes, config.GetProfileCapabilities(ctx))
	c.redirectURI = c.resolveRedirectURI()
	c.responseMode = c.resolveResponseMode()

	return c
}

// Request returns the parsed request.
func (c *AuthorizationRequestContext) Request() *AuthorizationRequest {
	return c.request
}

// Client returns the requesting client.
func (c *AuthorizationRequestContext) Client() Client {
	return c.request.Client
}

// RequestObject returns the resolved request object, nil for the normal
// pattern.
func (c *AuthorizationRequestContext) RequestObject() *RequestObject {
	return c.requestObject
}

// Pattern returns the request pattern detected at construction.
func (c *AuthorizationRequestContext) Pattern() RequestPattern {
	return c.pattern
}

// Profile returns the security profile assigned at construction.
func (c *AuthorizationRequestContext) Profile() SecurityProfile {
	return c.profile
}

// Scopes returns the effective, client-filtered scope set.
func (c *AuthorizationRequestContext) Scopes() Arguments {
	return c.scopes
}

// Issuer returns the issuer URL of this server.
func (c *AuthorizationRequestContext) Issuer() string {
	return c.issuer
}

// RedirectURI returns the resolved redirect URI: the requested value verbatim
// when one was supplied, otherwise the client's first registered redirect URI.
// The fallback is only legal when the client has exactly one registered URI;
// callers must check HasSingleRegisteredRedirectURI before relying on it.
func (c *AuthorizationRequestContext) RedirectURI() string {
	return c.redirectURI
}

// ResponseMode returns the resolved response mode.
func (c *AuthorizationRequestContext) ResponseMode() string {
	return c.responseMode
}

// IsRequestParameterPattern returns true when the request carried a request
// object, inline or by reference.
func (c *AuthorizationRequestContext) IsRequestParameterPattern() bool {
	return c.pattern.IsRequestParameterPattern()
}

// IsUnsignedRequestObject returns true when a request object pattern was used
// but no JWS is present, a state the FAPI profiles must reject.
func (c *AuthorizationRequestContext) IsUnsignedRequestObject() bool {
	return c.pattern.IsRequestParameterPattern() && (c.requestObject == nil || !c.requestObject.Signed)
}

// IsOAuth2 returns true for the plain OAuth 2.0 profile.
func (c *AuthorizationRequestContext) IsOAuth2() bool {
	return c.profile == SecurityProfileOAuth2
}

// IsOIDC returns true for the OpenID Connect 1.0 profile.
func (c *AuthorizationRequestContext) IsOIDC() bool {
	return c.profile == SecurityProfileOIDC
}

// IsFAPIBaseline returns true for the FAPI Baseline profile.
func (c *AuthorizationRequestContext) IsFAPIBaseline() bool {
	return c.profile == SecurityProfileFAPIBaseline
}

// IsFAPIAdvance returns true for the FAPI Advance profile.
func (c *AuthorizationRequestContext) IsFAPIAdvance() bool {
	return c.profile == SecurityProfileFAPIAdvance
}

// IsResponseTypeSupported returns true when the requested response type
// combination is supported by both the server and the client.
func (c *AuthorizationRequestContext) IsResponseTypeSupported() bool {
	requested := strings.Join(c.request.ResponseTypes, " ")
	if requested == "" {
		return false
	}

	return c.supportedResponseTypes.Has(requested) && c.request.Client.GetResponseTypes().Has(requested)
}

// IsResponseModeSupported returns true when the resolved response mode is
// supported by the server and, when the client registered an allow-list, by
// the client.
func (c *AuthorizationRequestContext) IsResponseModeSupported() bool {
	if !c.supportedResponseModes.Has(c.responseMode) {
		return false
	}

	if modes := c.request.Client.GetResponseModes(); len(modes) != 0 {
		return modes.Has(c.responseMode)
	}

	return true
}

// IsRedirectURIRegistered returns true when the resolved redirect URI is one
// of the client's registered redirect URIs, compared by exact string match.
func (c *AuthorizationRequestContext) IsRedirectURIRegistered() bool {
	return StringInSlice(c.redirectURI, c.request.Client.GetRedirectURIs())
}

// HasSingleRegisteredRedirectURI returns true when the client registered
// exactly one redirect URI, the precondition of the redirect URI fallback.
func (c *AuthorizationRequestContext) HasSingleRegisteredRedirectURI() bool {
	return len(c.request.Client.GetRedirectURIs()) == 1
}

// HasPKCE returns true when the request carries a code challenge.
func (c *AuthorizationRequestContext) HasPKCE() bool {
	return c.paramString(consts.FormParameterCodeChallenge) != ""
}

// CodeChallengeMethod returns the requested PKCE challenge method.
func (c *AuthorizationRequestContext) CodeChallengeMethod() string {
	return c.paramString(consts.FormParameterCodeChallengeMethod)
}

// IsPromptNone returns true when the prompt parameter requests silent
// re-authorization.
func (c *AuthorizationRequestContext) IsPromptNone() bool {
	return c.prompt().Has(consts.PromptTypeNone)
}

// IsPromptCreate returns true when the prompt parameter requests account
// creation.
func (c *AuthorizationRequestContext) IsPromptCreate() bool {
	return c.prompt().Has(consts.PromptTypeCreate)
}

// IsImplicitFlow returns true for the pure implicit response types.
func (c *AuthorizationRequestContext) IsImplicitFlow() bool {
	return !c.request.ResponseTypes.Has(consts.ResponseTypeAuthorizationCodeFlow) &&
		c.request.ResponseTypes.HasOneOf(consts.ResponseTypeImplicitFlowIDToken, consts.ResponseTypeImplicitFlowToken)
}

// IsHybridFlow returns true when the response types combine the code flow with
// an implicit component.
func (c *AuthorizationRequestContext) IsHybridFlow() bool {
	return c.request.ResponseTypes.Has(consts.ResponseTypeAuthorizationCodeFlow) &&
		c.request.ResponseTypes.HasOneOf(consts.ResponseTypeImplicitFlowIDToken, consts.ResponseTypeImplicitFlowToken)
}

// HasAuthorizationDetails returns true when the request carries an RFC9396
// authorization_details parameter.
func (c *AuthorizationRequestContext) HasAuthorizationDetails() bool {
	return c.paramString(consts.FormParameterAuthorizationDetails) != ""
}

// AuthorizationDetails returns the raw authorization_details value.
func (c *AuthorizationRequestContext) AuthorizationDetails() string {
	return c.paramString(consts.FormParameterAuthorizationDetails)
}

// ValidateAuthorizationDetails checks the structural requirements of RFC9396:
// the value must be a JSON array of objects each carrying a 'type' member.
func (c *AuthorizationRequestContext) ValidateAuthorizationDetails() error {
	raw := c.AuthorizationDetails()
	if raw == "" {
		return nil
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return ErrInvalidAuthDetails.WithHint("The 'authorization_details' parameter must be a JSON array.")
	}

	for _, detail := range parsed.Array() {
		if !detail.IsObject() || !detail.Get("type").Exists() {
			return ErrInvalidAuthDetails.WithHint("Each authorization details object must carry a 'type' member.")
		}
	}

	return nil
}

// BindingMessage returns the CIBA binding_message parameter.
func (c *AuthorizationRequestContext) BindingMessage() string {
	return c.paramString(consts.FormParameterBindingMessage)
}

// SessionKey derives the key a prior authenticated session for this request
// would be stored under.
func (c *AuthorizationRequestContext) SessionKey() SessionKey {
	return NewSessionKey(c.issuer, c.request.Client.GetID())
}

// CertificateBoundAccessTokens returns true when both the server and the
// client are configured for RFC8705 certificate bound access tokens.
func (c *AuthorizationRequestContext) CertificateBoundAccessTokens() bool {
	if !c.certBoundTokensEnabled {
		return false
	}

	client, ok := c.request.Client.(SenderConstrainedClient)

	return ok && client.GetCertificateBoundAccessTokens()
}

// ToGrant materializes the consent record for the authenticated user. It is
// side-effect free; persistence is the caller's concern.
func (c *AuthorizationRequestContext) ToGrant(tenant string, authentication Authentication, customProperties map[string]any) AuthorizationGrant {
	grant := AuthorizationGrant{
		Tenant:               tenant,
		Subject:              authentication.Subject,
		Authentication:       authentication,
		ClientID:             c.request.Client.GetID(),
		Scopes:               append(Arguments(nil), c.scopes...),
		CustomProperties:     customProperties,
		AuthorizationDetails: c.AuthorizationDetails(),
	}

	return grant.Clone()
}

// paramString returns the named parameter, preferring the claim of a signed
// request object over the raw form value.
func (c *AuthorizationRequestContext) paramString(name string) string {
	if c.requestObject != nil && c.requestObject.Signed {
		if value, ok := c.requestObject.Claims[name].(string); ok {
			return value
		}
	}

	return c.request.Form.Get(name)
}

func (c *AuthorizationRequestContext) prompt() Arguments {
	return ParseArguments(c.paramString(consts.FormParameterPrompt))
}

func (c *AuthorizationRequestContext) resolveRedirectURI() string {
	if requested := c.paramString(consts.FormParameterRedirectURI); requested != "" {
		return requested
	}

	if uris := c.request.Client.GetRedirectURIs(); len(uris) > 0 {
		return uris[0]
	}

	return ""
}

func (c *AuthorizationRequestContext) resolveResponseMode() string {
	if requested := c.paramString(consts.FormParameterResponseMode); requested != "" {
		return requested
	}

	if c.IsImplicitFlow() || c.IsHybridFlow() {
		return consts.ResponseModeFragment
	}

	return consts.ResponseModeQuery
}
