package consts

const (
	FormParameterState                = "state"
	FormParameterClientID             = valueClientID
	FormParameterClientSecret         = "client_secret"
	FormParameterRequest              = "request"
	FormParameterRequestURI           = "request_uri"
	FormParameterRedirectURI          = "redirect_uri"
	FormParameterNonce                = valueNonce
	FormParameterResponseMode         = "response_mode"
	FormParameterResponseType         = "response_type"
	FormParameterCodeChallenge        = "code_challenge"
	FormParameterCodeChallengeMethod  = "code_challenge_method"
	FormParameterClientAssertionType  = "client_assertion_type"
	FormParameterClientAssertion      = "client_assertion"
	FormParameterGrantType            = "grant_type"
	FormParameterScope                = valueScope
	FormParameterMaximumAge           = "max_age"
	FormParameterPrompt               = "prompt"
	FormParameterIDTokenHint          = "id_token_hint"
	FormParameterAuthorizationDetails = "authorization_details"
)

// Backchannel authentication request parameters from the OpenID Connect CIBA
// Core 1.0 specification.
const (
	FormParameterAuthReqID               = valueAuthReqID
	FormParameterBindingMessage          = "binding_message"
	FormParameterLoginHint               = "login_hint"
	FormParameterLoginHintToken          = "login_hint_token"
	FormParameterClientNotificationToken = "client_notification_token"
	FormParameterUserCode                = valueUserCode
	FormParameterRequestedExpiry         = "requested_expiry"
)
