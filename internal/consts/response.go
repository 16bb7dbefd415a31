package consts

// Response Type strings.
const (
	ResponseTypeAuthorizationCodeFlow = valueCode
	ResponseTypeImplicitFlowIDToken   = valueIDToken
	ResponseTypeImplicitFlowToken     = "token"
	ResponseTypeImplicitFlowBoth      = "id_token token"
	ResponseTypeHybridFlowIDToken     = "code id_token"
	ResponseTypeHybridFlowToken       = "code token"
	ResponseTypeHybridFlowBoth        = "code id_token token"
)

// Response Mode strings.
const (
	ResponseModeQuery       = "query"
	ResponseModeFragment    = "fragment"
	ResponseModeFormPost    = "form_post"
	ResponseModeJWT         = "jwt"
	ResponseModeQueryJWT    = "query.jwt"
	ResponseModeFragmentJWT = "fragment.jwt"
	ResponseModeFormPostJWT = "form_post.jwt"
)
