package consts

const (
	valueScope       = "scope"
	valueClientID    = "client_id"
	valueNone        = "none"
	valueIDToken     = "id_token"
	valueAccessToken = "access_token"
	valueIss         = "iss"
	valueCode        = "code"
	valueNonce       = "nonce"
	valueAuthReqID   = "auth_req_id"
	valueUserCode    = "user_code"
	valueExpiresIn   = "expires_in"
	valueInterval    = "interval"
)
