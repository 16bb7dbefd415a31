package consts

// Client authentication method strings, including the mutual TLS methods from
// RFC8705 used by the FAPI profiles.
const (
	ClientAuthMethodClientSecretBasic       = "client_secret_basic"
	ClientAuthMethodClientSecretPost        = "client_secret_post"
	ClientAuthMethodClientSecretJWT         = "client_secret_jwt"
	ClientAuthMethodPrivateKeyJWT           = "private_key_jwt"
	ClientAuthMethodTLSClientAuth           = "tls_client_auth"
	ClientAuthMethodSelfSignedTLSClientAuth = "self_signed_tls_client_auth"
	ClientAuthMethodNone                    = valueNone
)
