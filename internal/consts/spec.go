package consts

const (
	ScopeOpenID = "openid"
)

const (
	PromptTypeNone   = valueNone
	PromptTypeLogin  = "login"
	PromptTypeCreate = "create"
)

// Proof Key Code Exchange Challenge Method strings.
const (
	PKCEChallengeMethodPlain  = "plain"
	PKCEChallengeMethodSHA256 = "S256"
)

// CIBA token delivery modes.
const (
	DeliveryModePoll = "poll"
	DeliveryModePing = "ping"
	DeliveryModePush = "push"
)

// Backchannel authentication response fields.
const (
	BackchannelResponseAuthReqID = valueAuthReqID
	BackchannelResponseExpiresIn = valueExpiresIn
	BackchannelResponseInterval  = valueInterval
)
