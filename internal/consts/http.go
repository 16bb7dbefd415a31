package consts

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)
