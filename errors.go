// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"encoding/json"
	stderr "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/gatekit/oidc/i18n"
	"github.com/gatekit/oidc/x/errorsx"
)

var (
	// ErrInvalidRequest represents the 'invalid_request' error from RFC6749.
	//
	// See:
	//    - https://datatracker.ietf.org/doc/html/rfc6749#section-4.1.2.1
	//    - https://datatracker.ietf.org/doc/html/rfc6749#section-4.2.2.1.
	ErrInvalidRequest = &RFC6749Error{
		ErrorField:       errInvalidRequestName,
		DescriptionField: "The request is missing a required parameter, includes an invalid parameter value, includes a parameter more than once, or is otherwise malformed.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrInvalidClient represents the 'invalid_client' error from RFC6749.
	//
	// See: https://datatracker.ietf.org/doc/html/rfc6749#section-5.2.
	ErrInvalidClient = &RFC6749Error{
		ErrorField:       errInvalidClientName,
		DescriptionField: "Client authentication failed (e.g., unknown client, no client authentication included, or unsupported authentication method).",
		CodeField:        http.StatusUnauthorized,
	}

	// ErrUnauthorizedClient represents the 'unauthorized_client' error from RFC6749.
	//
	// See: https://datatracker.ietf.org/doc/html/rfc6749#section-4.1.2.1.
	ErrUnauthorizedClient = &RFC6749Error{
		ErrorField:       errUnauthorizedClientName,
		DescriptionField: "The client is not authorized to request a token using this method.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrTokenUnauthorizedClient represents the 'unauthorized_client' error from RFC6749 as
	// produced at the token endpoint, where it is accompanied by a 401 status for the
	// backchannel token errors.
	//
	// See: https://openid.net/specs/openid-client-initiated-backchannel-authentication-core-1_0.html#rfc.section.13.
	ErrTokenUnauthorizedClient = &RFC6749Error{
		ErrorField:       errUnauthorizedClientName,
		DescriptionField: "The authenticated client is not authorized to use this authorization grant type.",
		CodeField:        http.StatusUnauthorized,
	}

	// ErrInvalidScope represents the 'invalid_scope' error from RFC6749.
	ErrInvalidScope = &RFC6749Error{
		ErrorField:       errInvalidScopeName,
		DescriptionField: "The requested scope is invalid, unknown, or malformed.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrInvalidGrant represents the 'invalid_grant' error from RFC6749.
	//
	// See: https://datatracker.ietf.org/doc/html/rfc6749#section-5.2.
	ErrInvalidGrant = &RFC6749Error{
		ErrorField:       errInvalidGrantName,
		DescriptionField: "The provided authorization grant (e.g., authorization code, resource owner credentials) or refresh token is invalid, expired, revoked, does not match the redirection URI used in the authorization request, or was issued to another client.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrAccessDenied represents the 'access_denied' error from RFC6749. It doubles as the
	// terminal polling outcome for a denied backchannel authentication request.
	//
	// See:
	//	- https://datatracker.ietf.org/doc/html/rfc6749#section-4.1.2.1
	//	- https://openid.net/specs/openid-client-initiated-backchannel-authentication-core-1_0.html#rfc.section.11.
	ErrAccessDenied = &RFC6749Error{
		ErrorField:       errAccessDeniedName,
		DescriptionField: "The resource owner or authorization server denied the request.",
		CodeField:        http.StatusForbidden,
	}

	// ErrUnsupportedResponseType represents the 'unsupported_response_type' error from RFC6749.
	ErrUnsupportedResponseType = &RFC6749Error{
		ErrorField:       errUnsupportedResponseTypeName,
		DescriptionField: "The authorization server does not support obtaining a token using this method.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrUnsupportedResponseMode is produced when the requested response mode is not
	// supported by the authorization server or the client.
	ErrUnsupportedResponseMode = &RFC6749Error{
		ErrorField:       errUnsupportedResponseModeName,
		DescriptionField: "The authorization server does not support obtaining a response using this response mode.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrServerError represents the 'server_error' error from RFC6749.
	ErrServerError = &RFC6749Error{
		ErrorField:       errServerErrorName,
		DescriptionField: "The authorization server encountered an unexpected condition that prevented it from fulfilling the request.",
		CodeField:        http.StatusInternalServerError,
	}

	// ErrInvalidRequestObject represents the 'invalid_request_object' error from OpenID Connect 1.0.
	//
	// See: https://openid.net/specs/openid-connect-core-1_0.html#AuthError.
	ErrInvalidRequestObject = &RFC6749Error{
		ErrorField:       errInvalidRequestObjectName,
		DescriptionField: "The request parameter contains an invalid Request Object.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrInvalidRequestURI represents the 'invalid_request_uri' error from OpenID Connect 1.0.
	//
	// See: https://openid.net/specs/openid-connect-core-1_0.html#AuthError.
	ErrInvalidRequestURI = &RFC6749Error{
		ErrorField:       errInvalidRequestURIName,
		DescriptionField: "The request_uri in the Authorization Request returns an error or contains invalid data.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrRequestNotSupported represents the 'request_not_supported' error from OpenID Connect 1.0.
	ErrRequestNotSupported = &RFC6749Error{
		ErrorField:       errRequestNotSupportedName,
		DescriptionField: "The OP does not support use of the request parameter.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrRequestURINotSupported represents the 'request_uri_not_supported' error from OpenID Connect 1.0.
	ErrRequestURINotSupported = &RFC6749Error{
		ErrorField:       errRequestURINotSupportedName,
		DescriptionField: "The OP does not support use of the request_uri parameter.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrInvalidAuthDetails represents the 'invalid_authorization_details' error from RFC9396.
	//
	// See: https://datatracker.ietf.org/doc/html/rfc9396#section-5.
	ErrInvalidAuthDetails = &RFC6749Error{
		ErrorField:       errInvalidAuthDetailsName,
		DescriptionField: "The authorization details contains an unknown authorization details type value, is an object of known type but containing unknown fields, contains fields of the wrong type for the authorization details type, contains fields with invalid values for the authorization details type, or is missing required fields for the authorization details type.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrLoginRequired represents the 'login_required' error from OpenID Connect 1.0.
	//
	// See: https://openid.net/specs/openid-connect-core-1_0.html#AuthError.
	ErrLoginRequired = &RFC6749Error{
		ErrorField:       errLoginRequiredName,
		DescriptionField: "The Authorization Server requires End-User authentication.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrAuthorizationPending represents the 'authorization_pending' error from the CIBA
	// Core 1.0 token endpoint, shared with RFC8628.
	//
	// See: https://openid.net/specs/openid-client-initiated-backchannel-authentication-core-1_0.html#rfc.section.11.
	ErrAuthorizationPending = &RFC6749Error{
		ErrorField:       errAuthorizationPendingName,
		DescriptionField: "The authorization request is still pending as the end user hasn't yet been authenticated.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrSlowDown represents the 'slow_down' error from the CIBA Core 1.0 token endpoint,
	// shared with RFC8628.
	ErrSlowDown = &RFC6749Error{
		ErrorField:       errSlowDownName,
		DescriptionField: "The authorization request is still pending and polling should continue, but the interval must be increased.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrExpiredToken represents the 'expired_token' error from the CIBA Core 1.0 token
	// endpoint, produced once the auth_req_id has expired.
	ErrExpiredToken = &RFC6749Error{
		ErrorField:       errExpiredTokenName,
		DescriptionField: "The auth_req_id has expired, and the backchannel authentication session has concluded.",
		CodeField:        http.StatusBadRequest,
	}

	// ErrNotFound is produced when a tenant, client, session, or grant lookup misses. It
	// distinguishes a missing resource from a rejected but extant one.
	ErrNotFound = &RFC6749Error{
		ErrorField:       errNotFoundName,
		DescriptionField: "Could not find the requested resource(s).",
		CodeField:        http.StatusNotFound,
	}

	// ErrConflict is produced when a state transition is attempted on a grant which has
	// already left the state the transition requires.
	ErrConflict = &RFC6749Error{
		ErrorField:       errConflictName,
		DescriptionField: "The requested state transition conflicts with the current state of the resource.",
		CodeField:        http.StatusConflict,
	}
)

const (
	errInvalidRequestName          = "invalid_request"
	errInvalidClientName           = "invalid_client"
	errUnauthorizedClientName      = "unauthorized_client"
	errInvalidScopeName            = "invalid_scope"
	errInvalidGrantName            = "invalid_grant"
	errAccessDeniedName            = "access_denied"
	errUnsupportedResponseTypeName = "unsupported_response_type"
	errUnsupportedResponseModeName = "unsupported_response_mode"
	errServerErrorName             = "server_error"
	errInvalidRequestObjectName    = "invalid_request_object"
	errInvalidRequestURIName       = "invalid_request_uri"
	errRequestNotSupportedName     = "request_not_supported"
	errRequestURINotSupportedName  = "request_uri_not_supported"
	errInvalidAuthDetailsName      = "invalid_authorization_details"
	errLoginRequiredName           = "login_required"
	errAuthorizationPendingName    = "authorization_pending"
	errSlowDownName                = "slow_down"
	errExpiredTokenName            = "expired_token"
	errNotFoundName                = "not_found"
	errConflictName                = "conflict"
	errUnknownErrorName            = "error"
)

// RFC6749Error is an error value carrying the wire fields mandated by RFC6749
// section 5.2 along with a hint, debug information, and localization state.
type RFC6749Error struct {
	ErrorField       string
	DescriptionField string
	HintField        string
	CodeField        int
	DebugField       string
	cause            error
	exposeDebug      bool

	// Fields for globalization
	hintIDField string
	hintArgs    []any
	catalog     i18n.MessageCatalog
	lang        language.Tag
}

var (
	_ errorsx.DebugCarrier      = new(RFC6749Error)
	_ errorsx.ReasonCarrier     = new(RFC6749Error)
	_ errorsx.StatusCarrier     = new(RFC6749Error)
	_ errorsx.StatusCodeCarrier = new(RFC6749Error)
)

// ErrorToRFC6749Error converts err to a *RFC6749Error, falling back to a
// generic server error for unrecognizable values.
func ErrorToRFC6749Error(err error) *RFC6749Error {
	var e *RFC6749Error

	if errors.As(err, &e) {
		return e
	}

	return &RFC6749Error{
		ErrorField:       errUnknownErrorName,
		DescriptionField: "The error is unrecognizable",
		DebugField:       err.Error(),
		CodeField:        http.StatusInternalServerError,
		cause:            err,
	}
}

// StackTrace returns the error's stack trace.
func (e *RFC6749Error) StackTrace() (trace errors.StackTrace) {
	if e.cause == e || e.cause == nil {
		return
	}

	if st := errorsx.StackTracer(nil); stderr.As(e.cause, &st) {
		trace = st.StackTrace()
	}

	return
}

func (e RFC6749Error) Unwrap() error {
	return e.cause
}

func (e *RFC6749Error) Wrap(err error) {
	e.cause = err
}

func (e RFC6749Error) WithWrap(cause error) *RFC6749Error {
	e.cause = cause

	return &e
}

func (e RFC6749Error) Is(err error) bool {
	switch te := err.(type) {
	case RFC6749Error:
		return e.ErrorField == te.ErrorField &&
			e.CodeField == te.CodeField
	case *RFC6749Error:
		return e.ErrorField == te.ErrorField &&
			e.CodeField == te.CodeField
	}
	return false
}

func (e *RFC6749Error) Status() string {
	return http.StatusText(e.CodeField)
}

func (e RFC6749Error) Error() string {
	return e.ErrorField
}

func (e *RFC6749Error) Reason() string {
	return e.HintField
}

func (e *RFC6749Error) StatusCode() int {
	return e.CodeField
}

func (e *RFC6749Error) Cause() error {
	return e.cause
}

func (e *RFC6749Error) WithHintf(hint string, args ...any) *RFC6749Error {
	err := *e
	if err.hintIDField == "" {
		err.hintIDField = hint
	}

	err.hintArgs = args
	err.HintField = fmt.Sprintf(hint, args...)
	return &err
}

func (e *RFC6749Error) WithHint(hint string) *RFC6749Error {
	err := *e
	if err.hintIDField == "" {
		err.hintIDField = hint
	}

	err.HintField = hint
	return &err
}

func (e *RFC6749Error) Debug() string {
	return e.DebugField
}

func (e *RFC6749Error) WithDebug(debug string) *RFC6749Error {
	err := *e
	err.DebugField = debug

	return &err
}

func (e *RFC6749Error) WithDebugError(debug error) *RFC6749Error {
	return e.WithDebug(debug.Error())
}

func (e *RFC6749Error) WithDebugf(debug string, args ...any) *RFC6749Error {
	return e.WithDebug(fmt.Sprintf(debug, args...))
}

func (e *RFC6749Error) WithDescription(description string) *RFC6749Error {
	err := *e
	err.DescriptionField = description
	return &err
}

func (e *RFC6749Error) WithLocalizer(catalog i18n.MessageCatalog, lang language.Tag) *RFC6749Error {
	err := *e
	err.catalog = catalog
	err.lang = lang
	return &err
}

// WithExposeDebug if set to true exposes debug messages.
func (e *RFC6749Error) WithExposeDebug(exposeDebug bool) *RFC6749Error {
	err := *e
	err.exposeDebug = exposeDebug

	return &err
}

// GetDescription returns a more descriptive description, combined with hint and debug (when available).
func (e *RFC6749Error) GetDescription() string {
	description := i18n.GetMessageOrDefault(e.catalog, e.ErrorField, e.lang, e.DescriptionField)
	e.computeHintField()

	if e.HintField != "" {
		description += " " + e.HintField
	}

	if e.exposeDebug && e.DebugField != "" {
		description += " " + e.DebugField
	}

	return strings.ReplaceAll(description, "\"", "'")
}

// RFC6749ErrorJSON is a helper struct for JSON encoding/decoding of RFC6749Error.
type RFC6749ErrorJSON struct {
	Name        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *RFC6749Error) UnmarshalJSON(b []byte) error {
	var data RFC6749ErrorJSON

	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}

	e.ErrorField = data.Name
	e.DescriptionField = data.Description

	return nil
}

func (e RFC6749Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(&RFC6749ErrorJSON{
		Name:        e.ErrorField,
		Description: e.GetDescription(),
	})
}

// ToValues encodes the error as the query values of a front-channel error
// redirect.
func (e *RFC6749Error) ToValues() url.Values {
	values := url.Values{}
	values.Set("error", e.ErrorField)
	values.Set("error_description", e.GetDescription())

	return values
}

func (e *RFC6749Error) computeHintField() {
	if e.hintIDField == "" {
		return
	}

	e.HintField = i18n.GetMessageOrDefault(e.catalog, e.hintIDField, e.lang, e.HintField, e.hintArgs...)
}
