// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package errorsx

import (
	"github.com/pkg/errors"
)

// StackTracer is implemented by errors which carry a stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStack mirrors github.com/pkg/errors.WithStack but does not wrap the
// error again if it already carries a stack trace.
func WithStack(err error) error {
	if _, ok := err.(StackTracer); ok {
		return err
	}

	return errors.WithStack(err)
}

// Cause is implemented by errors with an underlying cause.
type Cause interface {
	Cause() error
}

// DebugCarrier is implemented by errors which carry debug information not
// intended for the wire response.
type DebugCarrier interface {
	Debug() string
}

// ReasonCarrier is implemented by errors which carry a human readable reason.
type ReasonCarrier interface {
	Reason() string
}

// StatusCarrier is implemented by errors which carry an HTTP status text.
type StatusCarrier interface {
	Status() string
}

// StatusCodeCarrier is implemented by errors which carry an HTTP status code.
type StatusCodeCarrier interface {
	StatusCode() int
}
