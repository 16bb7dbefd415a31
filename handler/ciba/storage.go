// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package ciba

import (
	"context"
)

// Storage is the external grant store collaborator. Implementations must make
// UpdateGrant a compare-and-set on the status so two devices racing to decide
// the same grant can never both win; the loser observes oidc.ErrConflict.
type Storage interface {
	// CreateGrant stores a new grant under its auth_req_id. A duplicate
	// auth_req_id fails with oidc.ErrConflict.
	CreateGrant(ctx context.Context, grant Grant) error

	// GetGrant returns the grant stored under authReqID, or oidc.ErrNotFound.
	GetGrant(ctx context.Context, authReqID string) (Grant, error)

	// UpdateGrant replaces the stored grant if its current status equals
	// expected, failing with oidc.ErrConflict otherwise and oidc.ErrNotFound on
	// a miss.
	UpdateGrant(ctx context.Context, expected Status, grant Grant) error

	// DeleteGrant removes the grant stored under authReqID, or returns
	// oidc.ErrNotFound.
	DeleteGrant(ctx context.Context, authReqID string) error

	// GetAndInvalidateGrant atomically returns and removes the grant stored
	// under authReqID so an authorized grant is consumed at most once.
	GetAndInvalidateGrant(ctx context.Context, authReqID string) (Grant, error)
}
