// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"sync"

	"github.com/gatekit/oidc"
	"github.com/gatekit/oidc/handler/ciba"
	"github.com/gatekit/oidc/x/errorsx"
)

// MemoryStore is an in-memory implementation of the session and backchannel
// grant stores, intended for tests and single-node deployments. All grant
// status transitions are compare-and-set under one lock, so two devices racing
// to decide the same grant can never both win.
type MemoryStore struct {
	lock sync.RWMutex

	sessions map[string]*oidc.Session
	grants   map[string]ciba.Grant
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]*oidc.Session{},
		grants:   map[string]ciba.Grant{},
	}
}

func (s *MemoryStore) GetSession(_ context.Context, key oidc.SessionKey) (*oidc.Session, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	session, ok := s.sessions[key.String()]
	if !ok {
		return nil, errorsx.WithStack(oidc.ErrNotFound.WithHintf("No session is registered under the key '%s'.", key))
	}

	return session, nil
}

func (s *MemoryStore) RegisterSession(_ context.Context, session *oidc.Session) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.sessions[session.Key.String()] = session

	return nil
}

func (s *MemoryStore) CreateGrant(_ context.Context, grant ciba.Grant) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.grants[grant.AuthReqID]; ok {
		return errorsx.WithStack(oidc.ErrConflict.WithHintf("A backchannel authentication grant already exists for auth_req_id '%s'.", grant.AuthReqID))
	}

	s.grants[grant.AuthReqID] = grant

	return nil
}

func (s *MemoryStore) GetGrant(_ context.Context, authReqID string) (ciba.Grant, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	grant, ok := s.grants[authReqID]
	if !ok {
		return ciba.Grant{}, errorsx.WithStack(oidc.ErrNotFound.WithHintf("No backchannel authentication grant exists for auth_req_id '%s'.", authReqID))
	}

	return grant, nil
}

func (s *MemoryStore) UpdateGrant(_ context.Context, expected ciba.Status, grant ciba.Grant) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stored, ok := s.grants[grant.AuthReqID]
	if !ok {
		return errorsx.WithStack(oidc.ErrNotFound.WithHintf("No backchannel authentication grant exists for auth_req_id '%s'.", grant.AuthReqID))
	}

	if stored.Status != expected {
		return errorsx.WithStack(oidc.ErrConflict.WithHintf("The backchannel authentication grant has status '%s', not the expected '%s'.", stored.Status, expected))
	}

	s.grants[grant.AuthReqID] = grant

	return nil
}

func (s *MemoryStore) DeleteGrant(_ context.Context, authReqID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.grants[authReqID]; !ok {
		return errorsx.WithStack(oidc.ErrNotFound.WithHintf("No backchannel authentication grant exists for auth_req_id '%s'.", authReqID))
	}

	delete(s.grants, authReqID)

	return nil
}

func (s *MemoryStore) GetAndInvalidateGrant(_ context.Context, authReqID string) (ciba.Grant, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	grant, ok := s.grants[authReqID]
	if !ok {
		return ciba.Grant{}, errorsx.WithStack(oidc.ErrNotFound.WithHintf("No backchannel authentication grant exists for auth_req_id '%s'.", authReqID))
	}

	delete(s.grants, authReqID)

	return grant, nil
}

var (
	_ oidc.SessionStorage = (*MemoryStore)(nil)
	_ ciba.Storage        = (*MemoryStore)(nil)
)
