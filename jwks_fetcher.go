// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/go-jose/go-jose/v4"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/gatekit/oidc/x/errorsx"
)

const defaultJWKSFetcherStrategyCachePrefix = "github.com/gatekit/oidc.DefaultJWKSFetcherStrategy:"

// JWKSFetcherStrategy resolves a remote JSON Web Key Set by its location.
type JWKSFetcherStrategy interface {
	// Resolve returns the JSON Web Key Set, or an error if something went wrong. The
	// ignoreCache parameter, if true, forces the strategy to fetch the key set from the
	// remote.
	Resolve(ctx context.Context, location string, ignoreCache bool) (*jose.JSONWebKeySet, error)
}

// DefaultJWKSFetcherStrategy is a default implementation of the
// JWKSFetcherStrategy interface backed by a ristretto cache.
type DefaultJWKSFetcherStrategy struct {
	client           *retryablehttp.Client
	cache            *ristretto.Cache
	ttl              time.Duration
	clientSourceFunc func(ctx context.Context) *retryablehttp.Client
}

// NewDefaultJWKSFetcherStrategy returns a new instance of the DefaultJWKSFetcherStrategy.
func NewDefaultJWKSFetcherStrategy(opts ...func(*DefaultJWKSFetcherStrategy)) JWKSFetcherStrategy {
	dc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000 * 10,
		MaxCost:     10000,
		BufferItems: 64,
		Metrics:     false,
		Cost: func(value any) int64 {
			return 1
		},
	})
	if err != nil {
		panic(err)
	}

	s := &DefaultJWKSFetcherStrategy{
		cache:  dc,
		client: retryablehttp.NewClient(),
		ttl:    time.Hour,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// JWKSFetcherWithDefaultTTL sets the default TTL for the cache.
func JWKSFetcherWithDefaultTTL(ttl time.Duration) func(*DefaultJWKSFetcherStrategy) {
	return func(s *DefaultJWKSFetcherStrategy) {
		s.ttl = ttl
	}
}

// JWKSFetcherWithCache sets the cache to use.
func JWKSFetcherWithCache(cache *ristretto.Cache) func(*DefaultJWKSFetcherStrategy) {
	return func(s *DefaultJWKSFetcherStrategy) {
		s.cache = cache
	}
}

// JWKSFetcherWithHTTPClient sets the HTTP client to use.
func JWKSFetcherWithHTTPClient(client *retryablehttp.Client) func(*DefaultJWKSFetcherStrategy) {
	return func(s *DefaultJWKSFetcherStrategy) {
		s.client = client
	}
}

// JWKSFetcherWithHTTPClientSource sets the HTTP client source function to use.
func JWKSFetcherWithHTTPClientSource(clientSourceFunc func(ctx context.Context) *retryablehttp.Client) func(*DefaultJWKSFetcherStrategy) {
	return func(s *DefaultJWKSFetcherStrategy) {
		s.clientSourceFunc = clientSourceFunc
	}
}

// Resolve returns the JSON Web Key Set, or an error if something went wrong.
func (s *DefaultJWKSFetcherStrategy) Resolve(ctx context.Context, location string, ignoreCache bool) (*jose.JSONWebKeySet, error) {
	cacheKey := defaultJWKSFetcherStrategyCachePrefix + location

	if !ignoreCache {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if jwks, ok := cached.(*jose.JSONWebKeySet); ok {
				return jwks, nil
			}
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errorsx.WithStack(ErrServerError.WithHintf("Unable to build a request to fetch the JSON Web Keys from location '%s'.", location).WithWrap(err).WithDebugError(err))
	}

	response, err := s.httpClient(ctx).Do(req)
	if err != nil {
		return nil, errorsx.WithStack(ErrServerError.WithHintf("Unable to fetch the JSON Web Keys from location '%s'.", location).WithWrap(err).WithDebugError(err))
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errorsx.WithStack(ErrServerError.WithHintf("Expected status code %d from location '%s' but received %d.", http.StatusOK, location, response.StatusCode))
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errorsx.WithStack(ErrServerError.WithHintf("Unable to read the JSON Web Keys response body from location '%s'.", location).WithWrap(err).WithDebugError(err))
	}

	jwks := &jose.JSONWebKeySet{}
	if err = json.Unmarshal(body, jwks); err != nil {
		return nil, errorsx.WithStack(ErrServerError.WithHintf("Unable to decode the JSON Web Keys from location '%s'.", location).WithWrap(err).WithDebugError(err))
	}

	s.cache.SetWithTTL(cacheKey, jwks, 1, s.ttl)

	return jwks, nil
}

func (s *DefaultJWKSFetcherStrategy) httpClient(ctx context.Context) *retryablehttp.Client {
	if s.clientSourceFunc != nil {
		return s.clientSourceFunc(ctx)
	}

	return s.client
}
