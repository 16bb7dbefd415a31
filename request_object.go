// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/go-jose/go-jose/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/gatekit/oidc/internal/consts"
	"github.com/gatekit/oidc/x/errorsx"
)

const requestObjectCachePrefix = "github.com/gatekit/oidc.RequestObjectResolver:"

var defaultRequestObjectSigningAlgs = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.ES256, jose.ES384, jose.ES512,
}

// RequestObjectResolver resolves the JAR request object of an authorization or
// backchannel authentication request: it fetches by-reference objects from a
// whitelisted request_uri and verifies the JWS against the client's registered
// keys.
type RequestObjectResolver struct {
	Config interface {
		HTTPClientProvider
	}
	JWKSFetcher JWKSFetcherStrategy

	cache *ristretto.Cache
	ttl   time.Duration
}

// NewRequestObjectResolver returns a RequestObjectResolver with a bounded
// request_uri payload cache.
func NewRequestObjectResolver(config interface{ HTTPClientProvider }, fetcher JWKSFetcherStrategy) *RequestObjectResolver {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Cost: func(value any) int64 {
			return 1
		},
	})
	if err != nil {
		panic(err)
	}

	return &RequestObjectResolver{
		Config:      config,
		JWKSFetcher: fetcher,
		cache:       cache,
		ttl:         time.Minute * 5,
	}
}

// Resolve returns the verified request object for the form values, or nil when
// the request carries none.
func (r *RequestObjectResolver) Resolve(ctx context.Context, client RequestObjectClient, form url.Values) (*RequestObject, error) {
	var (
		assertion string
		err       error
	)

	switch ClassifyRequestPattern(form) {
	case RequestPatternNormal:
		return nil, nil
	case RequestPatternRequestObject:
		assertion = form.Get(consts.FormParameterRequest)
	case RequestPatternRequestURI:
		if assertion, err = r.fetch(ctx, client, form.Get(consts.FormParameterRequestURI)); err != nil {
			return nil, err
		}
	}

	return r.verify(ctx, client, assertion)
}

func (r *RequestObjectResolver) fetch(ctx context.Context, client RequestObjectClient, requestURI string) (assertion string, err error) {
	if !StringInSlice(requestURI, client.GetRequestURIs()) {
		return "", errorsx.WithStack(ErrInvalidRequestURI.WithHintf("Request URI '%s' is not whitelisted by the OAuth 2.0 Client.", requestURI))
	}

	cacheKey := requestObjectCachePrefix + requestURI

	if cached, ok := r.cache.Get(cacheKey); ok {
		if assertion, ok = cached.(string); ok {
			return assertion, nil
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, requestURI, nil)
	if err != nil {
		return "", errorsx.WithStack(ErrInvalidRequestURI.WithHintf("Unable to build a request to fetch the request object from 'request_uri' because: %s.", err.Error()).WithWrap(err).WithDebugError(err))
	}

	response, err := r.Config.GetHTTPClient(ctx).Do(req)
	if err != nil {
		return "", errorsx.WithStack(ErrInvalidRequestURI.WithHintf("Unable to fetch the request object from 'request_uri' because: %s.", err.Error()).WithWrap(err).WithDebugError(err))
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", errorsx.WithStack(ErrInvalidRequestURI.WithHintf("Unable to fetch the request object from 'request_uri' because status code '%d' was expected, but got '%d'.", http.StatusOK, response.StatusCode))
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", errorsx.WithStack(ErrInvalidRequestURI.WithHintf("Unable to fetch the request object from 'request_uri' because body parsing failed with: %s.", err).WithWrap(err).WithDebugError(err))
	}

	assertion = string(body)

	r.cache.SetWithTTL(cacheKey, assertion, 1, r.ttl)

	return assertion, nil
}

func (r *RequestObjectResolver) verify(ctx context.Context, client RequestObjectClient, assertion string) (*RequestObject, error) {
	alg, err := peekJOSEHeaderAlg(assertion)
	if err != nil {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHint("Unable to decode the request object's JOSE header.").WithWrap(err).WithDebugError(err))
	}

	if registered := client.GetRequestObjectSigningAlg(); registered != "" && registered != alg {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHintf("The request object uses signing algorithm '%s', but the requested OAuth 2.0 Client enforces signing algorithm '%s'.", alg, registered))
	}

	if alg == consts.ClientAuthMethodNone {
		claims, err := unverifiedClaims(assertion)
		if err != nil {
			return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHint("Unable to decode the unsigned request object's claims.").WithWrap(err).WithDebugError(err))
		}

		return &RequestObject{Raw: assertion, Signed: false, Algorithm: alg, Claims: claims}, nil
	}

	jws, err := jose.ParseSigned(assertion, defaultRequestObjectSigningAlgs)
	if err != nil {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHintf("This request object uses unsupported signing algorithm '%s'.", alg).WithWrap(err).WithDebugError(err))
	}

	key, err := r.findClientPublicJWK(ctx, client, jws.Signatures[0].Header.KeyID, alg)
	if err != nil {
		return nil, err
	}

	payload, err := jws.Verify(key)
	if err != nil {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHint("Unable to verify the request object's signature.").WithWrap(err).WithDebugError(err))
	}

	var claims RequestObjectClaims
	if err = json.Unmarshal(payload, &claims); err != nil {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHint("Unable to decode the request object's claims.").WithWrap(err).WithDebugError(err))
	}

	if _, ok := claims[consts.FormParameterRequest]; ok {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHint("The request object must not contain the 'request' or 'request_uri' claims."))
	}

	if _, ok := claims[consts.FormParameterRequestURI]; ok {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHint("The request object must not contain the 'request' or 'request_uri' claims."))
	}

	return &RequestObject{Raw: assertion, Signed: true, Algorithm: alg, Key: key, Claims: claims}, nil
}

func (r *RequestObjectResolver) findClientPublicJWK(ctx context.Context, client RequestObjectClient, kid, alg string) (*jose.JSONWebKey, error) {
	jwks := client.GetJSONWebKeys()

	if jwks == nil {
		location := client.GetJSONWebKeysURI()
		if location == "" {
			return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHintf("The OAuth 2.0 Client with id '%s' does not have any JSON Web Keys registered.", client.GetID()))
		}

		var err error
		if jwks, err = r.JWKSFetcher.Resolve(ctx, location, false); err != nil {
			return nil, err
		}
	}

	for _, key := range jwks.Keys {
		if kid != "" && key.KeyID != kid {
			continue
		}

		if key.Algorithm != "" && key.Algorithm != alg {
			continue
		}

		if key.Use != "" && key.Use != "sig" {
			continue
		}

		k := key

		return &k, nil
	}

	return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHintf("Unable to find a JSON Web Key matching kid '%s' and alg '%s' for the OAuth 2.0 Client with id '%s'.", kid, alg, client.GetID()))
}

func peekJOSEHeaderAlg(assertion string) (alg string, err error) {
	segment, _, found := strings.Cut(assertion, ".")
	if !found {
		return "", errorsx.WithStack(ErrInvalidRequestObject.WithHint("The request object is not a compact JOSE serialization."))
	}

	header, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return "", err
	}

	return gjson.GetBytes(header, "alg").String(), nil
}

func unverifiedClaims(assertion string) (claims RequestObjectClaims, err error) {
	parts := strings.Split(assertion, ".")
	if len(parts) < 2 {
		return nil, errorsx.WithStack(ErrInvalidRequestObject.WithHint("The request object is not a compact JOSE serialization."))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(payload, &claims); err != nil {
		return nil, err
	}

	return claims, nil
}
