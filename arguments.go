// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

package oidc

import "strings"

// Arguments is an ordered list of string values such as scopes, audiences, or
// response types.
type Arguments []string

// ParseArguments splits a whitespace delimited value into Arguments, dropping
// empty items and collapsing duplicates while keeping first-seen order.
func ParseArguments(value string) (args Arguments) {
	seen := make(map[string]struct{})

	for _, item := range strings.Fields(value) {
		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}
		args = append(args, item)
	}

	return args
}

// Matches performs a case-sensitive, out-of-order check that the items
// provided exist and equal all of the args in arguments.
func (r Arguments) Matches(items ...string) bool {
	if len(r) != len(items) {
		return false
	}

	found := make(map[string]bool)
	for _, item := range items {
		if !StringInSlice(item, r) {
			return false
		}
		found[item] = true
	}

	return len(found) == len(r)
}

// Has checks, in a case-sensitive manner, that all of the items
// provided exist in arguments.
func (r Arguments) Has(items ...string) bool {
	for _, item := range items {
		if !StringInSlice(item, r) {
			return false
		}
	}

	return true
}

// HasOneOf checks, in a case-sensitive manner, that one of the items
// provided exists in arguments.
func (r Arguments) HasOneOf(items ...string) bool {
	for _, item := range items {
		if StringInSlice(item, r) {
			return true
		}
	}

	return false
}

// ExactOne checks, by string case, that a single argument equals the provided
// string.
func (r Arguments) ExactOne(name string) bool {
	return len(r) == 1 && r[0] == name
}

// MatchesExact checks, by order and string case, that the items provided equal
// those in arguments.
func (r Arguments) MatchesExact(items ...string) bool {
	if len(r) != len(items) {
		return false
	}

	for i, item := range items {
		if item != r[i] {
			return false
		}
	}

	return true
}

// StringInSlice returns true if needle exists in haystack.
func StringInSlice(needle string, haystack []string) bool {
	for _, b := range haystack {
		if b == needle {
			return true
		}
	}

	return false
}

// RemoveEmpty returns args without empty items.
func RemoveEmpty(args []string) (ret []string) {
	for _, v := range args {
		v = strings.TrimSpace(v)
		if v != "" {
			ret = append(ret, v)
		}
	}

	return ret
}
