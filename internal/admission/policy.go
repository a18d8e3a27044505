// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package admission

import (
	"strings"
	"time"
)

// Policy is a named (maxRequests, window) pair.
type Policy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

var (
	PolicyPublic        = Policy{Name: "public", MaxRequests: 10, Window: 60 * time.Second}
	PolicyAuthenticated = Policy{Name: "authenticated", MaxRequests: 60, Window: 60 * time.Second}
	PolicyAdmin         = Policy{Name: "admin", MaxRequests: 120, Window: 60 * time.Second}
	PolicyFileUpload    = Policy{Name: "fileUpload", MaxRequests: 5, Window: 60 * time.Second}
	PolicyAuth          = Policy{Name: "auth", MaxRequests: 5, Window: 300 * time.Second}
)

// EndpointKey is the bucket key component for a policy and path.
func EndpointKey(p Policy, path string) string {
	return p.Name + ":" + path
}

// Rule pairs a path predicate with the policy it selects.
type Rule struct {
	Match  func(path string) bool
	Policy Policy
}

// HasPrefix matches paths starting with any of prefixes.
func HasPrefix(prefixes ...string) func(string) bool {
	return func(path string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}

// Contains matches paths containing any of parts.
func Contains(parts ...string) func(string) bool {
	return func(path string) bool {
		for _, p := range parts {
			if strings.Contains(path, p) {
				return true
			}
		}
		return false
	}
}

// Classifier maps a request path to a policy. Rules are evaluated in
// order and the first match wins.
type Classifier struct {
	rules    []Rule
	fallback Policy
	skip     []string
}

// NewClassifier builds a classifier from ordered rules, a fallback policy
// and a list of path prefixes that bypass admission entirely.
func NewClassifier(rules []Rule, fallback Policy, skip []string) *Classifier {
	return &Classifier{rules: rules, fallback: fallback, skip: skip}
}

// DefaultSkipPrefixes bypass admission.
var DefaultSkipPrefixes = []string{
	"/health",
	"/docs",
	"/openapi.json",
	"/favicon.ico",
	"/static/",
	"/assets/",
}

// DefaultClassifier returns the production rule set.
func DefaultClassifier() *Classifier {
	return NewClassifier([]Rule{
		{Match: HasPrefix("/auth/"), Policy: PolicyAuth},
		{Match: Contains("/upload", "/submit"), Policy: PolicyFileUpload},
		{Match: HasPrefix("/api/admin/"), Policy: PolicyAdmin},
		{Match: HasPrefix("/api/mobile/", "/api/web/", "/api/map/", "/ws/"), Policy: PolicyAuthenticated},
	}, PolicyPublic, DefaultSkipPrefixes)
}

// Classify returns the policy for path.
func (c *Classifier) Classify(path string) Policy {
	for _, r := range c.rules {
		if r.Match(path) {
			return r.Policy
		}
	}
	return c.fallback
}

// Skip reports whether path bypasses admission.
func (c *Classifier) Skip(path string) bool {
	for _, p := range c.skip {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
