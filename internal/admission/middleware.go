// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package admission

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/metrics"
)

// RejectionBody is the JSON body of a 429 response.
type RejectionBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Gate applies the limiter to HTTP requests and socket handshakes.
type Gate struct {
	limiter        *Limiter
	classifier     *Classifier
	identify       IdentityFunc
	trustForwarded bool
	disabled       bool
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithIdentity supplies the authenticated subject lookup for client keys.
func WithIdentity(fn IdentityFunc) GateOption {
	return func(g *Gate) { g.identify = fn }
}

// WithTrustForwardedFor enables X-Forwarded-For client addresses.
func WithTrustForwardedFor(trust bool) GateOption {
	return func(g *Gate) { g.trustForwarded = trust }
}

// WithDisabled turns the gate into a pass-through.
func WithDisabled(disabled bool) GateOption {
	return func(g *Gate) { g.disabled = disabled }
}

// NewGate creates a Gate. A nil classifier uses DefaultClassifier.
func NewGate(limiter *Limiter, classifier *Classifier, opts ...GateOption) *Gate {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	g := &Gate{limiter: limiter, classifier: classifier}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Admit classifies r and records it against its bucket. skipped is true
// when the path bypasses admission; res is then the zero Result.
func (g *Gate) Admit(r *http.Request) (res Result, policy Policy, skipped bool) {
	path := r.URL.Path
	if g.disabled || g.classifier.Skip(path) {
		return Result{}, Policy{}, true
	}
	policy = g.classifier.Classify(path)
	clientKey := ClientKey(r, g.identify, g.trustForwarded)
	res = g.limiter.Check(clientKey, EndpointKey(policy, path), policy.MaxRequests, policy.Window)

	if !res.Allowed {
		metrics.APIRateLimitHits.WithLabelValues(policy.Name).Inc()
		logging.Ctx(r.Context()).Warn().
			Str("client_key", clientKey).
			Str("endpoint_key", EndpointKey(policy, path)).
			Int("retry_after", res.RetryAfterSeconds()).
			Msg("rate limit exceeded")
	}
	return res, policy, false
}

// Middleware rejects requests over their policy limit with 429 before
// the wrapped handler runs. Admitted responses carry the rate limit headers.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, policy, skipped := g.Admit(r)
		if skipped {
			next.ServeHTTP(w, r)
			return
		}
		WriteHeaders(w, res)
		if !res.Allowed {
			WriteRejection(w, res, policy)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteHeaders sets the X-RateLimit-* headers.
func WriteHeaders(w http.ResponseWriter, res Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// WriteRejection writes the 429 response with Retry-After.
func WriteRejection(w http.ResponseWriter, res Result, policy Policy) {
	retry := res.RetryAfterSeconds()
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	body := RejectionBody{
		Error:      "Rate limit exceeded",
		Message:    fmt.Sprintf("Too many requests. Limit: %d per %d seconds", policy.MaxRequests, int(policy.Window.Seconds())),
		RetryAfter: retry,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to encode rate limit rejection")
	}
}
