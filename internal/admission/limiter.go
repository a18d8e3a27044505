// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package admission

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/hydroalert/internal/metrics"
)

const (
	// DefaultSweepInterval is the minimum time between bucket sweeps.
	DefaultSweepInterval = 300 * time.Second

	// DefaultRetention drops buckets whose newest entry is older than this.
	DefaultRetention = 3600 * time.Second
)

// Result is the outcome of one admission check. A denial is a value,
// never an error.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds for headers.
// A rejection always advises at least one second.
func (r Result) RetryAfterSeconds() int {
	secs := int(math.Ceil(r.RetryAfter.Seconds()))
	if !r.Allowed {
		return max(1, secs)
	}
	return secs
}

type bucketKey struct {
	client   string
	endpoint string
}

// bucket holds request timestamps in arrival order.
type bucket struct {
	timestamps []time.Time
}

// prune drops timestamps strictly older than cutoff.
func (b *bucket) prune(cutoff time.Time) {
	i := 0
	for i < len(b.timestamps) && b.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.timestamps = append(b.timestamps[:0], b.timestamps[i:]...)
	}
}

func (b *bucket) newest() time.Time {
	if len(b.timestamps) == 0 {
		return time.Time{}
	}
	return b.timestamps[len(b.timestamps)-1]
}

// Limiter is an in-memory sliding-window log keyed by (client, endpoint).
// All bucket reads and writes happen under one mutex, so the
// prune-append-decide sequence is atomic per bucket.
type Limiter struct {
	mu            sync.Mutex
	buckets       map[bucketKey]*bucket
	lastSweep     time.Time
	sweepInterval time.Duration
	retention     time.Duration
	now           func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSweepInterval overrides DefaultSweepInterval.
func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.sweepInterval = d
		}
	}
}

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.retention = d
		}
	}
}

// NewLimiter creates an empty limiter.
func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		buckets:       make(map[bucketKey]*bucket),
		sweepInterval: DefaultSweepInterval,
		retention:     DefaultRetention,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

// Check records one request for (clientKey, endpointKey) and reports
// whether it fits within maxRequests over the trailing window.
func (l *Limiter) Check(clientKey, endpointKey string, maxRequests int, window time.Duration) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.sweepInterval {
		l.sweepLocked(now)
	}

	key := bucketKey{client: clientKey, endpoint: endpointKey}
	b := l.buckets[key]
	if b == nil {
		b = &bucket{}
		l.buckets[key] = b
	}

	b.prune(now.Add(-window))
	b.timestamps = append(b.timestamps, now)

	count := len(b.timestamps)
	res := Result{
		Allowed:   count <= maxRequests,
		Limit:     maxRequests,
		Remaining: max(0, maxRequests-count),
		ResetAt:   b.timestamps[0].Add(window),
	}
	if !res.Allowed {
		res.RetryAfter = max(0, res.ResetAt.Sub(now))
	}
	return res
}

// sweepLocked drops buckets with no entry newer than the retention
// horizon. Must be called with l.mu held.
func (l *Limiter) sweepLocked(now time.Time) {
	horizon := now.Add(-l.retention)
	for key, b := range l.buckets {
		if len(b.timestamps) == 0 || b.newest().Before(horizon) {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
	metrics.RateLimitBuckets.Set(float64(len(l.buckets)))
}

// Sweep drops idle buckets now.
func (l *Limiter) Sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)
}

// Serve sweeps on the sweep interval until ctx is done, so idle buckets are
// reclaimed even when no request arrives to trigger the lazy sweep.
func (l *Limiter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *Limiter) String() string {
	return "admission-sweeper"
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
