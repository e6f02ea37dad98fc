package api

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// SleepContext returns early with ctx's error once ctx is done.
func (realClock) SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type contextSleeper interface {
	SleepContext(ctx context.Context, d time.Duration) error
}

// Limit defines a simple rate limit: RPS with a burst capacity.
type Limit struct {
	RPS   float64
	Burst int
}

// TransportOptions configures the retrying, rate-limited transport.
type TransportOptions struct {
	RetryMax    int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	JitterFn    func(base time.Duration, attempt int) time.Duration
	Clock       Clock
	Metrics     *Metrics

	// Limit applies per request host.
	Limit Limit
}

// DefaultTransportOptionsFromEnv returns defaults tuned for the editor API,
// overridable via ASSETS_API_RPS, ASSETS_API_BURST, ASSETS_RETRY_MAX,
// ASSETS_RETRY_BASE_MS and ASSETS_RETRY_CAP_MS.
func DefaultTransportOptionsFromEnv() TransportOptions {
	lim := Limit{RPS: 5, Burst: 5}
	if f, ok := envFloat("ASSETS_API_RPS"); ok && f > 0 {
		lim.RPS = f
	}
	if n, ok := envInt("ASSETS_API_BURST"); ok && n > 0 {
		lim.Burst = n
	}
	retryMax := 3
	if n, ok := envInt("ASSETS_RETRY_MAX"); ok && n >= 0 {
		retryMax = n
	}
	backoffBase := 250 * time.Millisecond
	if ms, ok := envInt("ASSETS_RETRY_BASE_MS"); ok && ms >= 0 {
		backoffBase = time.Duration(ms) * time.Millisecond
	}
	backoffCap := 5 * time.Second
	if ms, ok := envInt("ASSETS_RETRY_CAP_MS"); ok && ms > 0 {
		backoffCap = time.Duration(ms) * time.Millisecond
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	var rmu sync.Mutex
	return TransportOptions{
		RetryMax:    retryMax,
		BackoffBase: backoffBase,
		BackoffCap:  backoffCap,
		Clock:       realClock{},
		JitterFn: func(base time.Duration, attempt int) time.Duration {
			if base <= 0 {
				return 0
			}
			rmu.Lock()
			defer rmu.Unlock()
			return time.Duration(r.Int63n(base.Nanoseconds()))
		},
		Metrics: NewMetrics(),
		Limit:   lim,
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func envFloat(key string) (float64, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// tokenBucket is a per-host rate limiter with fractional tokens.
type tokenBucket struct {
	mu     sync.Mutex
	rps    float64
	burst  float64
	tokens float64
	last   time.Time
	clock  Clock
}

func newTokenBucket(lim Limit, clock Clock) *tokenBucket {
	burst := float64(max(1, lim.Burst))
	rps := lim.RPS
	if rps <= 0 {
		rps = 5
	}
	return &tokenBucket{rps: rps, burst: burst, tokens: burst, last: clock.Now(), clock: clock}
}

func (tb *tokenBucket) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tb.mu.Lock()
		now := tb.clock.Now()
		if delta := now.Sub(tb.last).Seconds() * tb.rps; delta > 0 {
			tb.tokens = math.Min(tb.burst, tb.tokens+delta)
			tb.last = now
		}
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		wait := time.Duration(((1 - tb.tokens) / tb.rps) * float64(time.Second))
		tb.mu.Unlock()
		if wait < 5*time.Millisecond {
			wait = 5 * time.Millisecond
		}
		tb.clock.Sleep(wait)
	}
}

// RetryingLimiterTransport wraps a base RoundTripper with per-host rate
// limiting and retries of idempotent requests.
type RetryingLimiterTransport struct {
	Base     http.RoundTripper
	Opts     TransportOptions
	limMu    sync.Mutex
	limiters map[string]*tokenBucket
}

func NewRetryingLimiterTransport(opts TransportOptions) *RetryingLimiterTransport {
	return &RetryingLimiterTransport{Opts: opts, limiters: make(map[string]*tokenBucket)}
}

func (t *RetryingLimiterTransport) getLimiter(host string) *tokenBucket {
	if host == "" {
		host = "_default_"
	}
	t.limMu.Lock()
	defer t.limMu.Unlock()
	if tb, ok := t.limiters[host]; ok {
		return tb
	}
	tb := newTokenBucket(t.Opts.Limit, t.clock())
	t.limiters[host] = tb
	return tb
}

func (t *RetryingLimiterTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RetryingLimiterTransport) clock() Clock {
	if t.Opts.Clock != nil {
		return t.Opts.Clock
	}
	return realClock{}
}

func (t *RetryingLimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	lim := t.getLimiter(req.URL.Host)
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncRequest(req.URL.Host, req.Method)
	}

	attempts := 1
	if isIdempotent(req) {
		attempts = max(1, t.Opts.RetryMax+1)
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := lim.Wait(req.Context()); err != nil {
			return nil, err
		}
		last := attempt == attempts-1

		resp, err := t.base().RoundTrip(req)
		if err != nil {
			if isTransientNetErr(err) && !last {
				lastErr = err
				t.countRetry(req.Context(), 0)
				if err := t.sleep(req.Context(), t.backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		if t.Opts.Metrics != nil {
			t.Opts.Metrics.IncStatus(resp.StatusCode)
		}
		if !shouldRetryStatus(resp.StatusCode) || last {
			return resp, nil
		}

		delay := parseRetryAfter(resp.Header.Get("Retry-After"), t.clock().Now())
		if delay <= 0 {
			delay = t.backoff(attempt)
		}
		resp.Body.Close()
		t.countRetry(req.Context(), resp.StatusCode)
		if err := t.sleep(req.Context(), minDur(delay, t.backoffCap())); err != nil {
			return nil, err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("max retries exceeded")
	}
	return nil, lastErr
}

func (t *RetryingLimiterTransport) countRetry(ctx context.Context, status int) {
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncRetry()
	}
	rc := getRetryCounters(ctx)
	if rc == nil {
		return
	}
	rc.Total++
	switch {
	case status == 0:
		rc.Net++
	case status == http.StatusTooManyRequests:
		rc.Status429++
	case status >= 500:
		rc.Status5xx++
	}
}

// sleep waits out a backoff and reports the request context's error if
// it ends during the wait.
func (t *RetryingLimiterTransport) sleep(ctx context.Context, d time.Duration) error {
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.AddBackoff(d)
	}
	if cs, ok := t.clock().(contextSleeper); ok {
		return cs.SleepContext(ctx, d)
	}
	t.clock().Sleep(d)
	return ctx.Err()
}

func (t *RetryingLimiterTransport) backoffCap() time.Duration {
	if t.Opts.BackoffCap <= 0 {
		return 5 * time.Second
	}
	return t.Opts.BackoffCap
}

// backoff is base * 2^attempt plus jitter, capped.
func (t *RetryingLimiterTransport) backoff(attempt int) time.Duration {
	base := t.Opts.BackoffBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	delay := minDur(time.Duration(float64(base)*math.Pow(2, float64(attempt))), t.backoffCap())
	if t.Opts.JitterFn != nil {
		delay += t.Opts.JitterFn(delay, attempt)
	}
	return minDur(delay, t.backoffCap())
}

// isIdempotent reports whether req may be replayed. DELETE is excluded:
// replaying one whose 2xx got lost reports 404 for a deleted asset.
func isIdempotent(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
	default:
		return false
	}
}

func isTransientNetErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "temporary") || strings.Contains(msg, "connection reset")
}

func shouldRetryStatus(code int) bool {
	return code == 429 || code == 502 || code == 503 || code == 504
}

func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(h); err == nil {
		if d := when.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
