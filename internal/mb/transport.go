package mb

import (
	"bytes"
	"context"
	"errors"
	"io"
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

// Limit is a per-host rate limit: RPS with a burst capacity.
type Limit struct {
	RPS   float64
	Burst int
}

// TransportOptions configures the retrying, rate-limited transport.
type TransportOptions struct {
	RetryMax    int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	JitterFn    func(base time.Duration) time.Duration
	Clock       Clock
	Metrics     *Metrics
	// Limit applies to every host.
	Limit Limit
}

// DefaultTransportOptionsFromEnv returns defaults, tunable with
// MB_RPS, MB_RETRY_MAX and MB_RETRY_BASE_MS.
func DefaultTransportOptionsFromEnv() TransportOptions {
	lim := Limit{RPS: 10, Burst: 10}
	if v := strings.TrimSpace(os.Getenv("MB_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			lim = Limit{RPS: f, Burst: int(math.Max(1, f))}
		}
	}
	retryMax := 3
	if v := strings.TrimSpace(os.Getenv("MB_RETRY_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			retryMax = n
		}
	}
	base := 250 * time.Millisecond
	if v := strings.TrimSpace(os.Getenv("MB_RETRY_BASE_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			base = time.Duration(ms) * time.Millisecond
		}
	}
	return TransportOptions{
		RetryMax:    retryMax,
		BackoffBase: base,
		BackoffCap:  5 * time.Second,
		Clock:       realClock{},
		JitterFn: func(d time.Duration) time.Duration {
			if d <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(d.Nanoseconds()))
		},
		Metrics: NewMetrics(),
		Limit:   lim,
	}
}

// tokenBucket is a per-host limiter with fractional tokens.
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
		rps = 10
	}
	return &tokenBucket{rps: rps, burst: burst, tokens: burst, last: clock.Now(), clock: clock}
}

func (tb *tokenBucket) wait(ctx context.Context) error {
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
		need := time.Duration((1 - tb.tokens) / tb.rps * float64(time.Second))
		tb.mu.Unlock()
		tb.clock.Sleep(max(need, 5*time.Millisecond))
	}
}

// RetryingTransport rate-limits requests per host and retries transient
// failures (network timeouts, 429, 502-504) with exponential backoff.
type RetryingTransport struct {
	Base http.RoundTripper
	Opts TransportOptions

	mu       sync.Mutex
	limiters map[string]*tokenBucket
}

func NewRetryingTransport(opts TransportOptions) *RetryingTransport {
	return &RetryingTransport{Opts: opts, limiters: make(map[string]*tokenBucket)}
}

func (t *RetryingTransport) clock() Clock {
	if t.Opts.Clock != nil {
		return t.Opts.Clock
	}
	return realClock{}
}

func (t *RetryingTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RetryingTransport) limiter(host string) *tokenBucket {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limiters == nil {
		t.limiters = make(map[string]*tokenBucket)
	}
	if tb, ok := t.limiters[host]; ok {
		return tb
	}
	tb := newTokenBucket(t.Opts.Limit, t.clock())
	t.limiters[host] = tb
	return tb
}

func (t *RetryingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}
	lim := t.limiter(req.URL.Host)
	if m := t.Opts.Metrics; m != nil {
		m.IncRequest(req.Method)
	}

	attempts := max(1, t.Opts.RetryMax+1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := lim.wait(req.Context()); err != nil {
			return nil, err
		}
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}

		resp, err := t.base().RoundTrip(req)
		last := attempt == attempts-1
		if err != nil {
			if !isTransientNetErr(err) || last {
				return nil, err
			}
			lastErr = err
			t.retry(t.backoff(attempt))
			continue
		}
		if m := t.Opts.Metrics; m != nil {
			m.IncStatus(resp.StatusCode)
		}
		if !shouldRetryStatus(resp.StatusCode) || last {
			return resp, nil
		}

		wait := parseRetryAfter(resp.Header.Get("Retry-After"), t.clock().Now())
		if wait <= 0 {
			wait = t.backoff(attempt)
		}
		resp.Body.Close()
		lastErr = errors.New(resp.Status)
		t.retry(min(wait, t.cap()))
	}
	if lastErr == nil {
		lastErr = errors.New("max retries exceeded")
	}
	return nil, lastErr
}

func (t *RetryingTransport) retry(d time.Duration) {
	if m := t.Opts.Metrics; m != nil {
		m.IncRetry()
		m.AddBackoff(d)
	}
	t.clock().Sleep(d)
}

func (t *RetryingTransport) cap() time.Duration {
	if t.Opts.BackoffCap > 0 {
		return t.Opts.BackoffCap
	}
	return 5 * time.Second
}

// backoff returns base*2^attempt plus jitter, capped.
func (t *RetryingTransport) backoff(attempt int) time.Duration {
	base := t.Opts.BackoffBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	d := min(time.Duration(float64(base)*math.Pow(2, float64(attempt))), t.cap())
	if t.Opts.JitterFn != nil {
		d += t.Opts.JitterFn(d)
	}
	return min(d, t.cap())
}

// bufferBody makes write bodies replayable across retries.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.GetBody != nil {
		return nil
	}
	buf, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	req.Body.Close()
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	req.Body = io.NopCloser(bytes.NewReader(buf))
	return nil
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
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "timeout")
}

func shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
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
