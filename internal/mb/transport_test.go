package mb

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func testTransport(clk *fakeClock) *RetryingTransport {
	return NewRetryingTransport(TransportOptions{
		RetryMax:    3,
		BackoffBase: 100 * time.Millisecond,
		BackoffCap:  time.Second,
		Clock:       clk,
		Metrics:     NewMetrics(),
		Limit:       Limit{RPS: 100, Burst: 100},
		// no jitter for deterministic sleeps
	})
}

func TestRetriesOn503ThenSucceeds(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	calls := 0
	tr := testTransport(clk)
	tr.Base = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return jsonResponse(503, ""), nil
		}
		return jsonResponse(200, "[]"), nil
	})

	req, _ := http.NewRequest(http.MethodGet, "http://mb.local/api/collection", nil)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, clk.slept)

	snap := tr.Opts.Metrics.Snapshot()
	assert.EqualValues(t, 1, snap.TotalRequests)
	assert.EqualValues(t, 2, snap.TotalRetries)
	assert.EqualValues(t, 2, snap.Status5xx)
	assert.EqualValues(t, 1, snap.Status2xx)
}

func TestRespectsRetryAfter(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	calls := 0
	tr := testTransport(clk)
	tr.Base = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			res := jsonResponse(429, "")
			res.Header.Set("Retry-After", "1")
			return res, nil
		}
		return jsonResponse(200, "[]"), nil
	})

	req, _ := http.NewRequest(http.MethodGet, "http://mb.local/api/card", nil)
	_, err := tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, clk.slept)
	assert.EqualValues(t, 1, tr.Opts.Metrics.Snapshot().Status429)
}

func TestReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	tr := testTransport(clk)
	tr.Opts.RetryMax = 1
	tr.Base = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(502, ""), nil
	})
	req, _ := http.NewRequest(http.MethodGet, "http://mb.local/api/card", nil)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 502, resp.StatusCode)
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	calls := 0
	tr := testTransport(clk)
	tr.Base = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(404, ""), nil
	})
	req, _ := http.NewRequest(http.MethodGet, "http://mb.local/api/card", nil)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clk.slept)
}

func TestReplaysBodyOnRetry(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	var bodies []string
	tr := testTransport(clk)
	tr.Base = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) == 1 {
			return jsonResponse(504, ""), nil
		}
		return jsonResponse(200, `{"id":"x"}`), nil
	})
	req, _ := http.NewRequest(http.MethodPost, "http://mb.local/api/session", bytes.NewReader([]byte(`{"a":1}`)))
	req.GetBody = nil
	_, err := tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"a":1}`}, bodies)
}

func TestCanceledContextStopsWaiting(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	tr := testTransport(clk)
	tr.Base = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatal("request should not be sent")
		return nil, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://mb.local/api/card", nil)
	_, err := tr.RoundTrip(req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3*time.Second, parseRetryAfter("3", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
	date := now.Add(2 * time.Second).Format(http.TimeFormat)
	assert.Equal(t, 2*time.Second, parseRetryAfter(date, now))
}

func TestTokenBucketWaitsForRefill(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	tb := newTokenBucket(Limit{RPS: 2, Burst: 1}, clk)
	require.NoError(t, tb.wait(context.Background()))
	require.NoError(t, tb.wait(context.Background()))
	require.NotEmpty(t, clk.slept)
	assert.Equal(t, 500*time.Millisecond, clk.slept[0])
}

func TestIsTransientNetErr(t *testing.T) {
	assert.False(t, isTransientNetErr(context.Canceled))
	assert.True(t, isTransientNetErr(strErr("read: connection reset by peer")))
	assert.False(t, isTransientNetErr(strErr("no such host")))
}

type strErr string

func (e strErr) Error() string { return strings.TrimSpace(string(e)) }
