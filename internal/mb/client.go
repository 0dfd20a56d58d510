package mb

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"question-index/internal/infra/logx"
)

// SessionHeader carries the session token on every authenticated request.
const SessionHeader = "X-Metabase-Session"

// Cache stores raw response bodies keyed by request path and query.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, body []byte) error
}

type Client struct {
	http    *http.Client
	base    string
	session string
	cache   Cache
	metrics *Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithCache serves the last good response for a request when it fails.
func WithCache(c Cache) Option { return func(cl *Client) { cl.cache = c } }

// WithTransport replaces the retrying transport, e.g. for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(cl *Client) { cl.http.Transport = rt }
}

// New creates a client for the server at host using session for auth.
func New(host, session string, opts ...Option) *Client {
	topts := DefaultTransportOptionsFromEnv()
	c := &Client{
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: NewRetryingTransport(topts),
		},
		base:    strings.TrimRight(host, "/"),
		session: session,
		metrics: topts.Metrics,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Metrics returns the transport counters, nil when a custom transport is used.
func (c *Client) Metrics() *Metrics {
	if _, ok := c.http.Transport.(*RetryingTransport); !ok {
		return nil
	}
	return c.metrics
}

// StatusError reports a non-2xx answer from the server.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s status %d", e.Op, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsUnauthorized reports whether err is a 401/403 from the server.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
	}
	return false
}

// ---------- Session / user ----------

type sessionResp struct {
	ID string `json:"id"`
}

// Login exchanges credentials for a session token. The client keeps using
// the new token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New("session.create: username and password required")
	}
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}
	var out sessionResp
	if err := c.do(ctx, "session.create", http.MethodPost, "/api/session", nil, body, &out, false); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("session.create: empty session id")
	}
	c.session = out.ID
	logx.RegisterSecret(out.ID)
	return out.ID, nil
}

type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

// CurrentUser returns the user owning the session.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, "user.current", http.MethodGet, "/api/user/current", nil, nil, &u, true)
	return u, err
}

// ---------- Collections ----------

type Collection struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	Archived    bool   `json:"archived"`
}

// ListCollections returns the non-archived collections visible to the user.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var out []Collection
	if err := c.do(ctx, "collections.list", http.MethodGet, "/api/collection", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- Cards (saved questions) ----------

type Card struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Display      string      `json:"display"`
	CollectionID *int        `json:"collection_id,omitempty"`
	Collection   *Collection `json:"collection,omitempty"`
	Archived     bool        `json:"archived"`
	Favorite     bool        `json:"favorite"`
	UpdatedAt    string      `json:"updated_at,omitempty"`
}

// CardQuery selects a subset of cards. Section maps to the f parameter.
// Collection is a collection slug; empty means cards without a collection.
type CardQuery struct {
	Section    string
	Collection string
}

// ListCards returns the cards matching q.
func (c *Client) ListCards(ctx context.Context, q CardQuery) ([]Card, error) {
	params := url.Values{}
	section := q.Section
	if section == "" {
		section = "all"
	}
	params.Set("f", section)
	// an empty collection parameter selects uncollected cards
	params.Set("collection", q.Collection)
	var out []Card
	if err := c.do(ctx, "cards.list", http.MethodGet, "/api/card", params, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- plumbing ----------

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body []byte, out any, auth bool) error {
	if c.base == "" {
		return fmt.Errorf("%s: host empty", op)
	}
	if auth && c.session == "" {
		return fmt.Errorf("%s: session empty", op)
	}
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	cacheKey := ""
	if method == http.MethodGet && c.cache != nil {
		cacheKey = c.cacheKey(path, params)
	}

	data, err := c.fetch(ctx, op, method, u, body, auth)
	if err != nil {
		if cacheKey != "" && !IsUnauthorized(err) {
			if cached, ok := c.cache.Get(cacheKey); ok {
				logx.Warnw(op+" failed, serving cached response", "err", err)
				return decode(op, cached, out)
			}
		}
		return err
	}
	if cacheKey != "" {
		if err := c.cache.Put(cacheKey, data); err != nil {
			logx.Debugw("cache put failed", "op", op, "err", err)
		}
	}
	return decode(op, data, out)
}

// cacheKey scopes a cached response to the server and the session that
// fetched it. Only a digest of the session is kept.
func (c *Client) cacheKey(path string, params url.Values) string {
	sum := sha256.Sum256([]byte(c.session))
	return c.base + " " + hex.EncodeToString(sum[:8]) + " " + path + "?" + params.Encode()
}

func (c *Client) fetch(ctx context.Context, op, method, u string, body []byte, auth bool) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set(SessionHeader, c.session)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{Op: op, Status: res.StatusCode, Body: snippet(data)}
	}
	return data, nil
}

func decode(op string, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "…"
	}
	return s
}
