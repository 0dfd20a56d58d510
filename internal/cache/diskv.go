// Package cache keeps the last good API response per request on disk so
// the index can still render when the server is unreachable.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// Disk is a diskv-backed response cache. Entries older than MaxAge are
// treated as missing; zero disables expiry.
type Disk struct {
	d      *diskv.Diskv
	MaxAge time.Duration
	now    func() time.Time
}

type record struct {
	StoredAt time.Time       `json:"stored_at"`
	Key      string          `json:"key"`
	Body     json.RawMessage `json:"body"`
}

// Open creates (if needed) and opens the cache rooted at dir.
func Open(dir string) (*Disk, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache: empty dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    shardTransform,
			CacheSizeMax: 512 * 1024,
			FilePerm:     0o600,
			PathPerm:     0o700,
		}),
		MaxAge: 7 * 24 * time.Hour,
		now:    time.Now,
	}, nil
}

// Get returns the body stored for key.
func (c *Disk) Get(key string) ([]byte, bool) {
	raw, err := c.d.Read(fileKey(key))
	if err != nil {
		return nil, false
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Key != key {
		return nil, false
	}
	if c.MaxAge > 0 && c.now().Sub(rec.StoredAt) > c.MaxAge {
		return nil, false
	}
	return []byte(rec.Body), true
}

// Put stores body for key. body must be valid JSON.
func (c *Disk) Put(key string, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("cache: body for %q is not JSON", key)
	}
	raw, err := json.Marshal(record{StoredAt: c.now(), Key: key, Body: body})
	if err != nil {
		return err
	}
	return c.d.Write(fileKey(key), raw)
}

// Purge removes every cached entry.
func (c *Disk) Purge() error { return c.d.EraseAll() }

// fileKey maps arbitrary request keys to filesystem-safe names.
func fileKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// shardTransform spreads files over two directory levels.
func shardTransform(key string) []string {
	if len(key) < 4 {
		return []string{}
	}
	return []string{key[0:2], key[2:4]}
}
