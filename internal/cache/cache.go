// Package cache is a file-backed JSON cache for fetched source payloads and
// geocode lookups. Each entry lives in its own file named by a hash of its
// logical key, so concurrent writers of different keys never contend.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Default TTLs per payload class.
const (
	TTLSheets  = time.Hour
	TTLMaps    = 24 * time.Hour
	TTLGeocode = 7 * 24 * time.Hour
)

// envelope wraps every cached value with its logical key and write time.
type envelope struct {
	Key       string          `json:"key"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Cache stores JSON envelopes under a directory.
type Cache struct {
	dir string
	now func() time.Time
}

// New opens (creating if needed) a cache rooted at dir.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "cache: create dir %s", dir)
	}
	return &Cache{dir: dir, now: time.Now}, nil
}

// Get loads the entry for key into v if it exists and is younger than
// maxAge. A missing, expired, or unreadable entry is a cache miss, never an
// error: the caller always has the fetch path to fall back on.
func (c *Cache) Get(key string, maxAge time.Duration, v any) bool {
	env, ok := c.read(key)
	if !ok {
		return false
	}
	if c.now().Sub(env.Timestamp) > maxAge {
		zap.L().Debug("cache: entry expired", zap.String("key", key))
		return false
	}
	return c.decode(key, env, v)
}

// GetStale loads the entry for key regardless of age. Callers use it after a
// live fetch has already failed: the last good payload beats an empty source.
func (c *Cache) GetStale(key string, v any) bool {
	env, ok := c.read(key)
	if !ok {
		return false
	}
	return c.decode(key, env, v)
}

func (c *Cache) read(key string) (envelope, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return envelope{}, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		zap.L().Warn("cache: corrupt entry", zap.String("key", key), zap.Error(err))
		return envelope{}, false
	}
	return env, true
}

func (c *Cache) decode(key string, env envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		zap.L().Warn("cache: undecodable entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Put stores v under key. The entry is written to a temp file and renamed
// into place so readers never observe a partial write.
func (c *Cache) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cache: marshal value for %s", key)
	}
	env := envelope{Key: key, Timestamp: c.now(), Data: data}
	raw, err := json.Marshal(env)
	if err != nil {
		return eris.Wrapf(err, "cache: marshal envelope for %s", key)
	}

	path := c.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return eris.Wrapf(err, "cache: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "cache: rename %s", path)
	}
	return nil
}

func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:8])+".json")
}
