// Package cache stores serialized architecture maps between runs. The
// analyzer itself is stateless; caching lives out here at the CLI layer,
// keyed by project root and validated against a digest of the discovered
// file contents, so a changed file invalidates the entry naturally.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Cache is a file-backed result cache with TTL and digest validation.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// entry is one stored result.
type entry struct {
	Digest    string    `json:"digest"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache rooted at dir. A disabled cache is a no-op on every
// method, so callers never branch.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// ProjectKey derives the cache key for a project root.
func ProjectKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(abs))
}

// DigestFiles computes a BLAKE3 digest over the sorted file list and each
// file's content. Unreadable files contribute their path only, so a file
// that later becomes readable changes the digest.
func DigestFiles(files []string) string {
	hasher := blake3.New()
	for _, f := range files {
		hasher.Write([]byte(f))
		hasher.Write([]byte{0})
		if data, err := os.ReadFile(f); err == nil {
			hasher.Write(data)
		}
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Get returns the cached data for key when the digest matches and the
// entry has not expired.
func (c *Cache) Get(key, digest string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if e.Digest != digest {
		return nil, false
	}
	if time.Since(e.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}
	return e.Data, true
}

// Set stores data under key with its validation digest.
func (c *Cache) Set(key, digest string, data []byte) error {
	if !c.enabled {
		return nil
	}

	raw, err := json.Marshal(entry{
		Digest:    digest,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), raw, 0600)
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
