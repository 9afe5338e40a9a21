package metadata

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// diskCache stores JSON blobs keyed by string with a TTL read off the
// file's mtime.
type diskCache struct {
	dir string
	ttl time.Duration
}

func newDiskCache(dir string, ttlHours int) *diskCache {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &diskCache{dir: dir, ttl: time.Duration(ttlHours) * time.Hour}
}

// jitteredTTL staggers expiry deterministically per key (base TTL plus up
// to 6 hours derived from the key hash) so a refresh never invalidates
// the whole cache at once.
func (c *diskCache) jitteredTTL(key string) time.Duration {
	sum := sha1.Sum([]byte(key))
	n := binary.BigEndian.Uint64(sum[:8])
	return c.ttl + time.Duration(n%uint64(6*time.Hour))
}

func (c *diskCache) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

func (c *diskCache) read(key string, v any) bool {
	if key == "" {
		return false
	}
	path := c.path(key)
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(fi.ModTime()) > c.jitteredTTL(key) {
		_ = os.Remove(path)
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *diskCache) write(key string, v any) error {
	if key == "" {
		return errors.New("empty cache key")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := c.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// clear removes every cached entry, e.g. after an API key change.
func (c *diskCache) clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		_ = os.Remove(filepath.Join(c.dir, entry.Name()))
	}
	return nil
}
