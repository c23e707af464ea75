package cleanup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Cache is an on-disk memoization store for one cleanup invocation family.
// Entries are JSON payloads keyed by (normalized path hash, content hash)
// and expire by TTL. The cache is purely additive: disabling it never
// changes output, only speed.
type Cache struct {
	dir      string
	ttl      time.Duration
	maxBytes int64
}

// cacheEntry is the on-disk entry format.
type cacheEntry struct {
	ContentHash string          `json:"content_hash"`
	CreatedAt   time.Time       `json:"created_at"`
	Payload     json.RawMessage `json:"payload"`
}

// NewCache opens (creating if needed) a cache directory.
func NewCache(dir string, ttl time.Duration, maxBytes int64) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, maxBytes: maxBytes}, nil
}

// HashBytes returns the hex sha256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// entryPath maps a key path to its cache file.
// The path is normalized so the same file hits the same entry on every OS.
func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashBytes([]byte(filepath.ToSlash(key)))+".json")
}

// Get loads the payload for key into out when the stored content hash
// matches and the entry has not expired.
func (c *Cache) Get(key, contentHash string, out any) bool {
	if c == nil {
		return false
	}
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return false // corrupted entry, treat as miss
	}
	if e.ContentHash != contentHash {
		return false
	}
	if c.ttl > 0 && time.Since(e.CreatedAt) > c.ttl {
		return false
	}
	return json.Unmarshal(e.Payload, out) == nil
}

// Put stores a payload for key. Writes are skipped silently once the size
// ceiling is reached; eviction is TTL-only.
func (c *Cache) Put(key, contentHash string, payload any) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(cacheEntry{
		ContentHash: contentHash,
		CreatedAt:   time.Now(),
		Payload:     raw,
	})
	if err != nil {
		return err
	}
	if c.maxBytes > 0 && c.size()+int64(len(data)) > c.maxBytes {
		return nil
	}

	// Atomic write so a crashed run never leaves a torn entry.
	path := c.entryPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// size sums the cache directory's file sizes.
func (c *Cache) size() int64 {
	var total int64
	_ = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// LoadConfigCached loads a rule config through the cache. The entry is
// keyed by the config path and invalidated whenever the file's content
// hash changes, which is stricter than the TTL the content cache relies
// on: stale rules would silently change what gets deleted.
func LoadConfigCached(path string, cache *Cache) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	hash := HashBytes(data)

	var cfg Config
	if cache.Get("config:"+path, hash, &cfg) {
		return &cfg, nil
	}

	parsed, err := ParseConfig(path, data)
	if err != nil {
		return nil, err
	}
	_ = cache.Put("config:"+path, hash, parsed) // cache failure is not a run failure
	return parsed, nil
}
