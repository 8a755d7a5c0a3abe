// Package cache stores computed reachability sets on disk, keyed by the
// content hash of the document they were computed from.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/panbanda/reachable/pkg/reachable"
)

// version is mixed into every key so a change to the traversal rules
// invalidates earlier entries.
const version = "reachable-set/v1"

// Cache is a file-based store of reachability sets. A disabled cache never
// hits and ignores writes.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// Entry is the on-disk envelope of one set.
type Entry struct {
	Hash        string    `json:"hash"`
	Fingerprint uint64    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
	Data        []byte    `json:"data"`
}

// New creates a cache rooted at dir. Entries older than ttlHours are
// dropped on read; zero keeps them forever.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false, now: time.Now}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
		now:     time.Now,
	}, nil
}

// Enabled reports whether reads and writes reach the disk.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashBytes computes a BLAKE3 hash of data as a hex string.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the set stored under hash. Expired, unreadable or corrupt
// entries are treated as misses and removed.
func (c *Cache) Get(hash string) (*reachable.Set, bool) {
	if !c.Enabled() {
		return nil, false
	}

	path := c.keyPath(hash)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Hash != hash {
		_ = os.Remove(path)
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.Timestamp) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}

	set := reachable.NewSet()
	if err := set.UnmarshalBinary(entry.Data); err != nil || set.Fingerprint() != entry.Fingerprint {
		_ = os.Remove(path)
		return nil, false
	}
	return set, true
}

// Put stores set under hash.
func (c *Cache) Put(hash string, set *reachable.Set) error {
	if !c.Enabled() {
		return nil
	}

	data, err := set.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode set: %w", err)
	}
	entryData, err := json.Marshal(Entry{
		Hash:        hash,
		Fingerprint: set.Fingerprint(),
		Timestamp:   c.now(),
		Data:        data,
	})
	if err != nil {
		return err
	}

	// write then rename so concurrent readers never see a torn entry
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(hash))
}

// Invalidate removes the entry for hash. A missing entry is not an error.
func (c *Cache) Invalidate(hash string) error {
	if !c.Enabled() {
		return nil
	}
	if err := os.Remove(c.keyPath(hash)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath maps a document hash to its entry file.
func (c *Cache) keyPath(hash string) string {
	sum := blake3.Sum256([]byte(version + ":" + hash))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Stats summarizes the entries on disk.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats walks the cache directory.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.Enabled() {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		mod := info.ModTime()
		if oldest.IsZero() || mod.Before(oldest) {
			oldest = mod
		}
		if newest.IsZero() || mod.After(newest) {
			newest = mod
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = c.now().Sub(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = c.now().Sub(newest)
	}
	return stats, nil
}
