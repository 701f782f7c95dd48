package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mealmap/backend/internal/domain"
)

// DiskCache implements persistent disk-based caching, one JSON file per key
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDiskCache creates a new disk cache rooted at dir
func NewDiskCache(dir string, defaultTTL time.Duration) *DiskCache {
	return &DiskCache{
		dir:   dir,
		ttl:   defaultTTL,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

type diskEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Get retrieves a value, deleting the file lazily once it has expired.
// Unreadable or malformed files are reported as misses.
func (c *DiskCache) Get(ctx context.Context, key string) ([]byte, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, domain.ErrCacheMiss
	}

	if c.now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, domain.ErrCacheMiss
	}

	return entry.Data, nil
}

// Set stores value under key. Writes for the same key are serialized and land
// via rename so readers never observe a partial file.
func (c *DiskCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	if !json.Valid(value) {
		return fmt.Errorf("disk cache stores JSON records only: key %s", key)
	}

	now := c.now()
	entry := diskEntry{
		Key:       key,
		Data:      json.RawMessage(value),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}

	return nil
}

// Delete removes a value from the disk cache
func (c *DiskCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists checks if a key exists and is not expired
func (c *DiskCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	return err == nil, nil
}

// PurgeExpired removes every expired or unreadable entry and returns how many went
func (c *DiskCache) PurgeExpired(ctx context.Context) (int, error) {
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, err
	}

	removed := 0
	now := c.now()
	for _, path := range files {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry diskEntry
		if err := json.Unmarshal(data, &entry); err == nil && !now.After(entry.ExpiresAt) {
			continue
		}
		if os.Remove(path) == nil {
			removed++
		}
	}
	return removed, nil
}

// path generates the file path for a cache key
func (c *DiskCache) path(key string) string {
	name := strings.ReplaceAll(key, ":", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	return filepath.Join(c.dir, name+".json")
}

func (c *DiskCache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}
