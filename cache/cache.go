package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache keeps rendered article responses on disk, one file per slug and
// variant, under dir.
type Cache struct {
	dir    string
	maxAge time.Duration

	// Clearing bumps a slug's generation so a response rendered before the
	// clear is never written back.
	mu    sync.Mutex
	gens  map[string]uint64
	epoch uint64
}

func New(dir string, maxAge time.Duration) *Cache {
	return &Cache{dir: dir, maxAge: maxAge, gens: make(map[string]uint64)}
}

// entryName matches the files Path produces, so nothing else sharing dir is
// ever removed.
var entryName = regexp.MustCompile(`_[0-9a-f]{16}\.json$`)

// Path returns the cache file for a slug/variant pair
func (c *Cache) Path(slug, variant string) string {
	hash := generateHash(slug + "|" + variant)
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s_%s.json", slug, variant, hash[:16]))
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

func (c *Cache) Write(slug, variant string, body []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.Path(slug, variant), body, 0644)
}

// Generation identifies the cached state of slug. It changes whenever slug,
// or the whole cache, is cleared.
func (c *Cache) Generation(slug string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch + c.gens[slug]
}

// WriteIfCurrent writes body only while slug is still at generation gen and
// reports whether it did.
func (c *Cache) WriteIfCurrent(slug, variant string, gen uint64, body []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch+c.gens[slug] != gen {
		return false, nil
	}
	return true, c.Write(slug, variant, body)
}

// Read returns the cached body if present and younger than maxAge.
func (c *Cache) Read(slug, variant string) ([]byte, bool) {
	path := c.Path(slug, variant)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return content, true
}

// Clear removes every variant cached for the given slugs.
func (c *Cache) Clear(slugs ...string) error {
	c.mu.Lock()
	for _, slug := range slugs {
		if slug != "" {
			c.gens[slug]++
		}
	}
	c.mu.Unlock()

	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(c.dir, slug+"_*.json"))
		if err != nil {
			return err
		}
		for _, match := range matches {
			if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}

// ClearAll removes every cache entry in dir and leaves other files alone.
func (c *Cache) ClearAll() error {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()

	return c.removeEntries(func(os.FileInfo) bool { return true })
}

// ClearOld removes cache files older than maxAge.
func (c *Cache) ClearOld() error {
	return c.removeEntries(func(info os.FileInfo) bool {
		return time.Since(info.ModTime()) > c.maxAge
	})
}

func (c *Cache) removeEntries(match func(os.FileInfo) bool) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !entryName.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !match(info) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
