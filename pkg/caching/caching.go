// Package caching stores fetched page bodies on disk, keyed by URL.
package caching

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based page cache with a maximum entry age.
type Cache struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

// NewCache creates dir if needed. A maxAge of zero disables expiry.
func NewCache(dir string, maxAge time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		dir:    dir,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

func (c *Cache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".html")
}

// Get returns the cached body for url when present and fresh. An expired
// entry is removed.
func (c *Cache) Get(url string) ([]byte, bool) {
	p := c.path(url)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.maxAge > 0 && c.now().Sub(info.ModTime()) > c.maxAge {
		c.Delete(url)
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Cache) Set(url string, data []byte) error {
	if err := os.WriteFile(c.path(url), data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Delete removes the entry for url. Missing entries are not an error.
func (c *Cache) Delete(url string) error {
	err := os.Remove(c.path(url))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
