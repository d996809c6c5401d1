package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "pages"), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	if _, ok := c.Get("https://example.com/"); ok {
		t.Fatal("Get() hit on empty cache")
	}
	if err := c.Set("https://example.com/", []byte("<html>hi</html>")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := c.Get("https://example.com/")
	if !ok {
		t.Fatal("Get() missed after Set()")
	}
	if string(got) != "<html>hi</html>" {
		t.Errorf("Get() = %q", got)
	}
	if _, ok := c.Get("https://example.com/other"); ok {
		t.Error("Get() hit for a different URL")
	}
}

func TestCache_Expiry(t *testing.T) {
	tests := []struct {
		name   string
		maxAge time.Duration
		age    time.Duration
		wantOK bool
	}{
		{"fresh", time.Hour, time.Minute, true},
		{"expired", time.Hour, 2 * time.Hour, false},
		{"no expiry", 0, 1000 * time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCache(t.TempDir(), tt.maxAge)
			if err != nil {
				t.Fatalf("NewCache() error = %v", err)
			}
			if err := c.Set("u", []byte("body")); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			c.now = func() time.Time { return time.Now().Add(tt.age) }
			if _, ok := c.Get("u"); ok != tt.wantOK {
				t.Errorf("Get() ok = %v, want %v", ok, tt.wantOK)
			}
			_, statErr := os.Stat(c.path("u"))
			if kept := statErr == nil; kept != tt.wantOK {
				t.Errorf("entry kept on disk = %v, want %v", kept, tt.wantOK)
			}
		})
	}
}

func TestCache_Delete(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := c.Delete("missing"); err != nil {
		t.Errorf("Delete() of missing entry error = %v", err)
	}
	if err := c.Set("u", []byte("x")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete("u"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := c.Get("u"); ok {
		t.Error("Get() hit after Delete()")
	}
}
