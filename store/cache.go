package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned by Get for a key that was never set
var ErrNotFound = errors.New("cache: key not found")

// Cache is a durable slot addressed by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the cache backend named kind at location.
// For file the location is a directory, for sqlite a database path.
func Open(kind, location string) (Cache, error) {
	switch kind {
	case BackendFile, "":
		return NewFileCache(location)
	case BackendSQLite:
		return OpenSQLCache(location)
	case BackendMemory:
		return NewMemoryCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", kind)
}

// Close releases c if its backend holds resources
func Close(c Cache) error {
	if cl, ok := c.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}

// FileCache stores each key in its own file under dir
type FileCache struct {
	dir string
}

// NewFileCache creates dir if needed
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

var unsafeKey = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, unsafeKey.ReplaceAllString(key, "_")+".cache")
}

// Get reads the file for key
func (c *FileCache) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return b, nil
}

// Set replaces the file for key via a temp file and rename
func (c *FileCache) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// MemoryCache keeps values in process memory; they never expire
type MemoryCache struct {
	c *cache.Cache
}

// NewMemoryCache creates an empty memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the stored value
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, ErrNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("cache: unexpected value type %T", v)
	}
	return append([]byte(nil), b...), nil
}

// Set stores a copy of value
func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.c.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}
