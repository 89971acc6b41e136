package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644

	// entryExt is the suffix for cache entry files. Entries contain raw
	// audio/mpeg bytes; presence of the file is the only index.
	entryExt = ".mp3"
)

// ErrNotFound is returned when a key has no cache entry.
var ErrNotFound = errors.New("cache entry not found")

// Stats holds cache hit/miss counters.
type Stats struct {
	Hits   int64
	Misses int64
}

// Store is a disk-backed audio cache. Entries are immutable once
// published and are never evicted; cleanup is left to external tooling.
type Store struct {
	dir string

	mu    sync.Mutex
	stats Stats
}

// NewStore creates a store rooted at dir, creating the directory if absent.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Exists reports whether an entry for key has been published.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.entryPath(key))
	return err == nil
}

// Read returns the bytes stored under key, or ErrNotFound.
func (s *Store) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			s.count(false)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	s.count(true)
	return data, nil
}

// Write publishes data under key. The write is atomic with respect to
// concurrent readers: data lands in a temp file in the same directory and
// is renamed into place, so a reader sees either nothing or the full entry.
func (s *Store) Write(key string, data []byte) error {
	entryPath := s.entryPath(key)

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp cache file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp cache file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set cache file permissions: %w", err)
	}

	if err := os.Rename(tmpPath, entryPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}

	return nil
}

// Stats returns a snapshot of the hit/miss counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Store) count(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hit {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, key+entryExt)
}
