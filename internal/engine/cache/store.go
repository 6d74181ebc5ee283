package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

// cacheFileExtension is the file extension used for cache entries.
const cacheFileExtension = ".json"

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// Stats summarizes the contents of a store.
type Stats struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
	Expired int    `json:"expired"`
	Bytes   int64  `json:"bytes"`
}

// Store is implemented by every cache backend.
type Store interface {
	// Get returns the entry for key, ErrCacheNotFound or ErrCacheExpired.
	Get(ctx context.Context, key string) (*CacheEntry, error)
	// Set stores data under key. source is the originating URL.
	Set(ctx context.Context, key, source string, data jsoniter.RawMessage) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error
	// Stats reports entry counts and sizes.
	Stats(ctx context.Context) (Stats, error)
	// IsEnabled reports whether the store caches anything at all.
	IsEnabled() bool
}

// FileStore keeps each entry as a JSON file in one directory.
// Safe for concurrent use within a process.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int

	mu sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file store rooted at directory, creating it if needed.
// A disabled store answers every call with ErrCacheDisabled.
func NewFileStore(directory string, enabled bool, ttlSeconds int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
	}, nil
}

// Get reads the entry for key. Expired entries are removed in the background.
func (s *FileStore) Get(_ context.Context, key string) (*CacheEntry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.keyToFilePath(key)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry CacheEntry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", unmarshalErr)
	}

	if entry.IsExpired() {
		go func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			_ = os.Remove(filePath)
		}()
		return nil, ErrCacheExpired
	}

	return &entry, nil
}

// Set writes the entry through a temporary file and a rename.
func (s *FileStore) Set(_ context.Context, key, source string, data jsoniter.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := NewCacheEntry(key, source, data, s.ttlSeconds)
	entryData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	filePath := s.keyToFilePath(key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return nil
}

// Delete removes the entry for key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every cache file in the directory.
func (s *FileStore) Clear(_ context.Context) error {
	if !s.enabled {
		return ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != cacheFileExtension {
			continue
		}
		if removeErr := os.Remove(filepath.Join(s.directory, entry.Name())); removeErr != nil {
			return fmt.Errorf("failed to remove cache file %s: %w", entry.Name(), removeErr)
		}
	}

	return nil
}

// CleanupExpired deletes entries whose TTL has passed and returns how many it removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	err := s.walkEntries(func(path string, entry *CacheEntry, _ int64) {
		if entry.IsExpired() && os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Stats counts entries and bytes on disk.
func (s *FileStore) Stats(_ context.Context) (Stats, error) {
	stats := Stats{Backend: BackendFile}
	if !s.enabled {
		return stats, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.walkEntries(func(_ string, entry *CacheEntry, size int64) {
		stats.Entries++
		stats.Bytes += size
		if entry.IsExpired() {
			stats.Expired++
		}
	})
	return stats, err
}

// walkEntries calls fn for every readable cache file. Unreadable or corrupt files are skipped.
func (s *FileStore) walkEntries(fn func(path string, entry *CacheEntry, size int64)) error {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != cacheFileExtension {
			continue
		}

		path := filepath.Join(s.directory, dirEntry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}

		var entry CacheEntry
		if json.Unmarshal(data, &entry) != nil {
			continue
		}
		fn(path, &entry, int64(len(data)))
	}

	return nil
}

// IsEnabled reports whether caching is active.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// Directory returns the cache directory path.
func (s *FileStore) Directory() string {
	return s.directory
}

// keyToFilePath maps a key to a file name that is safe on every platform.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safeKey+cacheFileExtension)
}
