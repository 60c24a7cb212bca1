package cache

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v3"
	"github.com/penwyp/rewindcat/models"
)

// FileSummary is the cached parse result for one log file. The checksum
// captures path, size and mod time: when any of them change the summary is
// stale and the file is re-parsed.
type FileSummary struct {
	Path     string              `json:"path"`
	Checksum string              `json:"checksum"`
	Tool     models.Tool         `json:"tool"`
	Events   []models.UsageEvent `json:"events"`
	ParsedAt time.Time           `json:"parsed_at"`
}

// ParseCache is a BadgerDB-backed cache of parsed log files. Usage logs
// are append-mostly and old session files never change, so repeat runs
// skip most of the parse work. Aggregated statistics are never cached;
// every run recomputes them from events.
type ParseCache struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Config configures the parse cache.
type Config struct {
	DBPath     string        `json:"db_path"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// DefaultDBPath returns the conventional cache location.
func DefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "rewindcat", "badger")
	}
	return filepath.Join(homeDir, ".cache", "rewindcat", "badger")
}

// Open opens (or creates) the parse cache at cfg.DBPath.
func Open(cfg Config) (*ParseCache, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 30 * 24 * time.Hour
	}

	if err := os.MkdirAll(cfg.DBPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(cfg.DBPath)
	opts = opts.WithLogger(nil)
	opts = opts.WithValueLogFileSize(64 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}

	return &ParseCache{db: db}, nil
}

// Checksum derives the freshness key for path from its size and mod time.
func Checksum(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf("%s_%d_%d",
		path, info.ModTime().Unix(), info.Size())))), nil
}

// Get returns the cached summary for path if it is still fresh.
func (c *ParseCache) Get(path string) (*FileSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false
	}

	checksum, err := Checksum(path)
	if err != nil {
		return nil, false
	}

	var summary FileSummary
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return sonic.Unmarshal(val, &summary)
		})
	})
	if err != nil || summary.Checksum != checksum {
		return nil, false
	}
	return &summary, true
}

// Put stores the parse result for path.
func (c *ParseCache) Put(summary *FileSummary) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("cache is closed")
	}

	data, err := sonic.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(summary.Path), data).WithTTL(30 * 24 * time.Hour)
		return txn.SetEntry(entry)
	})
}

// Close releases the underlying database.
func (c *ParseCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

func cacheKey(path string) []byte {
	return []byte("file:" + path)
}
