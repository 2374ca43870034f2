package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/sleeve/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketArt = []byte("art")
)

// ArtStore persists directory -> image resolutions using BoltDB.
type ArtStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewArtStore opens the art index under dir. An empty dir keeps everything
// in memory for the lifetime of the process.
func NewArtStore(dir string) (*ArtStore, error) {
	if dir == "" {
		// Memory-only mode (no persistence)
		return &ArtStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "sleeve.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketArt)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &ArtStore{db: db, cache: make(map[string][]byte)}, nil
}

// Persistent reports whether entries survive Close
func (s *ArtStore) Persistent() bool {
	return s.db != nil
}

func (s *ArtStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the stored entry for a directory key
func (s *ArtStore) Get(key string) (domain.CacheEntry, bool) {
	var entry domain.CacheEntry

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return entry, json.Unmarshal(data, &entry) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return entry, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArt)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return entry, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return entry, json.Unmarshal(data, &entry) == nil
}

// Put stores an entry under its directory key
func (s *ArtStore) Put(entry domain.CacheEntry) error {
	if entry.DirectoryKey == "" {
		return errors.New("art entry without directory key")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[entry.DirectoryKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketArt).Put([]byte(entry.DirectoryKey), data)
	})
}

// Delete removes the entry for a directory key
func (s *ArtStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArt)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// All returns every stored entry ordered by timestamp, oldest first
func (s *ArtStore) All() ([]domain.CacheEntry, error) {
	raw := make(map[string][]byte)

	if s.db != nil {
		err := s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketArt)
			if b == nil {
				return nil
			}
			return b.ForEach(func(k, v []byte) error {
				data := make([]byte, len(v))
				copy(data, v)
				raw[string(k)] = data
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	for k, v := range s.cache {
		raw[k] = v
	}
	s.mu.RUnlock()

	entries := make([]domain.CacheEntry, 0, len(raw))
	for k, data := range raw {
		var entry domain.CacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("decode art entry %s: %w", k, err)
		}
		entries = append(entries, entry)
	}

	slices.SortFunc(entries, func(a, b domain.CacheEntry) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.DirectoryKey, b.DirectoryKey)
	})
	return entries, nil
}

// Clear drops every entry
func (s *ArtStore) Clear() error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArt)
		if b == nil {
			return nil
		}
		var keys [][]byte
		b.ForEach(func(k, _ []byte) error {
			keys = append(keys, slices.Clone(k))
			return nil
		})
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
