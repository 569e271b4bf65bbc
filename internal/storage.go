package internal

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store is the durable string-keyed store behind sessions and identity.
// A missing key is reported as ok=false with a nil error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by OpenStore
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// OpenStore opens the backend selected in cfg. On error the returned Store is a nil interface.
func OpenStore(cfg *Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Storage.Backend {
	case "", BackendSQLite:
		var s *SQLiteStore
		s, err = NewSQLiteStore(cfg.DatabasePath(filepath.Join(cfg.Storage.Dir, "chats.db")))
		store = s
	case BackendBolt:
		var s *BoltStore
		s, err = NewBoltStore(cfg.DatabasePath(filepath.Join(cfg.Storage.Dir, "chats.bolt")))
		store = s
	case BackendRedis:
		var s *RedisStore
		s, err = NewRedisStore(cfg.Storage.RedisURL, cfg.Storage.RedisPrefix)
		store = s
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: sqlite, bolt, redis, memory)", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// MemoryStore keeps everything in a map. Nothing survives the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
