// Package cache provides the key-value stores the engine's memo tables sit
// on. The search engine only needs mapping semantics — get, set, delete,
// iterate keys — and treats every store failure as a cache miss, so a store
// can be memory-resident or persistent without the engine caring which.
package cache

import (
	"sync"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// Store is the mapping the memo tables are keyed on. A miss is always a
// valid, non-fatal outcome.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Keys() []string
}

// memEntrySize is a rough per-entry cost estimate (key + value + map
// overhead) used to derive the in-memory store's soft cap.
const memEntrySize = 256

// maxMemFraction bounds how much of system memory the in-memory store may
// use before it resets itself.
const maxMemFraction = 0.25

// MemStore is a mutex-guarded in-memory Store. When the entry count
// exceeds a cap derived from total system memory, the store resets; the
// engine just re-derives what it needs.
type MemStore struct {
	sync.Mutex
	entries    map[string][]byte
	maxEntries int
}

func NewMemStore() *MemStore {
	total := memory.TotalMemory()
	cap := int(maxMemFraction * float64(total) / float64(memEntrySize))
	if cap < 1<<16 {
		cap = 1 << 16
	}
	return &MemStore{
		entries:    make(map[string][]byte),
		maxEntries: cap,
	}
}

func (m *MemStore) Get(key string) ([]byte, bool) {
	m.Lock()
	defer m.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *MemStore) Set(key string, value []byte) {
	m.Lock()
	defer m.Unlock()
	if len(m.entries) >= m.maxEntries {
		log.Warn().Int("max-entries", m.maxEntries).Msg("mem-store-full-resetting")
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = value
}

func (m *MemStore) Delete(key string) {
	m.Lock()
	defer m.Unlock()
	delete(m.entries, key)
}

func (m *MemStore) Keys() []string {
	m.Lock()
	defer m.Unlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored entries.
func (m *MemStore) Len() int {
	m.Lock()
	defer m.Unlock()
	return len(m.entries)
}
