package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/tuannm99/gluedbapi/statement"
)

// DefaultMaxEntries bounds the in-memory cache when no cap is given.
const DefaultMaxEntries = 256

const cleanupInterval = time.Minute

type memoryEntry struct {
	key       string
	payload   *statement.Payload
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process Cache with TTL expiry and LRU eviction.
type Memory struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	lru        *list.List
	maxEntries int

	stopClean chan struct{}
	closeOnce sync.Once
}

// NewMemory creates a memory cache holding at most maxEntries payloads
// (DefaultMaxEntries when maxEntries <= 0). A background loop drops
// expired entries; Close stops it.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	m := &Memory{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		stopClean:  make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (*statement.Payload, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, found := m.items[key]
	if !found {
		return nil, false, nil
	}
	e := elem.Value.(*memoryEntry)
	if e.expired(time.Now()) {
		m.lru.Remove(elem)
		delete(m.items, key)
		return nil, false, nil
	}
	m.lru.MoveToFront(elem)
	return e.payload, true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, p *statement.Payload, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, found := m.items[key]; found {
		e := elem.Value.(*memoryEntry)
		e.payload = p
		e.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	m.items[key] = m.lru.PushFront(&memoryEntry{key: key, payload: p, expiresAt: expiresAt})
	for m.lru.Len() > m.maxEntries {
		back := m.lru.Back()
		if back == nil {
			break
		}
		m.lru.Remove(back)
		delete(m.items, back.Value.(*memoryEntry).key)
	}
	return nil
}

// Len is the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Close stops the cleanup loop. Safe to call more than once.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.stopClean) })
	return nil
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopClean:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, elem := range m.items {
		if elem.Value.(*memoryEntry).expired(now) {
			m.lru.Remove(elem)
			delete(m.items, key)
		}
	}
}
