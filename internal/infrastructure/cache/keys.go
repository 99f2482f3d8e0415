package cache

import (
	"context"
	"sync"
	"time"
)

// Keys is a set of string keys that each expire on their own. Both
// storefront key stores are thin views over one.
type Keys interface {
	// Claim adds key unless it is already present, and reports whether it
	// did. Concurrent claims of one key succeed exactly once.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Put adds or refreshes key.
	Put(ctx context.Context, key string, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	// Release drops key so a later Claim can succeed. A missing key is not
	// an error.
	Release(ctx context.Context, key string) error
	Close() error
}

const sweepInterval = 5 * time.Minute

// MemoryKeys keeps keys in process memory, so they are private to one
// replica. A background sweep drops expired keys.
type MemoryKeys struct {
	mu      sync.RWMutex
	expires map[string]time.Time

	done      chan struct{}
	swept     sync.WaitGroup
	closeOnce sync.Once
}

func NewMemoryKeys() *MemoryKeys {
	return newMemoryKeys(sweepInterval)
}

func newMemoryKeys(every time.Duration) *MemoryKeys {
	m := &MemoryKeys{expires: make(map[string]time.Time), done: make(chan struct{})}
	m.swept.Add(1)
	go m.sweepLoop(every)
	return m
}

func (m *MemoryKeys) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.expires[key] = now.Add(ttl)
	return true, nil
}

func (m *MemoryKeys) Put(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	m.expires[key] = time.Now().Add(ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemoryKeys) Has(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	exp, ok := m.expires[key]
	m.mu.RUnlock()
	return ok && time.Now().Before(exp), nil
}

func (m *MemoryKeys) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.expires, key)
	m.mu.Unlock()
	return nil
}

// Len counts stored keys, including expired ones not yet swept.
func (m *MemoryKeys) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.expires)
}

// Close stops the sweeper. It is idempotent.
func (m *MemoryKeys) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.swept.Wait()
	})
	return nil
}

func (m *MemoryKeys) sweepLoop(every time.Duration) {
	defer m.swept.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *MemoryKeys) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, exp := range m.expires {
		if !now.Before(exp) {
			delete(m.expires, key)
		}
	}
}
