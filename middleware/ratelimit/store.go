package ratelimit

import (
	"sync"
	"time"

	"github.com/tech-arch1tect/accounts/services/clock"
)

type Store interface {
	Get(key string) (count int, resetTime time.Time, exists bool)
	Increment(key string, resetTime time.Time) (count int)
	Reset(key string)
}

// MemoryStore keeps fixed-window counters in process memory. Expired windows
// are swept every cleanupInterval until Stop is called.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]*entry
	clock clock.Clock

	stopOnce sync.Once
	stop     chan struct{}
}

type entry struct {
	count     int
	resetTime time.Time
}

const cleanupInterval = time.Minute

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	store := &MemoryStore{
		data:  make(map[string]*entry),
		clock: clock.OrReal(clk),
		stop:  make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

func (s *MemoryStore) Get(key string) (int, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.data[key]; ok && s.clock.Now().Before(e.resetTime) {
		return e.count, e.resetTime, true
	}
	return 0, time.Time{}, false
}

// Increment adds one to the live window for key, or opens a new window ending
// at resetTime.
func (s *MemoryStore) Increment(key string, resetTime time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.data[key]; ok && s.clock.Now().Before(e.resetTime) {
		e.count++
		return e.count
	}

	s.data[key] = &entry{count: 1, resetTime: resetTime}
	return 1
}

func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.data)
}

func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for key, e := range s.data {
		if !now.Before(e.resetTime) {
			delete(s.data, key)
		}
	}
}
