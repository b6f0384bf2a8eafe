package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/facturacion-pe/internal/application/ports"
)

var _ ports.IdempotencyStore = (*MemoryIdempotencyStore)(nil)

// MemoryIdempotencyStore variante de una sola instancia (REDIS_URL vacío, tests).
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // eventID -> expiración
	now     func() time.Time
}

// NewMemoryIdempotencyStore crea el almacén vacío.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]time.Time), now: time.Now}
}

// MarkProcessed true si el evento no estaba marcado o su marca expiró.
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.entries[eventID]; ok && now.Before(exp) {
		return false, nil
	}
	s.entries[eventID] = now.Add(ttl)
	s.purge(now)
	return true, nil
}

// Forget borra la marca.
func (s *MemoryIdempotencyStore) Forget(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, eventID)
	return nil
}

func (s *MemoryIdempotencyStore) purge(now time.Time) {
	for id, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, id)
		}
	}
}
