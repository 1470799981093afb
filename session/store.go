package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNoSession       = errors.New("no active session")
	ErrMalformedRecord = errors.New("malformed session record")
	ErrActiveSession   = errors.New("a session is already active")
	ErrSessionEnding   = errors.New("session is ending")
)

// Store persists at most one Record per key.
// Load returns ErrNoSession when nothing is stored or the entry expired and
// ErrMalformedRecord when the stored payload cannot be decoded.
type Store interface {
	Load(ctx context.Context, key string) (Record, error)
	Save(ctx context.Context, key string, rec Record, expires time.Time) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	record  Record
	expires time.Time
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: map[string]memoryEntry{}, now: now}
}

func (s *MemoryStore) Load(_ context.Context, key string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Record{}, ErrNoSession
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return Record{}, ErrNoSession
	}
	if !e.record.Valid() {
		return Record{}, ErrMalformedRecord
	}
	return e.record, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, rec Record, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{record: rec, expires: expires}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
