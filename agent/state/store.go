package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrThreadNotFound = errors.New("conversation thread not found")
	ErrNilThread      = errors.New("conversation thread is nil")
	ErrInvalidConvID  = errors.New("conversation id is empty")
)

const defaultStoreTTL = 2 * time.Hour

// Store is the persistence contract used by the dialogue service. The only
// implementation keeps threads in process memory; nothing survives a restart.
type Store interface {
	Get(ctx context.Context, conversationID string) (*Thread, error)
	Put(ctx context.Context, thread *Thread) error
	Delete(ctx context.Context, conversationID string) error
}

// StoreOption customizes MemoryStore.
type StoreOption func(*MemoryStore)

// WithTTL bounds how long an idle thread is kept before eviction.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithStoreClock overrides the wall clock, for tests.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

type storeEntry struct {
	thread    *Thread
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded keyed map with lazy TTL eviction.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]storeEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]storeEntry),
		ttl:     defaultStoreTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, conversationID string) (*Thread, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidConvID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[conversationID]
	if !ok {
		return nil, ErrThreadNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, conversationID)
		return nil, ErrThreadNotFound
	}
	return entry.thread, nil
}

func (s *MemoryStore) Put(ctx context.Context, thread *Thread) error {
	if thread == nil {
		return ErrNilThread
	}
	if strings.TrimSpace(thread.ConversationID) == "" {
		return ErrInvalidConvID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	s.entries[thread.ConversationID] = storeEntry{
		thread:    thread,
		expiresAt: now.Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrInvalidConvID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, conversationID)
	return nil
}

// sweepLocked drops expired entries. Runs under s.mu on every write so the
// map never grows past the working set plus stragglers within one TTL.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
