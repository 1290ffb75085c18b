package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	th := NewThread("c1", time.Now())
	th.Append(RoleAssistant, "hola")

	if err := store.Put(ctx, th); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ConversationID != "c1" || len(got.Turns) != 1 {
		t.Fatalf("unexpected thread: %+v", got)
	}
}

func TestMemoryStoreMissingThread(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}
}

func TestMemoryStoreValidation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "  "); !errors.Is(err, ErrInvalidConvID) {
		t.Fatalf("expected ErrInvalidConvID on get, got %v", err)
	}
	if err := store.Put(ctx, nil); !errors.Is(err, ErrNilThread) {
		t.Fatalf("expected ErrNilThread, got %v", err)
	}
	if err := store.Put(ctx, NewThread("", time.Now())); !errors.Is(err, ErrInvalidConvID) {
		t.Fatalf("expected ErrInvalidConvID on put, got %v", err)
	}
	if err := store.Delete(ctx, ""); !errors.Is(err, ErrInvalidConvID) {
		t.Fatalf("expected ErrInvalidConvID on delete, got %v", err)
	}
}

func TestMemoryStoreTTLEviction(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(
		WithTTL(time.Hour),
		WithStoreClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	if err := store.Put(ctx, NewThread("c1", current)); err != nil {
		t.Fatalf("put: %v", err)
	}

	current = current.Add(30 * time.Minute)
	if _, err := store.Get(ctx, "c1"); err != nil {
		t.Fatalf("thread should still be live: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if _, err := store.Get(ctx, "c1"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected eviction after ttl, got %v", err)
	}
}

func TestMemoryStorePutSweepsExpired(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(
		WithTTL(time.Hour),
		WithStoreClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	if err := store.Put(ctx, NewThread("old", current)); err != nil {
		t.Fatalf("put old: %v", err)
	}

	current = current.Add(3 * time.Hour)
	if err := store.Put(ctx, NewThread("new", current)); err != nil {
		t.Fatalf("put new: %v", err)
	}

	store.mu.Lock()
	_, oldExists := store.entries["old"]
	store.mu.Unlock()
	if oldExists {
		t.Fatal("expired thread should be swept on write")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, NewThread("c1", time.Now())); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "c1"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound after delete, got %v", err)
	}
}
