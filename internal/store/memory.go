package store

import (
	"context"
	"sync"

	"github.com/tradewell/matchbook/internal/domain"
	"github.com/tradewell/matchbook/internal/engine"
)

// MemoryEventStore is a thread-safe in-memory Repository, keyed by
// book id. Streams hold the encoded form so reads exercise the same
// codec path as the durable store.
type MemoryEventStore struct {
	mu      sync.RWMutex
	streams map[domain.BookID][][]byte
	heads   map[domain.BookID]domain.EventID
}

// NewMemoryEventStore creates an empty MemoryEventStore.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		streams: make(map[domain.BookID][][]byte),
		heads:   make(map[domain.BookID]domain.EventID),
	}
}

func (s *MemoryEventStore) Read(ctx context.Context, bookID domain.BookID) (*engine.Books, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	raw := s.streams[bookID]
	s.mu.RUnlock()

	events := make([]engine.Event, 0, len(raw))
	for _, enc := range raw {
		ev, err := DecodeEvent(enc)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return replayPrimaries(bookID, events)
}

func (s *MemoryEventStore) Append(ctx context.Context, bookID domain.BookID, expected domain.EventID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := make([][]byte, 0, len(events))
	for _, ev := range events {
		enc, err := EncodeEvent(ev)
		if err != nil {
			return err
		}
		encoded = append(encoded, enc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if head := s.heads[bookID]; head != expected {
		return &ConflictError{BookID: bookID, Expected: expected, Actual: head}
	}
	s.streams[bookID] = append(s.streams[bookID], encoded...)
	s.heads[bookID] = events[len(events)-1].EventID()
	return nil
}
