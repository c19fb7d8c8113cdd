package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/tradewell/matchbook/internal/domain"
	"github.com/tradewell/matchbook/internal/engine"
)

// PebbleEventStore is a durable Repository backed by a pebble key-value
// database. Each book's stream lives under "e/<bookID>/<seq>" with a
// per-book head key "h/<bookID>" holding the id of the last appended
// event. Appends to one store are serialised so the head check and the
// batch commit are atomic with respect to each other.
type PebbleEventStore struct {
	mu sync.Mutex
	db *pebble.DB
}

// OpenPebble opens (or creates) the event store at dir.
func OpenPebble(dir string) (*PebbleEventStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open event store at %s: %w", dir, err)
	}
	return &PebbleEventStore{db: db}, nil
}

func (s *PebbleEventStore) Close() error {
	return s.db.Close()
}

func (s *PebbleEventStore) Read(ctx context.Context, bookID domain.BookID) (*engine.Books, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: eventKey(bookID, 0),
		UpperBound: eventKeyUpperBound(bookID),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate stream for book %s: %w", bookID, err)
	}
	defer iter.Close()

	var events []engine.Event
	for iter.First(); iter.Valid(); iter.Next() {
		ev, err := DecodeEvent(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode event %q: %w", iter.Key(), err)
		}
		events = append(events, ev)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate stream for book %s: %w", bookID, err)
	}
	return replayPrimaries(bookID, events)
}

func (s *PebbleEventStore) Append(ctx context.Context, bookID domain.BookID, expected domain.EventID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.head(bookID)
	if err != nil {
		return err
	}
	if head.lastID != expected {
		return &ConflictError{BookID: bookID, Expected: expected, Actual: head.lastID}
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for i, ev := range events {
		raw, err := EncodeEvent(ev)
		if err != nil {
			return err
		}
		if err := batch.Set(eventKey(bookID, head.length+int64(i)+1), raw, nil); err != nil {
			return fmt.Errorf("stage event %d for book %s: %w", ev.EventID(), bookID, err)
		}
	}
	next := streamHead{
		length: head.length + int64(len(events)),
		lastID: events[len(events)-1].EventID(),
	}
	if err := batch.Set(headKey(bookID), next.encode(), nil); err != nil {
		return fmt.Errorf("stage head for book %s: %w", bookID, err)
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit %d events for book %s: %w", len(events), bookID, err)
	}
	return nil
}

// streamHead tracks a book stream's length and its last event id. The
// length keys the stream's physical order, so the logical event ids can
// wrap without disturbing iteration.
type streamHead struct {
	length int64
	lastID domain.EventID
}

func (h streamHead) encode() []byte {
	return []byte(fmt.Sprintf("%d %d", h.length, h.lastID))
}

func decodeStreamHead(val []byte) (streamHead, error) {
	var h streamHead
	_, err := fmt.Sscanf(string(val), "%d %d", &h.length, &h.lastID)
	return h, err
}

// head returns the stream head, zero for an unknown book.
func (s *PebbleEventStore) head(bookID domain.BookID) (streamHead, error) {
	val, closer, err := s.db.Get(headKey(bookID))
	if errors.Is(err, pebble.ErrNotFound) {
		return streamHead{}, nil
	}
	if err != nil {
		return streamHead{}, fmt.Errorf("read head for book %s: %w", bookID, err)
	}
	defer closer.Close()

	h, err := decodeStreamHead(val)
	if err != nil {
		return streamHead{}, fmt.Errorf("parse head for book %s: %w", bookID, err)
	}
	return h, nil
}

// eventKey orders a book's events by stream position.
func eventKey(bookID domain.BookID, seq int64) []byte {
	return []byte(fmt.Sprintf("e/%s/%020d", bookID, seq))
}

func eventKeyUpperBound(bookID domain.BookID) []byte {
	return []byte(fmt.Sprintf("e/%s/~", bookID))
}

func headKey(bookID domain.BookID) []byte {
	return []byte(fmt.Sprintf("h/%s", bookID))
}
