package store

import (
	"context"
	"fmt"

	"github.com/tradewell/matchbook/internal/domain"
	"github.com/tradewell/matchbook/internal/engine"
)

// Repository persists per-book event streams and enforces optimistic
// concurrency on append.
type Repository interface {
	// Read rebuilds the aggregate from the stored stream by replaying
	// its primary events. It returns (nil, nil) when no events exist
	// for the book.
	Read(ctx context.Context, bookID domain.BookID) (*engine.Books, error)

	// Append writes the events to the book's stream, provided the
	// stream's last event id still equals expected. A mismatch returns
	// a *ConflictError and writes nothing.
	Append(ctx context.Context, bookID domain.BookID, expected domain.EventID, events []engine.Event) error
}

// ConflictError reports a lost optimistic-concurrency race: the stream
// advanced past the expected last event id between read and append.
type ConflictError struct {
	BookID   domain.BookID
	Expected domain.EventID
	Actual   domain.EventID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("append conflict on book %s: expected last event %d, stream at %d",
		e.BookID, e.Expected, e.Actual)
}

// replayPrimaries folds a stored stream back into an aggregate. Side
// effect events are skipped: playing each primary regenerates them, and
// that regeneration advances the aggregate's last event id past them.
func replayPrimaries(bookID domain.BookID, events []engine.Event) (*engine.Books, error) {
	var books *engine.Books
	for _, ev := range events {
		if ev.Kind() != engine.KindPrimary {
			continue
		}
		if books == nil {
			if _, ok := ev.(engine.BooksCreatedEvent); !ok {
				return nil, fmt.Errorf("stream for book %s does not start with creation, got %T", bookID, ev)
			}
			books = engine.NewBooks(bookID)
		}
		txn, err := ev.Play(books)
		if err != nil {
			return nil, fmt.Errorf("replay event %d for book %s: %w", ev.EventID(), bookID, err)
		}
		books = txn.Aggregate
	}
	return books, nil
}
