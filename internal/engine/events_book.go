package engine

import (
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

// BooksCreatedEvent brings a new Books aggregate into existence.
type BooksCreatedEvent struct {
	BookID          domain.BookID          `json:"bookId"`
	ID              domain.EventID         `json:"eventId"`
	BusinessDate    time.Time              `json:"businessDate"`
	TradingStatuses domain.TradingStatuses `json:"tradingStatuses"`
}

func (e BooksCreatedEvent) AggregateID() domain.BookID { return e.BookID }
func (e BooksCreatedEvent) EventID() domain.EventID    { return e.ID }
func (e BooksCreatedEvent) Kind() EventKind            { return KindPrimary }

func (e BooksCreatedEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	created := books.WithLastEventID(verified)
	created.BusinessDate = e.BusinessDate
	created.TradingStatuses = e.TradingStatuses
	return Transaction{Aggregate: created}, nil
}

// EntryAddedToBookEvent rests an entry on its side's book. It is the
// terminal effect of placing an order or quote side that (still) has
// available size.
type EntryAddedToBookEvent struct {
	BookID domain.BookID    `json:"bookId"`
	ID     domain.EventID   `json:"eventId"`
	Entry  domain.BookEntry `json:"entry"`
}

func (e EntryAddedToBookEvent) AggregateID() domain.BookID { return e.BookID }
func (e EntryAddedToBookEvent) EventID() domain.EventID    { return e.ID }
func (e EntryAddedToBookEvent) Kind() EventKind            { return KindSideEffect }

func (e EntryAddedToBookEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{Aggregate: books.WithLastEventID(verified).AddEntry(e.Entry)}, nil
}

// EntriesRemovedFromBookEvent removes entries from the books, carrying
// their final (e.g. cancelled) snapshots for the event log.
type EntriesRemovedFromBookEvent struct {
	BookID       domain.BookID      `json:"bookId"`
	ID           domain.EventID     `json:"eventId"`
	WhenHappened time.Time          `json:"whenHappened"`
	Entries      []domain.BookEntry `json:"entries"`
}

func (e EntriesRemovedFromBookEvent) AggregateID() domain.BookID { return e.BookID }
func (e EntriesRemovedFromBookEvent) EventID() domain.EventID    { return e.ID }
func (e EntriesRemovedFromBookEvent) Kind() EventKind            { return KindSideEffect }

func (e EntriesRemovedFromBookEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{Aggregate: books.WithLastEventID(verified).RemoveEntries(e.Entries)}, nil
}
