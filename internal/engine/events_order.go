package engine

import (
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

// OrderPlacedEvent records the acceptance of an order request. Playing it
// runs the matching algorithm against the current books and finalises the
// remainder per the order's time-in-force, so the net effect ranges from
// fully traded to resting untouched.
type OrderPlacedEvent struct {
	BookID       domain.BookID          `json:"bookId"`
	ID           domain.EventID         `json:"eventId"`
	RequestID    domain.ClientRequestID `json:"requestId"`
	Client       domain.Client          `json:"client"`
	EntryType    domain.EntryType       `json:"entryType"`
	Side         domain.Side            `json:"side"`
	Sizes        domain.EntrySizes      `json:"sizes"`
	Price        *domain.Price          `json:"price,omitempty"`
	TimeInForce  domain.TimeInForce     `json:"timeInForce"`
	WhenHappened time.Time              `json:"whenHappened"`
}

func (e OrderPlacedEvent) AggregateID() domain.BookID { return e.BookID }
func (e OrderPlacedEvent) EventID() domain.EventID    { return e.ID }
func (e OrderPlacedEvent) Kind() EventKind            { return KindPrimary }

// BookEntry converts the event into the aggressor entry used for matching.
func (e OrderPlacedEvent) BookEntry() domain.BookEntry {
	return domain.BookEntry{
		Key: domain.BookEntryKey{
			Price:         e.Price,
			WhenSubmitted: e.WhenHappened,
			EventID:       e.ID,
		},
		RequestID:   e.RequestID,
		Client:      e.Client,
		EntryType:   e.EntryType,
		Side:        e.Side,
		TimeInForce: e.TimeInForce,
		Sizes:       e.Sizes,
		Status:      domain.EntryStatusNew,
	}
}

func (e OrderPlacedEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	return matchAndPlace(e.BookEntry(), books.WithLastEventID(verified))
}

// OrderRejectedEvent records a rejected order request in the log. Playing
// it advances the sequence and nothing else.
type OrderRejectedEvent struct {
	BookID       domain.BookID          `json:"bookId"`
	ID           domain.EventID         `json:"eventId"`
	RequestID    domain.ClientRequestID `json:"requestId"`
	Client       domain.Client          `json:"client"`
	EntryType    domain.EntryType       `json:"entryType"`
	Side         domain.Side            `json:"side"`
	Size         int64                  `json:"size"`
	Price        *domain.Price          `json:"price,omitempty"`
	TimeInForce  domain.TimeInForce     `json:"timeInForce"`
	WhenHappened time.Time              `json:"whenHappened"`
	Reason       domain.RejectReason    `json:"reason"`
	Text         string                 `json:"text,omitempty"`
}

func (e OrderRejectedEvent) AggregateID() domain.BookID { return e.BookID }
func (e OrderRejectedEvent) EventID() domain.EventID    { return e.ID }
func (e OrderRejectedEvent) Kind() EventKind            { return KindPrimary }

func (e OrderRejectedEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{Aggregate: books.WithLastEventID(verified)}, nil
}

// OrderCancelledEvent records the exchange cancelling the unexecuted
// remainder of an aggressor that may not rest on the book (IOC). The
// entry never rested, so playing the event advances the sequence only.
type OrderCancelledEvent struct {
	BookID       domain.BookID          `json:"bookId"`
	ID           domain.EventID         `json:"eventId"`
	RequestID    domain.ClientRequestID `json:"requestId"`
	Client       domain.Client          `json:"client"`
	EntryType    domain.EntryType       `json:"entryType"`
	Side         domain.Side            `json:"side"`
	Sizes        domain.EntrySizes      `json:"sizes"`
	Price        *domain.Price          `json:"price,omitempty"`
	TimeInForce  domain.TimeInForce     `json:"timeInForce"`
	Status       domain.EntryStatus     `json:"status"`
	WhenHappened time.Time              `json:"whenHappened"`
}

func (e OrderCancelledEvent) AggregateID() domain.BookID { return e.BookID }
func (e OrderCancelledEvent) EventID() domain.EventID    { return e.ID }
func (e OrderCancelledEvent) Kind() EventKind            { return KindSideEffect }

func (e OrderCancelledEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{Aggregate: books.WithLastEventID(verified)}, nil
}
