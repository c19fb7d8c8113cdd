package engine

import (
	"fmt"

	"github.com/tradewell/matchbook/internal/domain"
)

// EventKind separates events that respond directly to a command (PRIMARY)
// from events generated while playing another event (SIDE_EFFECT). During
// recovery only primary events are re-played; side effects are regenerated
// deterministically by the primaries that produced them.
type EventKind string

const (
	KindPrimary    EventKind = "PRIMARY"
	KindSideEffect EventKind = "SIDE_EFFECT"
)

// Event is something that has happened to a Books aggregate. Playing an
// event transitions the aggregate and may emit further side-effect events.
// An event relates to exactly one aggregate.
type Event interface {
	AggregateID() domain.BookID
	EventID() domain.EventID
	Kind() EventKind
	Play(books *Books) (Transaction, error)
}

// Transaction is the atomic outcome of applying one or more events: the
// resulting aggregate plus the ordered events generated along the way.
type Transaction struct {
	Aggregate *Books
	Events    []Event
}

// Append merges another transaction into this one. The aggregate is taken
// from the right-hand side; event lists are concatenated in order.
func (t Transaction) Append(other Transaction) Transaction {
	events := make([]Event, 0, len(t.Events)+len(other.Events))
	events = append(events, t.Events...)
	events = append(events, other.Events...)
	return Transaction{Aggregate: other.Aggregate, Events: events}
}

// ThenPlay plays ev against the transaction's aggregate and appends ev
// plus anything it generated.
func (t Transaction) ThenPlay(ev Event) (Transaction, error) {
	res, err := ev.Play(t.Aggregate)
	if err != nil {
		return Transaction{}, err
	}
	events := make([]Event, 0, len(t.Events)+1+len(res.Events))
	events = append(events, t.Events...)
	events = append(events, ev)
	events = append(events, res.Events...)
	return Transaction{Aggregate: res.Aggregate, Events: events}, nil
}

// SequenceError reports an event whose id is not the immediate successor
// of the aggregate's last applied event id. It signals corrupted storage,
// a concurrent write the repository failed to prevent, or a replay bug,
// and is never recoverable within the engine.
type SequenceError struct {
	BookID domain.BookID
	Last   domain.EventID
	Got    domain.EventID
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("book %s: event id %d is not the successor of %d", e.BookID, e.Got, e.Last)
}
