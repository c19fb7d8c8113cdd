package engine

import (
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

// TradeSideEntry is the post-trade snapshot of one side of a trade,
// keyed back to the book entry it describes.
type TradeSideEntry struct {
	RequestID     domain.ClientRequestID `json:"requestId"`
	Client        domain.Client          `json:"client"`
	EntryType     domain.EntryType       `json:"entryType"`
	Side          domain.Side            `json:"side"`
	Sizes         domain.EntrySizes      `json:"sizes"`
	Price         *domain.Price          `json:"price,omitempty"`
	TimeInForce   domain.TimeInForce     `json:"timeInForce"`
	WhenSubmitted time.Time              `json:"whenSubmitted"`
	EntryEventID  domain.EventID         `json:"entryEventId"`
	Status        domain.EntryStatus     `json:"status"`
	IsQuote       bool                   `json:"isQuote,omitempty"`
}

// NewTradeSideEntry snapshots a (post-trade) book entry.
func NewTradeSideEntry(entry domain.BookEntry) TradeSideEntry {
	return TradeSideEntry{
		RequestID:     entry.RequestID,
		Client:        entry.Client,
		EntryType:     entry.EntryType,
		Side:          entry.Side,
		Sizes:         entry.Sizes,
		Price:         entry.Key.Price,
		TimeInForce:   entry.TimeInForce,
		WhenSubmitted: entry.Key.WhenSubmitted,
		EntryEventID:  entry.Key.EventID,
		Status:        entry.Status,
		IsQuote:       entry.IsQuote,
	}
}

// BookEntryKey reconstructs the key of the entry this snapshot describes.
func (t TradeSideEntry) BookEntryKey() domain.BookEntryKey {
	return domain.BookEntryKey{
		Price:         t.Price,
		WhenSubmitted: t.WhenSubmitted,
		EventID:       t.EntryEventID,
	}
}

// BookEntry reconstructs the full post-trade entry.
func (t TradeSideEntry) BookEntry() domain.BookEntry {
	return domain.BookEntry{
		Key:         t.BookEntryKey(),
		RequestID:   t.RequestID,
		Client:      t.Client,
		EntryType:   t.EntryType,
		Side:        t.Side,
		TimeInForce: t.TimeInForce,
		Sizes:       t.Sizes,
		Status:      t.Status,
		IsQuote:     t.IsQuote,
	}
}

// TradeEvent records an execution between an aggressor and a passive
// entry. Playing it applies the recorded sizing mutation to both sides'
// books; it is only ever generated inside the matching loop.
type TradeEvent struct {
	BookID       domain.BookID  `json:"bookId"`
	ID           domain.EventID `json:"eventId"`
	Size         int64          `json:"size"`
	Price        domain.Price   `json:"price"`
	WhenHappened time.Time      `json:"whenHappened"`
	Aggressor    TradeSideEntry `json:"aggressor"`
	Passive      TradeSideEntry `json:"passive"`
}

func (e TradeEvent) AggregateID() domain.BookID { return e.BookID }
func (e TradeEvent) EventID() domain.EventID    { return e.ID }
func (e TradeEvent) Kind() EventKind            { return KindSideEffect }

func (e TradeEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	updated := books.WithLastEventID(verified).
		ApplyTrade(e.Aggressor).
		ApplyTrade(e.Passive)
	return Transaction{Aggregate: updated}, nil
}
