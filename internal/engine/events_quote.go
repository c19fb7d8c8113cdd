package engine

import (
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

// MassQuotePlacedEvent records the acceptance of a mass quote: a batch of
// two-sided price levels that replaces all resting quotes of the same
// firm. Playing it cancels the firm's existing quote entries in one
// EntriesRemovedFromBookEvent, then matches and places each derived bid
// and offer entry in quote-entry order, bid before offer.
type MassQuotePlacedEvent struct {
	BookID         domain.BookID         `json:"bookId"`
	ID             domain.EventID        `json:"eventId"`
	QuoteID        string                `json:"quoteId"`
	Client         domain.Client         `json:"client"`
	QuoteModelType domain.QuoteModelType `json:"quoteModelType"`
	TimeInForce    domain.TimeInForce    `json:"timeInForce"`
	Entries        []domain.QuoteEntry   `json:"entries"`
	WhenHappened   time.Time             `json:"whenHappened"`
}

func (e MassQuotePlacedEvent) AggregateID() domain.BookID { return e.BookID }
func (e MassQuotePlacedEvent) EventID() domain.EventID    { return e.ID }
func (e MassQuotePlacedEvent) Kind() EventKind            { return KindPrimary }

func (e MassQuotePlacedEvent) Play(books *Books) (Transaction, error) {
	verified, err := books.VerifyEventID(e.ID)
	if err != nil {
		return Transaction{}, err
	}
	txn := Transaction{Aggregate: books.WithLastEventID(verified)}

	if removed, ok := cancelQuotes(txn.Aggregate, e.Client, e.WhenHappened); ok {
		txn, err = txn.ThenPlay(removed)
		if err != nil {
			return Transaction{}, err
		}
	}

	for _, entry := range e.bookEntries() {
		sub, err := matchAndPlace(entry, txn.Aggregate)
		if err != nil {
			return Transaction{}, err
		}
		txn = txn.Append(sub)
	}
	return txn, nil
}

// bookEntries derives the one-sided aggressor entries of the quote, in
// quote-entry order with bid before offer. Each derived entry carries the
// mass quote's event id in its key.
func (e MassQuotePlacedEvent) bookEntries() []domain.BookEntry {
	entries := make([]domain.BookEntry, 0, 2*len(e.Entries))
	for _, quote := range e.Entries {
		if quote.Bid != nil {
			entries = append(entries, e.bookEntry(quote, domain.SideBuy, *quote.Bid))
		}
		if quote.Offer != nil {
			entries = append(entries, e.bookEntry(quote, domain.SideSell, *quote.Offer))
		}
	}
	return entries
}

func (e MassQuotePlacedEvent) bookEntry(quote domain.QuoteEntry, side domain.Side, level domain.SizeAtPrice) domain.BookEntry {
	price := level.Price
	return domain.BookEntry{
		Key: domain.BookEntryKey{
			Price:         &price,
			WhenSubmitted: e.WhenHappened,
			EventID:       e.ID,
		},
		RequestID: domain.ClientRequestID{
			Current:  quote.QuoteEntryID,
			ParentID: e.QuoteID,
		},
		Client:      e.Client,
		EntryType:   domain.EntryTypeLimit,
		Side:        side,
		TimeInForce: e.TimeInForce,
		Sizes:       domain.EntrySizes{Available: level.Size},
		Status:      domain.EntryStatusNew,
		IsQuote:     true,
	}
}

// cancelQuotes collects all resting quote entries of the firm, buy book
// first then sell book, marks them cancelled, and wraps them in a single
// removal event. Returns false when the firm has no resting quotes.
func cancelQuotes(books *Books, client domain.Client, whenHappened time.Time) (EntriesRemovedFromBookEvent, bool) {
	var cancelled []domain.BookEntry
	collect := func(entry domain.BookEntry) bool {
		if entry.IsQuote && entry.Client.FirmID == client.FirmID {
			cancelled = append(cancelled, entry.CancelRemaining())
		}
		return true
	}
	books.BuyBook.Ascend(collect)
	books.SellBook.Ascend(collect)
	if len(cancelled) == 0 {
		return EntriesRemovedFromBookEvent{}, false
	}
	return EntriesRemovedFromBookEvent{
		BookID:       books.BookID,
		ID:           books.LastEventID.Next(),
		WhenHappened: whenHappened,
		Entries:      cancelled,
	}, true
}
