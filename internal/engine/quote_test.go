package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

func quoteCmd(books *Books, firmID, quoteID string, when time.Time, entries ...domain.QuoteEntry) PlaceMassQuoteCommand {
	return PlaceMassQuoteCommand{
		QuoteID:        quoteID,
		BookID:         books.BookID,
		Client:         domain.Client{FirmID: firmID},
		QuoteModelType: domain.QuoteEntryModel,
		TimeInForce:    domain.GoodTillCancel,
		Entries:        entries,
		WhenRequested:  when,
	}
}

func twoSided(entryID string, bidSize, bidPrice, offerSize, offerPrice int64) domain.QuoteEntry {
	return domain.QuoteEntry{
		QuoteEntryID: entryID,
		Bid:          &domain.SizeAtPrice{Size: bidSize, Price: domain.Price(bidPrice)},
		Offer:        &domain.SizeAtPrice{Size: offerSize, Price: domain.Price(offerPrice)},
	}
}

func TestMassQuoteRestsAllSidesOnEmptyBook(t *testing.T) {
	books := mustCreateBooks(t, "BTC-EUR")

	txn := mustExecute(t, quoteCmd(books, "MAKER", "q-1", t0,
		twoSided("e-1", 10, 9, 10, 11),
		twoSided("e-2", 5, 8, 5, 12),
	), books)
	assertEventShape(t, txn.Events, "quoted", "added", "added", "added", "added")

	quoted := txn.Events[0].(MassQuotePlacedEvent)
	if quoted.ID != 2 {
		t.Fatalf("quote event id = %d, want 2", quoted.ID)
	}

	// Derived entries rest bid-before-offer in quote-entry order, all
	// carrying the mass quote's event id in their keys; the add events
	// take fresh sequential ids.
	wantAddIDs := []domain.EventID{3, 4, 5, 6}
	wantSides := []domain.Side{domain.SideBuy, domain.SideSell, domain.SideBuy, domain.SideSell}
	wantEntryIDs := []string{"e-1", "e-1", "e-2", "e-2"}
	for i, ev := range txn.Events[1:] {
		added := ev.(EntryAddedToBookEvent)
		if added.ID != wantAddIDs[i] {
			t.Errorf("add %d event id = %d, want %d", i, added.ID, wantAddIDs[i])
		}
		if added.Entry.Key.EventID != quoted.ID {
			t.Errorf("add %d entry key id = %d, want quote id %d", i, added.Entry.Key.EventID, quoted.ID)
		}
		if added.Entry.Side != wantSides[i] {
			t.Errorf("add %d side = %s, want %s", i, added.Entry.Side, wantSides[i])
		}
		if added.Entry.RequestID.Current != wantEntryIDs[i] {
			t.Errorf("add %d request id = %s, want %s", i, added.Entry.RequestID.Current, wantEntryIDs[i])
		}
		if added.Entry.RequestID.ParentID != "q-1" {
			t.Errorf("add %d parent id = %s, want q-1", i, added.Entry.RequestID.ParentID)
		}
		if !added.Entry.IsQuote {
			t.Errorf("add %d entry is not flagged as quote", i)
		}
	}

	if txn.Aggregate.BuyBook.Len() != 2 || txn.Aggregate.SellBook.Len() != 2 {
		t.Errorf("books = %d/%d, want 2/2", txn.Aggregate.BuyBook.Len(), txn.Aggregate.SellBook.Len())
	}
}

func TestMassQuoteReplacesFirmsRestingQuotes(t *testing.T) {
	books := mustCreateBooks(t, "BTC-EUR")
	books = mustExecute(t, quoteCmd(books, "MAKER", "q-1", t0,
		twoSided("e-1", 10, 9, 10, 11),
	), books).Aggregate
	// Another firm's quote must survive the replacement.
	books = mustExecute(t, quoteCmd(books, "OTHER", "q-2", t0.Add(time.Second),
		twoSided("e-1", 3, 8, 3, 12),
	), books).Aggregate

	txn := mustExecute(t, quoteCmd(books, "MAKER", "q-3", t0.Add(2*time.Second),
		twoSided("e-1", 20, 9, 20, 11),
	), books)
	assertEventShape(t, txn.Events, "quoted", "removed", "added", "added")

	removed := txn.Events[1].(EntriesRemovedFromBookEvent)
	if len(removed.Entries) != 2 {
		t.Fatalf("removed entries = %d, want 2", len(removed.Entries))
	}
	// Buy-book entries come before sell-book entries, with the remaining
	// size snapshotted as cancelled.
	if removed.Entries[0].Side != domain.SideBuy || removed.Entries[1].Side != domain.SideSell {
		t.Errorf("removed sides = %s,%s, want BUY,SELL", removed.Entries[0].Side, removed.Entries[1].Side)
	}
	for i, entry := range removed.Entries {
		if entry.Status != domain.EntryStatusCancelled {
			t.Errorf("removed %d status = %s, want CANCELLED", i, entry.Status)
		}
		if entry.Sizes.Cancelled != 10 || entry.Sizes.Available != 0 {
			t.Errorf("removed %d sizes = %+v, want cancelled=10 available=0", i, entry.Sizes)
		}
	}

	// One two-sided quote per firm remains on each side.
	if txn.Aggregate.BuyBook.Len() != 2 || txn.Aggregate.SellBook.Len() != 2 {
		t.Errorf("books = %d/%d, want 2/2", txn.Aggregate.BuyBook.Len(), txn.Aggregate.SellBook.Len())
	}
}

func TestMassQuoteTradesAgainstRestingOrders(t *testing.T) {
	books := mustCreateBooks(t, "BTC-EUR")
	books = mustExecute(t, orderCmd(books, firmA, domain.SideSell, 4, domain.Ticks(10), domain.GoodTillCancel, t0), books).Aggregate

	// The bid at 10 crosses the resting offer; the remainder rests.
	txn := mustExecute(t, quoteCmd(books, "MAKER", "q-1", t0.Add(time.Second),
		twoSided("e-1", 10, 10, 10, 12),
	), books)
	assertEventShape(t, txn.Events, "quoted", "trade", "added", "added")

	trade := txn.Events[1].(TradeEvent)
	if trade.Size != 4 || trade.Price != 10 {
		t.Errorf("trade = %d@%d, want 4@10", trade.Size, trade.Price)
	}

	bidAdd := txn.Events[2].(EntryAddedToBookEvent)
	if bidAdd.Entry.Sizes.Available != 6 || bidAdd.Entry.Sizes.Traded != 4 {
		t.Errorf("resting bid sizes = %+v, want available=6 traded=4", bidAdd.Entry.Sizes)
	}
}

func TestMassQuoteSidesDoNotSelfTrade(t *testing.T) {
	books := mustCreateBooks(t, "BTC-EUR")

	// A locked quote: bid and offer at the same price. The two sides
	// belong to the same firm, so they must not trade with each other.
	txn := mustExecute(t, quoteCmd(books, "MAKER", "q-1", t0,
		twoSided("e-1", 10, 10, 10, 10),
	), books)
	assertEventShape(t, txn.Events, "quoted", "added", "added")

	if len(collectTrades(txn.Events)) != 0 {
		t.Error("quote sides traded against each other")
	}
}

func TestMassQuoteValidation(t *testing.T) {
	books := mustCreateBooks(t, "BTC-EUR")

	t.Run("no entries", func(t *testing.T) {
		_, err := quoteCmd(books, "MAKER", "q-1", t0).Execute(books)
		if err == nil {
			t.Error("expected error for empty mass quote, got nil")
		}
	})

	t.Run("entry with neither side", func(t *testing.T) {
		_, err := quoteCmd(books, "MAKER", "q-1", t0, domain.QuoteEntry{QuoteEntryID: "e-1"}).Execute(books)
		if err == nil {
			t.Error("expected error for one-sided-less entry, got nil")
		}
	})

	t.Run("non-positive size", func(t *testing.T) {
		entry := domain.QuoteEntry{
			QuoteEntryID: "e-1",
			Bid:          &domain.SizeAtPrice{Size: 0, Price: 10},
		}
		_, err := quoteCmd(books, "MAKER", "q-1", t0, entry).Execute(books)
		if err == nil {
			t.Error("expected error for zero bid size, got nil")
		}
	})

	t.Run("repeated bid price", func(t *testing.T) {
		cmd := quoteCmd(books, "MAKER", "q-1", t0,
			twoSided("e-1", 10, 9, 10, 11),
			twoSided("e-2", 5, 9, 5, 12),
		)
		_, err := cmd.Execute(books)
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("duplicate bid price: err = %v, want *ValidationError", err)
		}
	})

	t.Run("repeated offer price", func(t *testing.T) {
		cmd := quoteCmd(books, "MAKER", "q-1", t0,
			twoSided("e-1", 10, 9, 10, 11),
			twoSided("e-2", 5, 8, 5, 11),
		)
		_, err := cmd.Execute(books)
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("duplicate offer price: err = %v, want *ValidationError", err)
		}
	})

	t.Run("immediate-or-cancel not allowed", func(t *testing.T) {
		cmd := quoteCmd(books, "MAKER", "q-1", t0, twoSided("e-1", 10, 9, 10, 11))
		cmd.TimeInForce = domain.ImmediateOrCancel
		if _, err := cmd.Execute(books); err == nil {
			t.Error("expected error for IOC mass quote, got nil")
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		cmd := quoteCmd(books, "MAKER", "q-1", t0, twoSided("e-1", 10, 9, 10, 11))
		if _, err := cmd.Execute(nil); err == nil {
			t.Error("expected error for missing books, got nil")
		}
	})
}
