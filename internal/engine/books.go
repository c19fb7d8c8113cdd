package engine

import (
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

// Books is the aggregate root of one instrument: both limit books, the
// session status, and the id of the last applied event. Books values are
// immutable; every transition returns a new instance so earlier snapshots
// stay valid for in-flight command validation.
type Books struct {
	BookID          domain.BookID
	BusinessDate    time.Time
	TradingStatuses domain.TradingStatuses
	LastEventID     domain.EventID
	BuyBook         *LimitBook
	SellBook        *LimitBook
}

// NewBooks creates an empty aggregate with no applied events.
func NewBooks(bookID domain.BookID) *Books {
	return &Books{
		BookID:          bookID,
		TradingStatuses: domain.TradingStatuses{Default: domain.TradingStatusOpenForTrading},
		BuyBook:         NewLimitBook(domain.SideBuy),
		SellBook:        NewLimitBook(domain.SideSell),
	}
}

func (b *Books) clone() *Books {
	copied := *b
	return &copied
}

// SideBook returns the book holding entries of the given side.
func (b *Books) SideBook(side domain.Side) *LimitBook {
	if side == domain.SideBuy {
		return b.BuyBook
	}
	return b.SellBook
}

// OppositeBook returns the book an aggressor of the given side matches
// against.
func (b *Books) OppositeBook(side domain.Side) *LimitBook {
	return b.SideBook(side.Opposite())
}

// VerifyEventID checks that id is the immediate successor of the last
// applied event id. Any gap or replay is a fatal consistency violation.
func (b *Books) VerifyEventID(id domain.EventID) (domain.EventID, error) {
	if !id.IsNextOf(b.LastEventID) {
		return 0, &SequenceError{BookID: b.BookID, Last: b.LastEventID, Got: id}
	}
	return id, nil
}

// WithLastEventID returns a copy of the aggregate with the last applied
// event id advanced.
func (b *Books) WithLastEventID(id domain.EventID) *Books {
	copied := b.clone()
	copied.LastEventID = id
	return copied
}

// AddEntry returns a copy of the aggregate with the entry inserted into
// its side's book.
func (b *Books) AddEntry(entry domain.BookEntry) *Books {
	copied := b.clone()
	if entry.Side == domain.SideBuy {
		copied.BuyBook = b.BuyBook.Insert(entry)
	} else {
		copied.SellBook = b.SellBook.Insert(entry)
	}
	return copied
}

// RemoveEntries returns a copy of the aggregate with the given entries
// removed from their side's books.
func (b *Books) RemoveEntries(entries []domain.BookEntry) *Books {
	copied := b.clone()
	for _, entry := range entries {
		if entry.Side == domain.SideBuy {
			copied.BuyBook = copied.BuyBook.Remove(entry.Key)
		} else {
			copied.SellBook = copied.SellBook.Remove(entry.Key)
		}
	}
	return copied
}

// ApplyTrade applies one side of a trade to the aggregate: the resting
// entry identified by the side entry's original key is replaced with its
// post-trade snapshot, or removed when the trade filled it. A side that
// is not resting (the aggressor) is a no-op.
func (b *Books) ApplyTrade(side TradeSideEntry) *Books {
	book := b.SideBook(side.Side)
	key := side.BookEntryKey()
	if _, ok := book.Get(key); !ok {
		return b
	}
	copied := b.clone()
	var updated *LimitBook
	if side.Status.IsFinal() {
		updated = book.Remove(key)
	} else {
		updated = book.Insert(side.BookEntry())
	}
	if side.Side == domain.SideBuy {
		copied.BuyBook = updated
	} else {
		copied.SellBook = updated
	}
	return copied
}
