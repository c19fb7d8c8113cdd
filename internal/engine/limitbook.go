package engine

import (
	"github.com/google/btree"

	"github.com/tradewell/matchbook/internal/domain"
)

const bookDegree = 32

// CompareEntryKeys orders two book entry keys by priority for the given
// side: market entries (nil price) first, then price (higher first for
// BUY, lower first for SELL), then submission time ascending, then event
// id ascending.
func CompareEntryKeys(side domain.Side, a, b domain.BookEntryKey) int {
	switch {
	case a.Price == nil && b.Price != nil:
		return -1
	case a.Price != nil && b.Price == nil:
		return 1
	case a.Price != nil && b.Price != nil:
		if c := side.Sign() * a.Price.Compare(*b.Price); c != 0 {
			return c
		}
	}
	if c := a.WhenSubmitted.Compare(b.WhenSubmitted); c != 0 {
		return c
	}
	return a.EventID.Compare(b.EventID)
}

func entryLess(side domain.Side) btree.LessFunc[domain.BookEntry] {
	return func(a, b domain.BookEntry) bool {
		return CompareEntryKeys(side, a.Key, b.Key) < 0
	}
}

// LimitBook holds one side's resting entries in priority order. All
// mutating operations return a new LimitBook and leave the receiver
// untouched: the underlying B-tree is copy-on-write (btree.Clone), so a
// pre-transaction snapshot stays valid while the post-transaction book is
// built.
type LimitBook struct {
	side    domain.Side
	entries *btree.BTreeG[domain.BookEntry]
}

// NewLimitBook creates an empty book for the given side.
func NewLimitBook(side domain.Side) *LimitBook {
	return &LimitBook{
		side:    side,
		entries: btree.NewG(bookDegree, entryLess(side)),
	}
}

// Side returns which side of the market this book holds.
func (b *LimitBook) Side() domain.Side {
	return b.side
}

// Len returns the number of resting entries.
func (b *LimitBook) Len() int {
	return b.entries.Len()
}

// Insert adds or replaces the entry with the same key, preserving the
// total priority order.
func (b *LimitBook) Insert(entry domain.BookEntry) *LimitBook {
	clone := b.entries.Clone()
	clone.ReplaceOrInsert(entry)
	return &LimitBook{side: b.side, entries: clone}
}

// Remove deletes the entries with the given keys. Keys not present are
// ignored.
func (b *LimitBook) Remove(keys ...domain.BookEntryKey) *LimitBook {
	clone := b.entries.Clone()
	for _, key := range keys {
		clone.Delete(domain.BookEntry{Key: key})
	}
	return &LimitBook{side: b.side, entries: clone}
}

// Get looks up the entry with the given key.
func (b *LimitBook) Get(key domain.BookEntryKey) (domain.BookEntry, bool) {
	return b.entries.Get(domain.BookEntry{Key: key})
}

// Ascend walks the entries in priority order. The callback returns true
// to continue, false to stop.
func (b *LimitBook) Ascend(fn func(domain.BookEntry) bool) {
	b.entries.Ascend(fn)
}

// Entries returns the resting entries in priority order.
func (b *LimitBook) Entries() []domain.BookEntry {
	out := make([]domain.BookEntry, 0, b.entries.Len())
	b.entries.Ascend(func(entry domain.BookEntry) bool {
		out = append(out, entry)
		return true
	})
	return out
}

// PriceLevel is an aggregated price level of a book side.
type PriceLevel struct {
	Price      domain.Price `json:"price"`
	Size       int64        `json:"size"`
	EntryCount int          `json:"entryCount"`
}

// Levels aggregates the book into at most n price levels in priority
// order.
func (b *LimitBook) Levels(n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	b.entries.Ascend(func(entry domain.BookEntry) bool {
		if entry.Key.Price == nil {
			return true
		}
		price := *entry.Key.Price
		if len(levels) > 0 && levels[len(levels)-1].Price == price {
			levels[len(levels)-1].Size += entry.Sizes.Available
			levels[len(levels)-1].EntryCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:      price,
			Size:       entry.Sizes.Available,
			EntryCount: 1,
		})
		return true
	})
	return levels
}
