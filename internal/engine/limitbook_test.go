package engine

import (
	"testing"
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

var t0 = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func limitEntry(side domain.Side, price int64, when time.Time, eventID int64, available int64) domain.BookEntry {
	return domain.BookEntry{
		Key: domain.BookEntryKey{
			Price:         domain.Ticks(price),
			WhenSubmitted: when,
			EventID:       domain.EventID(eventID),
		},
		EntryType:   domain.EntryTypeLimit,
		Side:        side,
		TimeInForce: domain.GoodTillCancel,
		Sizes:       domain.EntrySizes{Available: available},
		Status:      domain.EntryStatusNew,
	}
}

func marketEntry(side domain.Side, when time.Time, eventID int64, available int64) domain.BookEntry {
	e := limitEntry(side, 0, when, eventID, available)
	e.Key.Price = nil
	e.EntryType = domain.EntryTypeMarket
	e.TimeInForce = domain.ImmediateOrCancel
	return e
}

func TestCompareEntryKeys(t *testing.T) {
	tests := []struct {
		name string
		side domain.Side
		a, b domain.BookEntryKey
		want int
	}{
		{
			"buy higher price first",
			domain.SideBuy,
			domain.BookEntryKey{Price: domain.Ticks(20), WhenSubmitted: t0, EventID: 1},
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0, EventID: 2},
			-1,
		},
		{
			"sell lower price first",
			domain.SideSell,
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0, EventID: 1},
			domain.BookEntryKey{Price: domain.Ticks(20), WhenSubmitted: t0, EventID: 2},
			-1,
		},
		{
			"market entry outranks priced",
			domain.SideBuy,
			domain.BookEntryKey{WhenSubmitted: t0, EventID: 2},
			domain.BookEntryKey{Price: domain.Ticks(1000), WhenSubmitted: t0, EventID: 1},
			-1,
		},
		{
			"same price earlier time first",
			domain.SideSell,
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0, EventID: 2},
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0.Add(time.Second), EventID: 1},
			-1,
		},
		{
			"same price and time lower event id first",
			domain.SideBuy,
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0, EventID: 1},
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0, EventID: 2},
			-1,
		},
		{
			"equal keys",
			domain.SideBuy,
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0, EventID: 1},
			domain.BookEntryKey{Price: domain.Ticks(10), WhenSubmitted: t0, EventID: 1},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareEntryKeys(tt.side, tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CompareEntryKeys(%s) = %d, want %d", tt.side, got, tt.want)
			}
			// Antisymmetry.
			if rev := CompareEntryKeys(tt.side, tt.b, tt.a); rev != -tt.want {
				t.Errorf("reversed CompareEntryKeys(%s) = %d, want %d", tt.side, rev, -tt.want)
			}
		})
	}
}

func TestLimitBookPriorityOrder(t *testing.T) {
	book := NewLimitBook(domain.SideBuy).
		Insert(limitEntry(domain.SideBuy, 10, t0, 1, 5)).
		Insert(limitEntry(domain.SideBuy, 20, t0.Add(time.Second), 2, 5)).
		Insert(marketEntry(domain.SideBuy, t0.Add(2*time.Second), 3, 5)).
		Insert(limitEntry(domain.SideBuy, 20, t0, 4, 5))

	entries := book.Entries()
	if len(entries) != 4 {
		t.Fatalf("Len = %d, want 4", len(entries))
	}

	wantIDs := []domain.EventID{3, 4, 2, 1} // market, then 20@t0, 20@t0+1s, 10
	for i, want := range wantIDs {
		if entries[i].Key.EventID != want {
			t.Errorf("entries[%d].EventID = %d, want %d", i, entries[i].Key.EventID, want)
		}
	}
}

func TestLimitBookInsertIsImmutable(t *testing.T) {
	empty := NewLimitBook(domain.SideSell)
	one := empty.Insert(limitEntry(domain.SideSell, 10, t0, 1, 5))

	if empty.Len() != 0 {
		t.Errorf("original book mutated: Len = %d, want 0", empty.Len())
	}
	if one.Len() != 1 {
		t.Errorf("new book Len = %d, want 1", one.Len())
	}

	two := one.Insert(limitEntry(domain.SideSell, 12, t0, 2, 5))
	if one.Len() != 1 {
		t.Errorf("intermediate book mutated: Len = %d, want 1", one.Len())
	}
	if two.Len() != 2 {
		t.Errorf("final book Len = %d, want 2", two.Len())
	}
}

func TestLimitBookRemoveAndGet(t *testing.T) {
	e1 := limitEntry(domain.SideSell, 10, t0, 1, 5)
	e2 := limitEntry(domain.SideSell, 12, t0, 2, 5)
	book := NewLimitBook(domain.SideSell).Insert(e1).Insert(e2)

	if _, ok := book.Get(e1.Key); !ok {
		t.Error("Get(e1) = false, want entry present")
	}

	removed := book.Remove(e1.Key)
	if _, ok := removed.Get(e1.Key); ok {
		t.Error("entry still present after Remove")
	}
	if removed.Len() != 1 {
		t.Errorf("Len after Remove = %d, want 1", removed.Len())
	}
	if book.Len() != 2 {
		t.Errorf("original book mutated by Remove: Len = %d, want 2", book.Len())
	}

	// Removing an absent key is a no-op.
	if again := removed.Remove(e1.Key); again.Len() != 1 {
		t.Errorf("Len after removing absent key = %d, want 1", again.Len())
	}
}

func TestLimitBookLevels(t *testing.T) {
	book := NewLimitBook(domain.SideSell).
		Insert(limitEntry(domain.SideSell, 10, t0, 1, 5)).
		Insert(limitEntry(domain.SideSell, 10, t0.Add(time.Second), 2, 3)).
		Insert(limitEntry(domain.SideSell, 12, t0, 3, 7)).
		Insert(marketEntry(domain.SideSell, t0, 4, 2))

	levels := book.Levels(10)
	if len(levels) != 2 {
		t.Fatalf("len(Levels) = %d, want 2", len(levels))
	}
	if levels[0].Price != 10 || levels[0].Size != 8 || levels[0].EntryCount != 2 {
		t.Errorf("levels[0] = %+v, want price=10 size=8 count=2", levels[0])
	}
	if levels[1].Price != 12 || levels[1].Size != 7 || levels[1].EntryCount != 1 {
		t.Errorf("levels[1] = %+v, want price=12 size=7 count=1", levels[1])
	}

	if truncated := book.Levels(1); len(truncated) != 1 {
		t.Errorf("Levels(1) returned %d levels, want 1", len(truncated))
	}
}
