package domain

import (
	"fmt"
	"time"
)

// Price is a non-negative price in integer ticks. Optionality (market
// orders have no price) is expressed as *Price.
type Price int64

// NewPrice validates that value is a legal price.
func NewPrice(value int64) (Price, error) {
	if value < 0 {
		return 0, fmt.Errorf("price must be non-negative: %d", value)
	}
	return Price(value), nil
}

// Compare orders two prices numerically.
func (p Price) Compare(other Price) int {
	switch {
	case p < other:
		return -1
	case p > other:
		return 1
	default:
		return 0
	}
}

// Ticks is a convenience constructor for an optional price.
func Ticks(value int64) *Price {
	p := Price(value)
	return &p
}

// EntrySizes tracks the size bookkeeping of an order or quote entry over
// its lifecycle. Available only decreases (by trading or cancellation);
// Traded and Cancelled only increase. The sum of the three always equals
// the original submitted size.
type EntrySizes struct {
	Available int64 `json:"available"`
	Traded    int64 `json:"traded"`
	Cancelled int64 `json:"cancelled"`
}

// NewEntrySizes builds the initial sizes of a freshly accepted entry.
func NewEntrySizes(size int64) (EntrySizes, error) {
	if size < 0 {
		return EntrySizes{}, fmt.Errorf("entry size must be non-negative: %d", size)
	}
	return EntrySizes{Available: size}, nil
}

// Trade moves size from available to traded.
func (s EntrySizes) Trade(size int64) EntrySizes {
	return EntrySizes{
		Available: s.Available - size,
		Traded:    s.Traded + size,
		Cancelled: s.Cancelled,
	}
}

// CancelRemaining moves the whole available size into cancelled.
func (s EntrySizes) CancelRemaining() EntrySizes {
	return EntrySizes{
		Available: 0,
		Traded:    s.Traded,
		Cancelled: s.Cancelled + s.Available,
	}
}

// Total returns the original submitted size.
func (s EntrySizes) Total() int64 {
	return s.Available + s.Traded + s.Cancelled
}

// Side indicates whether an entry bids (BUY) or offers (SELL).
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide validates a side string.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), nil
	}
	return "", fmt.Errorf("side must be BUY or SELL, got %q", s)
}

// Sign returns the comparator multiplier for book priority: BUY sorts
// higher prices first, SELL sorts lower prices first.
func (s Side) Sign() int {
	if s == SideBuy {
		return -1
	}
	return 1
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// EntryType distinguishes priced limit entries from unpriced market entries.
type EntryType string

const (
	EntryTypeLimit  EntryType = "LIMIT"
	EntryTypeMarket EntryType = "MARKET"
)

// ParseEntryType validates an entry type string.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case EntryTypeLimit, EntryTypeMarket:
		return EntryType(s), nil
	}
	return "", fmt.Errorf("entry type must be LIMIT or MARKET, got %q", s)
}

// EntryStatus is the lifecycle state of a book entry.
type EntryStatus string

const (
	EntryStatusNew         EntryStatus = "NEW"
	EntryStatusPartialFill EntryStatus = "PARTIAL_FILL"
	EntryStatusFilled      EntryStatus = "FILLED"
	EntryStatusCancelled   EntryStatus = "CANCELLED"
)

// IsFinal reports whether the status is terminal.
func (s EntryStatus) IsFinal() bool {
	return s == EntryStatusFilled || s == EntryStatusCancelled
}

// TimeInForce governs what happens to the unmatched remainder of an
// aggressor after matching completes.
type TimeInForce string

const (
	GoodTillCancel    TimeInForce = "GOOD_TILL_CANCEL"
	ImmediateOrCancel TimeInForce = "IMMEDIATE_OR_CANCEL"
)

// ParseTimeInForce validates a time-in-force string, accepting either
// the full name or the conventional short code.
func ParseTimeInForce(s string) (TimeInForce, error) {
	switch s {
	case string(GoodTillCancel), "GTC":
		return GoodTillCancel, nil
	case string(ImmediateOrCancel), "IOC":
		return ImmediateOrCancel, nil
	}
	return "", fmt.Errorf("time in force must be GOOD_TILL_CANCEL or IMMEDIATE_OR_CANCEL, got %q", s)
}

// Code returns the conventional short code of the time-in-force.
func (t TimeInForce) Code() string {
	if t == ImmediateOrCancel {
		return "IOC"
	}
	return "GTC"
}

// CanStayOnBook reports whether an entry with the given sizes may rest on
// the book under this time-in-force.
func (t TimeInForce) CanStayOnBook(sizes EntrySizes) bool {
	return t == GoodTillCancel && sizes.Available > 0
}

// BookEntryKey is the priority key of a book entry: price (nil for market
// entries, which outrank any priced entry), submission time, and the event
// id that admitted the entry as the final tie-break.
type BookEntryKey struct {
	Price         *Price    `json:"price,omitempty"`
	WhenSubmitted time.Time `json:"whenSubmitted"`
	EventID       EventID   `json:"eventId"`
}

// BookEntry is one resting order or quote side on a limit book.
type BookEntry struct {
	Key         BookEntryKey    `json:"key"`
	RequestID   ClientRequestID `json:"requestId"`
	Client      Client          `json:"client"`
	EntryType   EntryType       `json:"entryType"`
	Side        Side            `json:"side"`
	TimeInForce TimeInForce     `json:"timeInForce"`
	Sizes       EntrySizes      `json:"sizes"`
	Status      EntryStatus     `json:"status"`
	IsQuote     bool            `json:"isQuote,omitempty"`
}

// Traded returns a copy of the entry with size moved from available to
// traded and the status advanced to FILLED or PARTIAL_FILL.
func (e BookEntry) Traded(size int64) BookEntry {
	e.Sizes = e.Sizes.Trade(size)
	if e.Sizes.Available == 0 {
		e.Status = EntryStatusFilled
	} else {
		e.Status = EntryStatusPartialFill
	}
	return e
}

// CancelRemaining returns a copy of the entry with the remaining available
// size cancelled and the status set to CANCELLED.
func (e BookEntry) CancelRemaining() BookEntry {
	e.Sizes = e.Sizes.CancelRemaining()
	e.Status = EntryStatusCancelled
	return e
}
