package domain

import (
	"fmt"
	"math"
)

// EventID is a monotonically increasing sequence number scoped to a single
// Books aggregate. It wraps to zero after MaxEventID so a long-lived book
// never runs out of sequence space. An EventID is owned exclusively by its
// aggregate and is never shared across aggregates.
type EventID int64

// MaxEventID is the largest sequence number before wraparound.
const MaxEventID EventID = math.MaxInt64

// NewEventID validates that value is a legal sequence number.
func NewEventID(value int64) (EventID, error) {
	if value < 0 {
		return 0, fmt.Errorf("event id must be non-negative: %d", value)
	}
	return EventID(value), nil
}

// Next returns the successor sequence number, wrapping MaxEventID to zero.
func (id EventID) Next() EventID {
	if id == MaxEventID {
		return 0
	}
	return id + 1
}

// IsNextOf reports whether id is the immediate successor of other. Zero is
// the successor of MaxEventID; no other pair crosses the wrap boundary.
func (id EventID) IsNextOf(other EventID) bool {
	if id == 0 && other == MaxEventID {
		return true
	}
	return other != MaxEventID && id == other+1
}

// Compare orders two sequence numbers. A zero that coexists with MaxEventID
// is treated as the later of the two, so ordering stays consistent across
// the wrap boundary.
func (id EventID) Compare(other EventID) int {
	switch {
	case id == MaxEventID && other == 0:
		return -1
	case other == MaxEventID && id == 0:
		return 1
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}
