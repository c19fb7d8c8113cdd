package domain

import "fmt"

// TradingStatus is the session state of a book.
type TradingStatus string

const (
	TradingStatusOpenForTrading         TradingStatus = "OPEN_FOR_TRADING"
	TradingStatusNotAvailableForTrading TradingStatus = "NOT_AVAILABLE_FOR_TRADING"
	TradingStatusHalted                 TradingStatus = "HALTED"
)

// ParseTradingStatus validates a trading status string.
func ParseTradingStatus(s string) (TradingStatus, error) {
	switch TradingStatus(s) {
	case TradingStatusOpenForTrading, TradingStatusNotAvailableForTrading, TradingStatusHalted:
		return TradingStatus(s), nil
	}
	return "", fmt.Errorf("unknown trading status %q", s)
}

// AllowsPlacing reports whether new orders and quotes may be placed while
// the book is in this status.
func (s TradingStatus) AllowsPlacing() bool {
	return s == TradingStatusOpenForTrading
}

// TradingStatuses resolves the effective trading status of a book. A
// manual override, when present, wins over the scheduled default.
type TradingStatuses struct {
	Manual  *TradingStatus `json:"manual,omitempty"`
	Default TradingStatus  `json:"default"`
}

// Effective returns the status currently in force.
func (t TradingStatuses) Effective() TradingStatus {
	if t.Manual != nil {
		return *t.Manual
	}
	return t.Default
}
