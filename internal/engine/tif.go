package engine

import (
	"fmt"

	"github.com/tradewell/matchbook/internal/domain"
)

// Finalise applies the aggressor's time-in-force policy to a match
// result. GOOD_TILL_CANCEL rests any remaining available size on the
// book; IMMEDIATE_OR_CANCEL never rests and cancels the unexecuted
// remainder instead.
func Finalise(result MatchResult) (Transaction, error) {
	switch result.Aggressor.TimeInForce {
	case domain.GoodTillCancel:
		if !result.Aggressor.TimeInForce.CanStayOnBook(result.Aggressor.Sizes) {
			return result.Txn, nil
		}
		return result.Txn.ThenPlay(EntryAddedToBookEvent{
			BookID: result.Txn.Aggregate.BookID,
			ID:     result.Txn.Aggregate.LastEventID.Next(),
			Entry:  result.Aggressor,
		})

	case domain.ImmediateOrCancel:
		if result.Aggressor.Sizes.Available <= 0 {
			return result.Txn, nil
		}
		cancelled := result.Aggressor.CancelRemaining()
		return result.Txn.ThenPlay(OrderCancelledEvent{
			BookID:       result.Txn.Aggregate.BookID,
			ID:           result.Txn.Aggregate.LastEventID.Next(),
			RequestID:    cancelled.RequestID,
			Client:       cancelled.Client,
			EntryType:    cancelled.EntryType,
			Side:         cancelled.Side,
			Sizes:        cancelled.Sizes,
			Price:        cancelled.Key.Price,
			TimeInForce:  cancelled.TimeInForce,
			Status:       cancelled.Status,
			WhenHappened: cancelled.Key.WhenSubmitted,
		})

	default:
		return Transaction{}, fmt.Errorf("unsupported time in force %q", result.Aggressor.TimeInForce)
	}
}
