package engine

import "github.com/tradewell/matchbook/internal/domain"

// Match pairs a passive entry with the price the trade would execute at.
type Match struct {
	Passive    domain.BookEntry
	TradePrice domain.Price
}

// MatchResult is the outcome of running an aggressor through the matching
// loop: the (possibly further-traded) aggressor and the transaction
// accumulated so far.
type MatchResult struct {
	Aggressor domain.BookEntry
	Txn       Transaction
}

// MatchEntry matches the aggressor against the opposite book until it has
// no available size left, the opposite book is empty, or no further match
// exists. Each match emits a TradeEvent that is played immediately, so
// the passive side of the books is already updated when the next
// iteration scans for a match.
func MatchEntry(aggressor domain.BookEntry, books *Books) (MatchResult, error) {
	var events []Event
	for {
		opposite := books.OppositeBook(aggressor.Side)
		if aggressor.Sizes.Available <= 0 || opposite.Len() == 0 {
			break
		}
		next, ok := findNextMatch(aggressor, opposite.Entries())
		if !ok {
			break
		}

		size := tradeSize(aggressor.Sizes, next.Passive.Sizes)
		tradedAggressor := aggressor.Traded(size)
		tradedPassive := next.Passive.Traded(size)

		trade := TradeEvent{
			BookID:       books.BookID,
			ID:           books.LastEventID.Next(),
			Size:         size,
			Price:        next.TradePrice,
			WhenHappened: aggressor.Key.WhenSubmitted,
			Aggressor:    NewTradeSideEntry(tradedAggressor),
			Passive:      NewTradeSideEntry(tradedPassive),
		}
		res, err := trade.Play(books)
		if err != nil {
			return MatchResult{}, err
		}

		books = res.Aggregate
		events = append(events, trade)
		events = append(events, res.Events...)
		aggressor = tradedAggressor
	}
	return MatchResult{
		Aggressor: aggressor,
		Txn:       Transaction{Aggregate: books, Events: events},
	}, nil
}

// findNextMatch scans the passives in priority order for the first entry
// the aggressor can trade with. Candidates are skipped when neither side
// carries a price (no trade price is determinable) or when the pair would
// wash. A priced candidate whose price does not cross ends the scan: the
// book is price-ordered, so no later entry can cross either.
func findNextMatch(aggressor domain.BookEntry, passives []domain.BookEntry) (Match, bool) {
	for _, passive := range passives {
		if aggressor.Key.Price == nil && passive.Key.Price == nil {
			continue
		}
		if domain.Washes(aggressor.Client, passive.Client) {
			continue
		}
		price, ok := findTradePrice(aggressor.Side, aggressor.Key.Price, passive.Key.Price)
		if !ok {
			return Match{}, false
		}
		return Match{Passive: passive, TradePrice: price}, true
	}
	return Match{}, false
}

// findTradePrice determines the execution price for an aggressor/passive
// price pair. With both prices present the trade executes at the passive
// price if the aggressor's price crosses it; an unpriced side takes the
// other side's price. Two unpriced sides have no trade price.
func findTradePrice(aggressorSide domain.Side, aggressor, passive *domain.Price) (domain.Price, bool) {
	if aggressor != nil && passive != nil {
		if aggressorSide.Sign()*aggressor.Compare(*passive) <= 0 {
			return *passive, true
		}
		return 0, false
	}
	if passive != nil {
		return *passive, true
	}
	if aggressor != nil {
		return *aggressor, true
	}
	return 0, false
}

func tradeSize(aggressor, passive domain.EntrySizes) int64 {
	if aggressor.Available < passive.Available {
		return aggressor.Available
	}
	return passive.Available
}

// matchAndPlace runs the full aggressor lifecycle: match against the
// opposite book, then finalise the remainder per time-in-force.
func matchAndPlace(entry domain.BookEntry, books *Books) (Transaction, error) {
	result, err := MatchEntry(entry, books)
	if err != nil {
		return Transaction{}, err
	}
	return Finalise(result)
}
