package engine

import (
	"fmt"
	"time"

	"github.com/tradewell/matchbook/internal/domain"
)

// Command validates a request against the current aggregate state and
// produces the transaction to append. The aggregate is nil when the book
// has not been created yet.
type Command interface {
	AggregateID() domain.BookID
	Execute(books *Books) (Transaction, error)
}

// primaryTransaction plays a primary event and prepends it to the events
// it generated.
func primaryTransaction(ev Event, books *Books) (Transaction, error) {
	res, err := ev.Play(books)
	if err != nil {
		return Transaction{}, err
	}
	events := make([]Event, 0, 1+len(res.Events))
	events = append(events, ev)
	events = append(events, res.Events...)
	return Transaction{Aggregate: res.Aggregate, Events: events}, nil
}

// CreateBooksCommand brings a new instrument's books into existence.
type CreateBooksCommand struct {
	BookID               domain.BookID
	BusinessDate         time.Time
	DefaultTradingStatus domain.TradingStatus
}

func (c CreateBooksCommand) AggregateID() domain.BookID { return c.BookID }

func (c CreateBooksCommand) Execute(books *Books) (Transaction, error) {
	if books != nil {
		return Transaction{}, fmt.Errorf("%w: %s", domain.ErrBooksAlreadyExist, c.BookID)
	}
	if _, err := domain.ParseTradingStatus(string(c.DefaultTradingStatus)); err != nil {
		return Transaction{}, &domain.ValidationError{Message: err.Error()}
	}
	base := NewBooks(c.BookID)
	return primaryTransaction(BooksCreatedEvent{
		BookID:          c.BookID,
		ID:              base.LastEventID.Next(),
		BusinessDate:    c.BusinessDate,
		TradingStatuses: domain.TradingStatuses{Default: c.DefaultTradingStatus},
	}, base)
}

// PlaceOrderCommand submits a single order. Validation failures that are
// expected business outcomes are recorded as an OrderRejectedEvent in the
// returned transaction rather than surfaced as errors.
type PlaceOrderCommand struct {
	RequestID     domain.ClientRequestID
	Client        domain.Client
	BookID        domain.BookID
	EntryType     domain.EntryType
	Side          domain.Side
	Size          int64
	Price         *domain.Price
	TimeInForce   domain.TimeInForce
	WhenRequested time.Time
}

func (c PlaceOrderCommand) AggregateID() domain.BookID { return c.BookID }

func (c PlaceOrderCommand) Execute(books *Books) (Transaction, error) {
	if books == nil {
		return Transaction{}, fmt.Errorf("%w: %s", domain.ErrBooksNotFound, c.BookID)
	}
	if reason, text, rejected := c.rejection(books); rejected {
		return primaryTransaction(OrderRejectedEvent{
			BookID:       c.BookID,
			ID:           books.LastEventID.Next(),
			RequestID:    c.RequestID,
			Client:       c.Client,
			EntryType:    c.EntryType,
			Side:         c.Side,
			Size:         c.Size,
			Price:        c.Price,
			TimeInForce:  c.TimeInForce,
			WhenHappened: c.WhenRequested,
			Reason:       reason,
			Text:         text,
		}, books)
	}
	return primaryTransaction(OrderPlacedEvent{
		BookID:       c.BookID,
		ID:           books.LastEventID.Next(),
		RequestID:    c.RequestID,
		Client:       c.Client,
		EntryType:    c.EntryType,
		Side:         c.Side,
		Sizes:        domain.EntrySizes{Available: c.Size},
		Price:        c.Price,
		TimeInForce:  c.TimeInForce,
		WhenHappened: c.WhenRequested,
	}, books)
}

func (c PlaceOrderCommand) rejection(books *Books) (domain.RejectReason, string, bool) {
	if !books.TradingStatuses.Effective().AllowsPlacing() {
		return domain.RejectExchangeClosed,
			fmt.Sprintf("book is %s", books.TradingStatuses.Effective()), true
	}
	if c.Size <= 0 {
		return domain.RejectIncorrectQuantity,
			fmt.Sprintf("size must be positive: %d", c.Size), true
	}
	switch c.EntryType {
	case domain.EntryTypeLimit:
		if c.Price == nil {
			return domain.RejectUnsupportedOrderCharacteristic,
				"limit order requires a price", true
		}
	case domain.EntryTypeMarket:
		if c.Price != nil {
			return domain.RejectUnsupportedOrderCharacteristic,
				"market order must not carry a price", true
		}
		if c.TimeInForce != domain.ImmediateOrCancel {
			return domain.RejectUnsupportedOrderCharacteristic,
				"market order must be immediate-or-cancel", true
		}
	default:
		return domain.RejectUnsupportedOrderCharacteristic,
			fmt.Sprintf("unknown entry type %q", c.EntryType), true
	}
	return "", "", false
}

// PlaceMassQuoteCommand submits a batch of two-sided quote levels,
// replacing all resting quotes of the requesting firm.
type PlaceMassQuoteCommand struct {
	QuoteID        string
	BookID         domain.BookID
	Client         domain.Client
	QuoteModelType domain.QuoteModelType
	TimeInForce    domain.TimeInForce
	Entries        []domain.QuoteEntry
	WhenRequested  time.Time
}

func (c PlaceMassQuoteCommand) AggregateID() domain.BookID { return c.BookID }

func (c PlaceMassQuoteCommand) Execute(books *Books) (Transaction, error) {
	if books == nil {
		return Transaction{}, fmt.Errorf("%w: %s", domain.ErrBooksNotFound, c.BookID)
	}
	if err := c.validate(books); err != nil {
		return Transaction{}, err
	}
	return primaryTransaction(MassQuotePlacedEvent{
		BookID:         c.BookID,
		ID:             books.LastEventID.Next(),
		QuoteID:        c.QuoteID,
		Client:         c.Client,
		QuoteModelType: c.QuoteModelType,
		TimeInForce:    c.TimeInForce,
		Entries:        c.Entries,
		WhenHappened:   c.WhenRequested,
	}, books)
}

func (c PlaceMassQuoteCommand) validate(books *Books) error {
	if !books.TradingStatuses.Effective().AllowsPlacing() {
		return &domain.ValidationError{
			Message: fmt.Sprintf("book is %s", books.TradingStatuses.Effective()),
		}
	}
	if len(c.Entries) == 0 {
		return domain.ErrEmptyMassQuote
	}
	if c.TimeInForce != domain.GoodTillCancel {
		return &domain.ValidationError{Message: "mass quotes must be good-till-cancel"}
	}
	// Derived entries of one quote share a submission time and event id,
	// so a repeated same-side price would collide on the book key.
	bidPrices := make(map[domain.Price]bool, len(c.Entries))
	offerPrices := make(map[domain.Price]bool, len(c.Entries))
	for i, entry := range c.Entries {
		if entry.Bid == nil && entry.Offer == nil {
			return &domain.ValidationError{
				Message: fmt.Sprintf("quote entry %d has neither bid nor offer", i),
			}
		}
		if entry.Bid != nil {
			if entry.Bid.Size <= 0 {
				return &domain.ValidationError{
					Message: fmt.Sprintf("quote entry %d bid size must be positive: %d", i, entry.Bid.Size),
				}
			}
			if bidPrices[entry.Bid.Price] {
				return &domain.ValidationError{
					Message: fmt.Sprintf("quote entry %d repeats bid price %d", i, entry.Bid.Price),
				}
			}
			bidPrices[entry.Bid.Price] = true
		}
		if entry.Offer != nil {
			if entry.Offer.Size <= 0 {
				return &domain.ValidationError{
					Message: fmt.Sprintf("quote entry %d offer size must be positive: %d", i, entry.Offer.Size),
				}
			}
			if offerPrices[entry.Offer.Price] {
				return &domain.ValidationError{
					Message: fmt.Sprintf("quote entry %d repeats offer price %d", i, entry.Offer.Price),
				}
			}
			offerPrices[entry.Offer.Price] = true
		}
	}
	return nil
}
