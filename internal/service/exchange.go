package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tradewell/matchbook/internal/domain"
	"github.com/tradewell/matchbook/internal/engine"
	"github.com/tradewell/matchbook/internal/store"
)

// DefaultAppendRetries is how many times a command is re-executed when
// its append loses an optimistic-concurrency race.
const DefaultAppendRetries = 5

// Exchange coordinates command execution against the event store:
// read the aggregate, execute the command, append the resulting
// transaction, and retry from a fresh read when a concurrent append
// wins the race.
type Exchange struct {
	repo    store.Repository
	log     *slog.Logger
	retries int
}

// NewExchange creates an Exchange. A nil logger discards logs; retries
// below 1 falls back to DefaultAppendRetries.
func NewExchange(repo store.Repository, log *slog.Logger, retries int) *Exchange {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if retries < 1 {
		retries = DefaultAppendRetries
	}
	return &Exchange{repo: repo, log: log, retries: retries}
}

// CreateBooksRequest represents the input for book creation.
type CreateBooksRequest struct {
	BookID               string
	BusinessDate         time.Time
	DefaultTradingStatus string
}

// PlaceOrderRequest represents the input for order submission.
type PlaceOrderRequest struct {
	BookID          string
	ClientRequestID string
	FirmID          string
	FirmClientID    string
	EntryType       string
	Side            string
	Size            int64
	Price           *int64
	TimeInForce     string
	WhenRequested   time.Time
}

// QuoteEntryRequest is one two-sided level of a mass quote.
type QuoteEntryRequest struct {
	QuoteEntryID string
	BidSize      *int64
	BidPrice     *int64
	OfferSize    *int64
	OfferPrice   *int64
}

// PlaceMassQuoteRequest represents the input for mass quote submission.
type PlaceMassQuoteRequest struct {
	BookID        string
	QuoteID       string
	FirmID        string
	Entries       []QuoteEntryRequest
	WhenRequested time.Time
}

// CreateBooks creates the order books for a new instrument.
func (e *Exchange) CreateBooks(ctx context.Context, req CreateBooksRequest) (*engine.Books, []engine.Event, error) {
	if req.BookID == "" {
		return nil, nil, &domain.ValidationError{Message: "book_id is required"}
	}
	businessDate := req.BusinessDate
	if businessDate.IsZero() {
		businessDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	status := domain.TradingStatusOpenForTrading
	if req.DefaultTradingStatus != "" {
		parsed, err := domain.ParseTradingStatus(req.DefaultTradingStatus)
		if err != nil {
			return nil, nil, &domain.ValidationError{Message: err.Error()}
		}
		status = parsed
	}

	return e.execute(ctx, engine.CreateBooksCommand{
		BookID:               domain.BookID(req.BookID),
		BusinessDate:         businessDate,
		DefaultTradingStatus: status,
	})
}

// PlaceOrder submits a single order. Business-level rejections surface
// as an OrderRejectedEvent in the returned events, not as an error.
func (e *Exchange) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*engine.Books, []engine.Event, error) {
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return nil, nil, &domain.ValidationError{Message: err.Error()}
	}
	entryType, err := domain.ParseEntryType(req.EntryType)
	if err != nil {
		return nil, nil, &domain.ValidationError{Message: err.Error()}
	}
	tif, err := domain.ParseTimeInForce(req.TimeInForce)
	if err != nil {
		return nil, nil, &domain.ValidationError{Message: err.Error()}
	}
	var price *domain.Price
	if req.Price != nil {
		p, err := domain.NewPrice(*req.Price)
		if err != nil {
			return nil, nil, &domain.ValidationError{Message: err.Error()}
		}
		price = &p
	}

	requestID := req.ClientRequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	when := req.WhenRequested
	if when.IsZero() {
		when = time.Now().UTC()
	}

	return e.execute(ctx, engine.PlaceOrderCommand{
		RequestID: domain.ClientRequestID{Current: requestID},
		Client: domain.Client{
			FirmID:       req.FirmID,
			FirmClientID: req.FirmClientID,
		},
		BookID:        domain.BookID(req.BookID),
		EntryType:     entryType,
		Side:          side,
		Size:          req.Size,
		Price:         price,
		TimeInForce:   tif,
		WhenRequested: when,
	})
}

// PlaceMassQuote submits a batch of two-sided quotes for a firm,
// replacing the firm's resting quotes.
func (e *Exchange) PlaceMassQuote(ctx context.Context, req PlaceMassQuoteRequest) (*engine.Books, []engine.Event, error) {
	entries := make([]domain.QuoteEntry, 0, len(req.Entries))
	for i, qe := range req.Entries {
		entry, err := buildQuoteEntry(i, qe)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry)
	}

	quoteID := req.QuoteID
	if quoteID == "" {
		quoteID = uuid.NewString()
	}
	when := req.WhenRequested
	if when.IsZero() {
		when = time.Now().UTC()
	}

	return e.execute(ctx, engine.PlaceMassQuoteCommand{
		QuoteID:        quoteID,
		BookID:         domain.BookID(req.BookID),
		Client:         domain.Client{FirmID: req.FirmID},
		QuoteModelType: domain.QuoteEntryModel,
		TimeInForce:    domain.GoodTillCancel,
		Entries:        entries,
		WhenRequested:  when,
	})
}

func buildQuoteEntry(i int, req QuoteEntryRequest) (domain.QuoteEntry, error) {
	entryID := req.QuoteEntryID
	if entryID == "" {
		entryID = uuid.NewString()
	}
	entry := domain.QuoteEntry{QuoteEntryID: entryID}

	if (req.BidSize == nil) != (req.BidPrice == nil) {
		return domain.QuoteEntry{}, &domain.ValidationError{
			Message: fmt.Sprintf("quote entry %d: bid_size and bid_price must be given together", i),
		}
	}
	if (req.OfferSize == nil) != (req.OfferPrice == nil) {
		return domain.QuoteEntry{}, &domain.ValidationError{
			Message: fmt.Sprintf("quote entry %d: offer_size and offer_price must be given together", i),
		}
	}

	if req.BidSize != nil {
		p, err := domain.NewPrice(*req.BidPrice)
		if err != nil {
			return domain.QuoteEntry{}, &domain.ValidationError{Message: err.Error()}
		}
		entry.Bid = &domain.SizeAtPrice{Size: *req.BidSize, Price: p}
	}
	if req.OfferSize != nil {
		p, err := domain.NewPrice(*req.OfferPrice)
		if err != nil {
			return domain.QuoteEntry{}, &domain.ValidationError{Message: err.Error()}
		}
		entry.Offer = &domain.SizeAtPrice{Size: *req.OfferSize, Price: p}
	}
	return entry, nil
}

// Depth returns the top price levels of both sides of a book.
func (e *Exchange) Depth(ctx context.Context, bookID string, levels int) (*engine.Books, []engine.PriceLevel, []engine.PriceLevel, error) {
	books, err := e.repo.Read(ctx, domain.BookID(bookID))
	if err != nil {
		return nil, nil, nil, err
	}
	if books == nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrBooksNotFound, bookID)
	}
	return books, books.BuyBook.Levels(levels), books.SellBook.Levels(levels), nil
}

// execute runs the read-execute-append loop with retries on append
// conflicts. The command itself never retries; conflicts restart from a
// fresh read of the aggregate.
func (e *Exchange) execute(ctx context.Context, cmd engine.Command) (*engine.Books, []engine.Event, error) {
	bookID := cmd.AggregateID()
	for attempt := 1; ; attempt++ {
		books, err := e.repo.Read(ctx, bookID)
		if err != nil {
			return nil, nil, err
		}
		var expected domain.EventID
		if books != nil {
			expected = books.LastEventID
		}

		txn, err := cmd.Execute(books)
		if err != nil {
			return nil, nil, err
		}

		err = e.repo.Append(ctx, bookID, expected, txn.Events)
		if err == nil {
			e.log.Info("command executed",
				"book_id", bookID,
				"command", fmt.Sprintf("%T", cmd),
				"events", len(txn.Events),
				"last_event_id", txn.Aggregate.LastEventID,
			)
			return txn.Aggregate, txn.Events, nil
		}

		var conflict *store.ConflictError
		if !errors.As(err, &conflict) || attempt >= e.retries {
			return nil, nil, err
		}
		e.log.Warn("append conflict, retrying",
			"book_id", bookID,
			"attempt", attempt,
			"expected", conflict.Expected,
			"actual", conflict.Actual,
		)
	}
}
