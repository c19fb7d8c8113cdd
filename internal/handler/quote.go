package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tradewell/matchbook/internal/engine"
	"github.com/tradewell/matchbook/internal/service"
)

// QuoteHandler handles HTTP requests for mass quote endpoints.
type QuoteHandler struct {
	exchange *service.Exchange
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(exchange *service.Exchange) *QuoteHandler {
	return &QuoteHandler{exchange: exchange}
}

// quoteEntryRequest is one two-sided level in the mass quote body.
type quoteEntryRequest struct {
	QuoteEntryID string `json:"quote_entry_id"`
	BidSize      *int64 `json:"bid_size"`
	BidPrice     *int64 `json:"bid_price"`
	OfferSize    *int64 `json:"offer_size"`
	OfferPrice   *int64 `json:"offer_price"`
}

// placeMassQuoteRequest is the JSON request body for
// POST /books/{book_id}/quotes.
type placeMassQuoteRequest struct {
	QuoteID       string              `json:"quote_id"`
	FirmID        string              `json:"firm_id"`
	Entries       []quoteEntryRequest `json:"entries"`
	WhenRequested *string             `json:"when_requested"`
}

// placeMassQuoteResponse is the JSON response for mass quote submission.
type placeMassQuoteResponse struct {
	BookID         string         `json:"book_id"`
	QuoteID        string         `json:"quote_id"`
	ReplacedQuotes int            `json:"replaced_quotes"`
	RestingEntries int            `json:"resting_entries"`
	Fills          []fillResponse `json:"fills"`
	LastEventID    int64          `json:"last_event_id"`
}

// PlaceMassQuote handles POST /books/{book_id}/quotes.
func (h *QuoteHandler) PlaceMassQuote(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "book_id")

	var req placeMassQuoteRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var when time.Time
	if req.WhenRequested != nil {
		t, err := time.Parse(time.RFC3339Nano, *req.WhenRequested)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "when_requested must be a valid RFC 3339 timestamp")
			return
		}
		when = t
	}

	entries := make([]service.QuoteEntryRequest, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = service.QuoteEntryRequest{
			QuoteEntryID: e.QuoteEntryID,
			BidSize:      e.BidSize,
			BidPrice:     e.BidPrice,
			OfferSize:    e.OfferSize,
			OfferPrice:   e.OfferPrice,
		}
	}

	books, events, err := h.exchange.PlaceMassQuote(r.Context(), service.PlaceMassQuoteRequest{
		BookID:        bookID,
		QuoteID:       req.QuoteID,
		FirmID:        req.FirmID,
		Entries:       entries,
		WhenRequested: when,
	})
	if err != nil {
		mapExchangeError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildMassQuoteResponse(books, events))
}

// buildMassQuoteResponse folds the transaction's events into the quoting
// firm's view of the outcome.
func buildMassQuoteResponse(books *engine.Books, events []engine.Event) placeMassQuoteResponse {
	resp := placeMassQuoteResponse{
		BookID:      string(books.BookID),
		LastEventID: int64(books.LastEventID),
		Fills:       []fillResponse{},
	}
	if len(events) == 0 {
		return resp
	}

	primary, ok := events[0].(engine.MassQuotePlacedEvent)
	if !ok {
		return resp
	}
	resp.QuoteID = primary.QuoteID

	for _, ev := range events[1:] {
		switch e := ev.(type) {
		case engine.EntriesRemovedFromBookEvent:
			resp.ReplacedQuotes += len(e.Entries)
		case engine.EntryAddedToBookEvent:
			if e.Entry.Key.EventID == primary.ID {
				resp.RestingEntries++
			}
		case engine.TradeEvent:
			if e.Aggressor.EntryEventID != primary.ID {
				continue
			}
			resp.Fills = append(resp.Fills, fillResponse{
				Price:      int64(e.Price),
				Size:       e.Size,
				ExecutedAt: e.WhenHappened.UTC().Format(time.RFC3339Nano),
			})
		}
	}
	return resp
}
