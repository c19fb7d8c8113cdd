package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tradewell/matchbook/internal/engine"
	"github.com/tradewell/matchbook/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	exchange *service.Exchange
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(exchange *service.Exchange) *OrderHandler {
	return &OrderHandler{exchange: exchange}
}

// placeOrderRequest is the JSON request body for POST /books/{book_id}/orders.
type placeOrderRequest struct {
	ClientRequestID string  `json:"client_request_id"`
	FirmID          string  `json:"firm_id"`
	FirmClientID    string  `json:"firm_client_id"`
	EntryType       string  `json:"entry_type"`
	Side            string  `json:"side"`
	Size            int64   `json:"size"`
	Price           *int64  `json:"price"`
	TimeInForce     string  `json:"time_in_force"`
	WhenRequested   *string `json:"when_requested"`
}

// fillResponse is one execution of the submitted order.
type fillResponse struct {
	Price      int64  `json:"price"`
	Size       int64  `json:"size"`
	ExecutedAt string `json:"executed_at"`
}

// placeOrderResponse is the JSON response for order submission. Rejected
// orders carry reject_reason and reject_text; accepted orders carry the
// post-matching size bookkeeping and any fills.
type placeOrderResponse struct {
	BookID          string         `json:"book_id"`
	ClientRequestID string         `json:"client_request_id"`
	Status          string         `json:"status"`
	RejectReason    *string        `json:"reject_reason,omitempty"`
	RejectText      *string        `json:"reject_text,omitempty"`
	AvailableSize   int64          `json:"available_size"`
	TradedSize      int64          `json:"traded_size"`
	CancelledSize   int64          `json:"cancelled_size"`
	Resting         bool           `json:"resting"`
	Fills           []fillResponse `json:"fills"`
	LastEventID     int64          `json:"last_event_id"`
}

// PlaceOrder handles POST /books/{book_id}/orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "book_id")

	var req placeOrderRequest
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

	books, events, err := h.exchange.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		BookID:          bookID,
		ClientRequestID: req.ClientRequestID,
		FirmID:          req.FirmID,
		FirmClientID:    req.FirmClientID,
		EntryType:       req.EntryType,
		Side:            req.Side,
		Size:            req.Size,
		Price:           req.Price,
		TimeInForce:     req.TimeInForce,
		WhenRequested:   when,
	})
	if err != nil {
		mapExchangeError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildPlaceOrderResponse(books, events))
}

// buildPlaceOrderResponse folds the transaction's events into the
// submitter's view of the outcome.
func buildPlaceOrderResponse(books *engine.Books, events []engine.Event) placeOrderResponse {
	resp := placeOrderResponse{
		BookID:      string(books.BookID),
		LastEventID: int64(books.LastEventID),
		Fills:       []fillResponse{},
	}

	if len(events) == 0 {
		return resp
	}

	switch primary := events[0].(type) {
	case engine.OrderRejectedEvent:
		reason := string(primary.Reason)
		text := primary.Text
		resp.ClientRequestID = primary.RequestID.Current
		resp.Status = "REJECTED"
		resp.RejectReason = &reason
		resp.RejectText = &text
		resp.AvailableSize = primary.Size
		return resp

	case engine.OrderPlacedEvent:
		resp.ClientRequestID = primary.RequestID.Current
		resp.Status = "NEW"
		resp.AvailableSize = primary.Sizes.Available

		for _, ev := range events[1:] {
			switch e := ev.(type) {
			case engine.TradeEvent:
				if e.Aggressor.EntryEventID != primary.ID {
					continue
				}
				resp.Fills = append(resp.Fills, fillResponse{
					Price:      int64(e.Price),
					Size:       e.Size,
					ExecutedAt: e.WhenHappened.UTC().Format(time.RFC3339Nano),
				})
				resp.Status = string(e.Aggressor.Status)
				resp.AvailableSize = e.Aggressor.Sizes.Available
				resp.TradedSize = e.Aggressor.Sizes.Traded
				resp.CancelledSize = e.Aggressor.Sizes.Cancelled
			case engine.EntryAddedToBookEvent:
				if e.Entry.Key.EventID == primary.ID {
					resp.Resting = true
				}
			case engine.OrderCancelledEvent:
				if e.RequestID != primary.RequestID {
					continue
				}
				resp.Status = string(e.Status)
				resp.AvailableSize = e.Sizes.Available
				resp.TradedSize = e.Sizes.Traded
				resp.CancelledSize = e.Sizes.Cancelled
			}
		}
		return resp
	}
	return resp
}
