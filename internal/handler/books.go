package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tradewell/matchbook/internal/domain"
	"github.com/tradewell/matchbook/internal/engine"
	"github.com/tradewell/matchbook/internal/service"
)

// BooksHandler handles HTTP requests for book lifecycle and market data
// endpoints.
type BooksHandler struct {
	exchange *service.Exchange
}

// NewBooksHandler creates a new BooksHandler.
func NewBooksHandler(exchange *service.Exchange) *BooksHandler {
	return &BooksHandler{exchange: exchange}
}

// createBooksRequest is the JSON request body for POST /books.
type createBooksRequest struct {
	BookID               string  `json:"book_id"`
	BusinessDate         *string `json:"business_date"`
	DefaultTradingStatus *string `json:"default_trading_status"`
}

// createBooksResponse is the JSON response for book creation.
type createBooksResponse struct {
	BookID        string `json:"book_id"`
	BusinessDate  string `json:"business_date"`
	TradingStatus string `json:"trading_status"`
	LastEventID   int64  `json:"last_event_id"`
}

// priceLevelResponse is one aggregated level in the depth response.
type priceLevelResponse struct {
	Price      int64 `json:"price"`
	Size       int64 `json:"size"`
	EntryCount int   `json:"entry_count"`
}

// depthResponse is the JSON response for GET /books/{book_id}/depth.
type depthResponse struct {
	BookID      string               `json:"book_id"`
	LastEventID int64                `json:"last_event_id"`
	Bids        []priceLevelResponse `json:"bids"`
	Offers      []priceLevelResponse `json:"offers"`
}

// CreateBooks handles POST /books.
func (h *BooksHandler) CreateBooks(w http.ResponseWriter, r *http.Request) {
	var req createBooksRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var businessDate time.Time
	if req.BusinessDate != nil {
		t, err := time.Parse("2006-01-02", *req.BusinessDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "business_date must be a valid YYYY-MM-DD date")
			return
		}
		businessDate = t
	}

	var status string
	if req.DefaultTradingStatus != nil {
		status = *req.DefaultTradingStatus
	}

	books, _, err := h.exchange.CreateBooks(r.Context(), service.CreateBooksRequest{
		BookID:               req.BookID,
		BusinessDate:         businessDate,
		DefaultTradingStatus: status,
	})
	if err != nil {
		mapExchangeError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, createBooksResponse{
		BookID:        string(books.BookID),
		BusinessDate:  books.BusinessDate.UTC().Format("2006-01-02"),
		TradingStatus: string(books.TradingStatuses.Effective()),
		LastEventID:   int64(books.LastEventID),
	})
}

// Depth handles GET /books/{book_id}/depth.
func (h *BooksHandler) Depth(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "book_id")

	levels := 10
	if v := r.URL.Query().Get("levels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			WriteError(w, http.StatusBadRequest, "validation_error", "levels must be an integer between 1 and 100")
			return
		}
		levels = n
	}

	books, bids, offers, err := h.exchange.Depth(r.Context(), bookID, levels)
	if err != nil {
		mapExchangeError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, depthResponse{
		BookID:      string(books.BookID),
		LastEventID: int64(books.LastEventID),
		Bids:        buildLevelResponses(bids),
		Offers:      buildLevelResponses(offers),
	})
}

func buildLevelResponses(levels []engine.PriceLevel) []priceLevelResponse {
	result := make([]priceLevelResponse, len(levels))
	for i, l := range levels {
		result[i] = priceLevelResponse{
			Price:      int64(l.Price),
			Size:       l.Size,
			EntryCount: l.EntryCount,
		}
	}
	return result
}

// mapExchangeError maps domain and store errors to HTTP responses.
func mapExchangeError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrBooksNotFound):
		WriteError(w, http.StatusNotFound, "book_not_found", err.Error())
	case errors.Is(err, domain.ErrBooksAlreadyExist):
		WriteError(w, http.StatusConflict, "book_already_exists", err.Error())
	case errors.Is(err, domain.ErrEmptyMassQuote):
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
