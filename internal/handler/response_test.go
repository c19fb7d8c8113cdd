package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, placeOrderResponse{
		BookID:          "BTC-EUR",
		ClientRequestID: "ord-1",
		Status:          "NEW",
		AvailableSize:   5,
		Resting:         true,
		Fills:           []fillResponse{},
		LastEventID:     3,
	})

	if w.Code != http.StatusCreated {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if raw["book_id"] != "BTC-EUR" {
		t.Errorf("book_id = %v, want BTC-EUR", raw["book_id"])
	}
	if raw["last_event_id"] != float64(3) {
		t.Errorf("last_event_id = %v, want 3", raw["last_event_id"])
	}
	// An untraded order carries an empty fills array, not null.
	if fills, ok := raw["fills"].([]any); !ok || len(fills) != 0 {
		t.Errorf("fills = %v, want []", raw["fills"])
	}
	// Reject fields are omitted for accepted orders.
	if _, present := raw["reject_reason"]; present {
		t.Error("reject_reason present on accepted order response")
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    string
		message string
	}{
		{"not found", http.StatusNotFound, "book_not_found", "books not found: BTC-EUR"},
		{"conflict", http.StatusConflict, "book_already_exists", "books already exist: BTC-EUR"},
		{"validation", http.StatusBadRequest, "validation_error", "mass quotes must be good-till-cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.status, tt.code, tt.message)

			if w.Code != tt.status {
				t.Errorf("status code = %d, want %d", w.Code, tt.status)
			}

			var resp errorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Error != tt.code {
				t.Errorf("error = %q, want %q", resp.Error, tt.code)
			}
			if resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	valid := `{"client_request_id":"ord-1","firm_id":"ACME","entry_type":"LIMIT","side":"BUY","size":5,"price":100,"time_in_force":"GTC"}`

	t.Run("decodes an order request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/books/BTC-EUR/orders", strings.NewReader(valid))
		r.Header.Set("Content-Type", "application/json")

		var req placeOrderRequest
		if err := ParseJSON(r, &req); err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if req.ClientRequestID != "ord-1" || req.Side != "BUY" || req.Size != 5 {
			t.Errorf("decoded request = %+v", req)
		}
		if req.Price == nil || *req.Price != 100 {
			t.Errorf("price = %v, want 100", req.Price)
		}
		if req.WhenRequested != nil {
			t.Errorf("when_requested = %v, want nil", req.WhenRequested)
		}
	})

	t.Run("accepts a charset parameter", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/books/BTC-EUR/orders", strings.NewReader(valid))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var req placeOrderRequest
		if err := ParseJSON(r, &req); err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
	})

	t.Run("rejects missing content type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/books/BTC-EUR/orders", strings.NewReader(valid))

		var req placeOrderRequest
		err := ParseJSON(r, &req)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "application/json") {
			t.Errorf("error = %q, should name the required media type", err)
		}
	})

	badBodies := []struct {
		name string
		body string
		ct   string
	}{
		{"wrong content type", valid, "text/plain"},
		{"malformed body", `{"side":`, "application/json"},
		{"empty body", "", "application/json"},
		{"unknown field", `{"side":"BUY","stop_price":90}`, "application/json"},
	}
	for _, tt := range badBodies {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/books/BTC-EUR/orders", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.ct)

			var req placeOrderRequest
			if err := ParseJSON(r, &req); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
