package store

import (
	"encoding/json"
	"fmt"

	"github.com/tradewell/matchbook/internal/engine"
)

// Event type discriminators used in the stored envelope.
const (
	typeBooksCreated       = "BooksCreated"
	typeOrderPlaced        = "OrderPlaced"
	typeOrderRejected      = "OrderRejected"
	typeOrderCancelled     = "OrderCancelled"
	typeMassQuotePlaced    = "MassQuotePlaced"
	typeTrade              = "Trade"
	typeEntryAddedToBook   = "EntryAddedToBook"
	typeEntriesRemovedFrom = "EntriesRemovedFromBook"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeEvent serialises an event into a self-describing envelope.
func EncodeEvent(ev engine.Event) ([]byte, error) {
	var typ string
	switch ev.(type) {
	case engine.BooksCreatedEvent:
		typ = typeBooksCreated
	case engine.OrderPlacedEvent:
		typ = typeOrderPlaced
	case engine.OrderRejectedEvent:
		typ = typeOrderRejected
	case engine.OrderCancelledEvent:
		typ = typeOrderCancelled
	case engine.MassQuotePlacedEvent:
		typ = typeMassQuotePlaced
	case engine.TradeEvent:
		typ = typeTrade
	case engine.EntryAddedToBookEvent:
		typ = typeEntryAddedToBook
	case engine.EntriesRemovedFromBookEvent:
		typ = typeEntriesRemovedFrom
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", typ, err)
	}
	return json.Marshal(envelope{Type: typ, Data: data})
}

// DecodeEvent deserialises an envelope back into the concrete event.
func DecodeEvent(raw []byte) (engine.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	var ev engine.Event
	var err error
	switch env.Type {
	case typeBooksCreated:
		ev, err = decodeAs[engine.BooksCreatedEvent](env.Data)
	case typeOrderPlaced:
		ev, err = decodeAs[engine.OrderPlacedEvent](env.Data)
	case typeOrderRejected:
		ev, err = decodeAs[engine.OrderRejectedEvent](env.Data)
	case typeOrderCancelled:
		ev, err = decodeAs[engine.OrderCancelledEvent](env.Data)
	case typeMassQuotePlaced:
		ev, err = decodeAs[engine.MassQuotePlacedEvent](env.Data)
	case typeTrade:
		ev, err = decodeAs[engine.TradeEvent](env.Data)
	case typeEntryAddedToBook:
		ev, err = decodeAs[engine.EntryAddedToBookEvent](env.Data)
	case typeEntriesRemovedFrom:
		ev, err = decodeAs[engine.EntriesRemovedFromBookEvent](env.Data)
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s event: %w", env.Type, err)
	}
	return ev, nil
}

func decodeAs[E engine.Event](data json.RawMessage) (engine.Event, error) {
	var ev E
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
