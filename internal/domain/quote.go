package domain

// QuoteModelType describes how the entries of a mass quote are interpreted.
// QUOTE_ENTRY is the only supported model: each entry is an independent
// two-sided price level.
type QuoteModelType string

const QuoteEntryModel QuoteModelType = "QUOTE_ENTRY"

// SizeAtPrice is one side of a quote entry.
type SizeAtPrice struct {
	Size  int64 `json:"size"`
	Price Price `json:"price"`
}

// QuoteEntry is a two-sided (bid and/or offer) price level within a mass
// quote. QuoteSetID groups entries that were submitted together.
type QuoteEntry struct {
	QuoteEntryID string       `json:"quoteEntryId"`
	QuoteSetID   string       `json:"quoteSetId"`
	Bid          *SizeAtPrice `json:"bid,omitempty"`
	Offer        *SizeAtPrice `json:"offer,omitempty"`
}
