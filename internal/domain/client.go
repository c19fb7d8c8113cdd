package domain

// BookID identifies a single Books aggregate (one tradable instrument).
type BookID string

// Client identifies the beneficial owner of a request: a member firm and,
// optionally, a client of that firm. An empty FirmClientID means the
// request is attributed at firm level only.
type Client struct {
	FirmID       string `json:"firmId"`
	FirmClientID string `json:"firmClientId,omitempty"`
}

// ClientRequestID carries the client-assigned identifier of a request.
// Original links an amendment to the request it replaces; ParentID groups
// requests spawned by a batch request (e.g. quote entries under a mass
// quote).
type ClientRequestID struct {
	Current  string `json:"current"`
	Original string `json:"original,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// SameFirmAndSameFirmClient reports whether two requests are attributable
// to exactly the same beneficial owner.
func SameFirmAndSameFirmClient(a, b Client) bool {
	return a == b
}

// SameFirmPossibleFirmAgainstClient reports whether two requests share a
// firm while at least one side is attributed at firm level only, making
// the beneficial-owner comparison ambiguous.
func SameFirmPossibleFirmAgainstClient(a, b Client) bool {
	return a.FirmID == b.FirmID && (a.FirmClientID == "" || b.FirmClientID == "")
}

// Washes reports whether a trade between the two parties would be a wash
// trade and must be prevented.
func Washes(aggressor, passive Client) bool {
	return SameFirmAndSameFirmClient(aggressor, passive) ||
		SameFirmPossibleFirmAgainstClient(aggressor, passive)
}
