package types

// Event is the flattened form of a domain event as persisted by the journal
// and served over RPC.
type Event struct {
	Type       string            `json:"type"`
	RequestID  string            `json:"requestId,omitempty"`
	Attributes map[string]string `json:"attributes"`
}
