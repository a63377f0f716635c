// internal/workers/car-market/load-datasets/models.go
package loaddatasets

import "car-market-assistant/internal/session"

// Input names the current dataset and the history collection of a session. Either part
// may be omitted; a present part replaces what the session held.
type Input struct {
	SessionID     string   `json:"sessionId"`
	CurrentSource string   `json:"currentSource,omitempty"`
	CurrentRef    string   `json:"currentRef,omitempty"`
	HistoryFiles  []string `json:"historyFiles,omitempty"`
}

type Output struct {
	SessionID   string        `json:"sessionId"`
	State       session.State `json:"state"`
	CurrentRows int           `json:"currentRows"`
}
