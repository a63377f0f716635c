// internal/workers/car-market/extract-filters/models.go
package extractfilters

import "car-market-assistant/internal/models"

type Input struct {
	SessionID string        `json:"sessionId"`
	Question  string        `json:"question"`
	Intent    models.Intent `json:"intent"`
}

type Output struct {
	Filters models.FilterEnvelope `json:"filters"`
}
