// internal/workers/car-market/aggregate-listings/models.go
package aggregatelistings

import "car-market-assistant/internal/models"

type Input struct {
	SessionID string                `json:"sessionId"`
	Filters   models.FilterEnvelope `json:"filters"`
}

type Output struct {
	Aggregation models.AggregationResult `json:"aggregation"`
	Warnings    []string                 `json:"warnings,omitempty"`
}
