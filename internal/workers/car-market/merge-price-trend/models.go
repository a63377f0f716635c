// internal/workers/car-market/merge-price-trend/models.go
package mergepricetrend

import "car-market-assistant/internal/models"

type Input struct {
	SessionID string                `json:"sessionId"`
	Filters   models.FilterEnvelope `json:"filters"`
}

type Output struct {
	Trend    models.TrendSeries `json:"trend"`
	Warnings []string           `json:"warnings,omitempty"`
}
