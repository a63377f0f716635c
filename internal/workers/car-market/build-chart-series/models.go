// internal/workers/car-market/build-chart-series/models.go
package buildchartseries

import "car-market-assistant/internal/models"

type Input struct {
	SessionID string             `json:"sessionId"`
	Trend     models.TrendSeries `json:"trend"`
	Brand     string             `json:"brand,omitempty"`
	ModelName string             `json:"modelName,omitempty"`
}

type Output struct {
	Chart Chart `json:"chart"`
}

// ChartPoint is one plotted value. Field names follow the input column names.
type ChartPoint struct {
	Date       string  `json:"Date"`
	Price      float64 `json:"Price"`
	Kilometers float64 `json:"Kilometers"`
	Year       float64 `json:"Year"`
}

// ShowroomSeries is a flat reference line drawn from its first to its last point.
type ShowroomSeries struct {
	Source string       `json:"source"`
	Points []ChartPoint `json:"points"`
}

type Series struct {
	Points        []ChartPoint     `json:"points"`
	MedianLine    []ChartPoint     `json:"medianLine"`
	ShowroomLines []ShowroomSeries `json:"showroomLines"`
}

type Chart struct {
	Title  string `json:"title"`
	Brand  string `json:"brand"`
	Model  string `json:"model"`
	Series Series `json:"series"`
}
