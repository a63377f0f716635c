// internal/models/analysis.go
package models

import "time"

// OverallBrand labels the synthetic whole-market row of the brand table.
const OverallBrand = "Overall"

// BrandSummary is one row of the brand-level table.
type BrandSummary struct {
	Brand      string  `json:"brand"`
	ModelCount int     `json:"modelCount"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
	AvgYear    float64 `json:"avgYear"`
	AvgKm      float64 `json:"avgKm"`
}

// ModelSummary is one row of the model-level table.
type ModelSummary struct {
	Brand    string  `json:"brand"`
	Model    string  `json:"model"`
	AvgPrice float64 `json:"avgPrice"`
	AvgYear  float64 `json:"avgYear"`
	AvgKm    float64 `json:"avgKm"`
	Count    int     `json:"count"`
}

// AggregationResult is the output of the aggregation stage for non-trend intents.
type AggregationResult struct {
	Intent     Intent         `json:"intent"`
	Rows       []Listing      `json:"rows"`
	BrandTable []BrandSummary `json:"brandTable,omitempty"`
	ModelTable []ModelSummary `json:"modelTable,omitempty"`
	Sampled    bool           `json:"sampled"`
}

// TrendPoint is one market listing placed on the time axis.
type TrendPoint struct {
	Date       time.Time `json:"date"`
	Price      float64   `json:"price"`
	Kilometers float64   `json:"kilometers"`
	Year       float64   `json:"year"`
	Source     string    `json:"source"`
}

// MedianPoint summarizes all points sharing one date.
type MedianPoint struct {
	Date        time.Time `json:"date"`
	MedianPrice float64   `json:"medianPrice"`
	MeanKm      float64   `json:"meanKm"`
	MeanYear    float64   `json:"meanYear"`
}

// ShowroomLine is a constant reference price spanning the market date range.
type ShowroomLine struct {
	Price      float64   `json:"price"`
	Kilometers float64   `json:"kilometers"`
	Year       float64   `json:"year"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Source     string    `json:"source"`
}

// TrendSeries is the three-layer history view.
type TrendSeries struct {
	Points        []TrendPoint   `json:"points"`
	MedianLine    []MedianPoint  `json:"medianLine"`
	ShowroomLines []ShowroomLine `json:"showroomLines"`
}
