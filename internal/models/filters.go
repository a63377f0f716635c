// internal/models/filters.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownFilterIntent = errors.New("UNKNOWN_FILTER_INTENT")

// Filters is the per-intent extraction result. Each intent has its own payload type so an
// extractor only returns what its intent needs. An absent constraint never excludes rows.
type Filters interface {
	Intent() Intent
}

// ConditionFilters constrains price, odometer and brand; all present constraints are AND-ed.
type ConditionFilters struct {
	PriceMin *float64 `json:"priceMin,omitempty"`
	PriceMax *float64 `json:"priceMax,omitempty"`
	KmLimit  *float64 `json:"kmLimit,omitempty"`
	Brands   []string `json:"brands,omitempty"`
}

func (ConditionFilters) Intent() Intent { return IntentConditionFilter }

// HistoryFilters selects one brand/model pair across dated uploads.
type HistoryFilters struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Years []int  `json:"years,omitempty"`
}

func (HistoryFilters) Intent() Intent { return IntentHistoryTrend }

// BrandMarketFilters selects one brand. An empty Brand means "sample the dataset".
type BrandMarketFilters struct {
	Brand string `json:"brand,omitempty"`
}

func (BrandMarketFilters) Intent() Intent { return IntentBrandMarket }

// CompareFilters holds the brands detected in free text. Empty means "sample the dataset".
type CompareFilters struct {
	Brands []string `json:"brands,omitempty"`
}

func (CompareFilters) Intent() Intent { return IntentDefaultCompare }

// OverallFilters carries no constraints.
type OverallFilters struct{}

func (OverallFilters) Intent() Intent { return IntentOverallMarket }

// FilterEnvelope is the JSON form of a Filters value, used for job variables.
type FilterEnvelope struct {
	Intent  Intent          `json:"intent"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeFilters wraps f into an envelope tagged with its intent.
func EncodeFilters(f Filters) (FilterEnvelope, error) {
	payload, err := json.Marshal(f)
	if err != nil {
		return FilterEnvelope{}, fmt.Errorf("marshal filters: %w", err)
	}
	return FilterEnvelope{Intent: f.Intent(), Payload: payload}, nil
}

// Decode restores the concrete Filters value held by the envelope.
func (e FilterEnvelope) Decode() (Filters, error) {
	var target Filters
	switch e.Intent {
	case IntentConditionFilter:
		var f ConditionFilters
		if err := unmarshalPayload(e.Payload, &f); err != nil {
			return nil, err
		}
		target = f
	case IntentHistoryTrend:
		var f HistoryFilters
		if err := unmarshalPayload(e.Payload, &f); err != nil {
			return nil, err
		}
		target = f
	case IntentBrandMarket:
		var f BrandMarketFilters
		if err := unmarshalPayload(e.Payload, &f); err != nil {
			return nil, err
		}
		target = f
	case IntentDefaultCompare:
		var f CompareFilters
		if err := unmarshalPayload(e.Payload, &f); err != nil {
			return nil, err
		}
		target = f
	case IntentOverallMarket:
		target = OverallFilters{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilterIntent, e.Intent)
	}
	return target, nil
}

func unmarshalPayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal filters: %w", err)
	}
	return nil
}
