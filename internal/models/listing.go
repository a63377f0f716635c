// internal/models/listing.go
package models

import (
	"strings"
	"time"
)

// Listing is one used-car advert after field normalization. Numeric fields are nil
// when the raw text carried no usable value; Date is nil when no date was parsed.
type Listing struct {
	Brand      string     `json:"brand"`
	Model      string     `json:"model"`
	Year       *float64   `json:"year,omitempty"`
	Price      *float64   `json:"price,omitempty"`
	Kilometers *float64   `json:"kilometers,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}

// Complete reports whether every field required for aggregation is present.
func (l Listing) Complete() bool {
	return strings.TrimSpace(l.Brand) != "" &&
		strings.TrimSpace(l.Model) != "" &&
		l.Price != nil && l.Year != nil && l.Kilometers != nil
}

// Dated reports whether the listing carries a parsed date.
func (l Listing) Dated() bool {
	return l.Date != nil && !l.Date.IsZero()
}

// PriceValue returns the price or 0 when missing.
func (l Listing) PriceValue() float64 { return deref(l.Price) }

// KilometersValue returns the odometer reading or 0 when missing.
func (l Listing) KilometersValue() float64 { return deref(l.Kilometers) }

// YearValue returns the model year or 0 when missing.
func (l Listing) YearValue() float64 { return deref(l.Year) }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
