// internal/models/dataset.go
package models

import (
	"path/filepath"
	"strings"
)

// DatasetKind tags a dataset as dated market observations or an undated showroom price list.
type DatasetKind string

const (
	DatasetKindMarket   DatasetKind = "market"
	DatasetKindShowroom DatasetKind = "showroom"
)

const showroomToken = "showroom"

// ClassifyDatasetKind decides the kind once, at ingestion. A source is a showroom list
// only when its name carries the showroom token and it has no Date column.
func ClassifyDatasetKind(sourceName string, hasDateColumn bool) DatasetKind {
	name := strings.ToLower(filepath.Base(sourceName))
	if strings.Contains(name, showroomToken) && !hasDateColumn {
		return DatasetKindShowroom
	}
	return DatasetKindMarket
}

// Dataset is an ordered collection of listings loaded from one source.
type Dataset struct {
	SourceName    string      `json:"sourceName"`
	Kind          DatasetKind `json:"kind"`
	HasDateColumn bool        `json:"hasDateColumn"`
	Listings      []Listing   `json:"listings"`
}

// CompleteListings returns the listings usable for aggregation, in source order.
func (d *Dataset) CompleteListings() []Listing {
	out := make([]Listing, 0, len(d.Listings))
	for _, l := range d.Listings {
		if l.Complete() {
			out = append(out, l)
		}
	}
	return out
}

// Brands returns the distinct non-empty brand values in first-seen order.
func (d *Dataset) Brands() []string {
	seen := make(map[string]bool)
	brands := []string{}
	for _, l := range d.Listings {
		b := strings.TrimSpace(l.Brand)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		brands = append(brands, b)
	}
	return brands
}

// Len returns the number of listings.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Listings)
}
