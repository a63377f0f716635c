// internal/workers/car-market/aggregate-listings/engine.go
package aggregatelistings

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"car-market-assistant/internal/models"
)

// Engine selects rows for a filter variant and summarizes them. It only sees complete
// listings; rows missing a required field never reach a table.
type Engine struct {
	sampleLimit   int
	deterministic bool
	seed          uint64
}

func NewEngine(cfg *Config) *Engine {
	limit := cfg.SampleLimit
	if limit <= 0 {
		limit = 100
	}
	return &Engine{
		sampleLimit:   limit,
		deterministic: cfg.Deterministic,
		seed:          uint64(cfg.SampleSeed),
	}
}

// Aggregate never fails: an empty selection yields empty tables.
func (e *Engine) Aggregate(ds models.Dataset, filters models.Filters) (models.AggregationResult, []string) {
	rows := ds.CompleteListings()
	result := models.AggregationResult{Intent: filters.Intent()}
	var warnings []string

	switch f := filters.(type) {
	case models.ConditionFilters:
		result.Rows = selectCondition(rows, f)

	case models.BrandMarketFilters:
		if strings.TrimSpace(f.Brand) == "" {
			result.Rows = e.sample(rows)
			result.Sampled = true
			warnings = append(warnings, fmt.Sprintf("no brand token found; using a sample of %d listings", len(result.Rows)))
		} else {
			result.Rows = filterRows(rows, func(l models.Listing) bool {
				return containsFold(l.Brand, f.Brand)
			})
		}
		result.BrandTable = brandTable(result.Rows)
		result.ModelTable = modelTable(result.Rows)

	case models.CompareFilters:
		if len(f.Brands) == 0 {
			result.Rows = e.sample(rows)
			result.Sampled = true
			warnings = append(warnings, fmt.Sprintf("no known brand mentioned; using a sample of %d listings", len(result.Rows)))
		} else {
			result.Rows = filterRows(rows, func(l models.Listing) bool {
				return inFold(l.Brand, f.Brands)
			})
		}
		result.BrandTable = brandTable(result.Rows)
		result.ModelTable = modelTable(result.Rows)

	case models.OverallFilters:
		result.Rows = rows
		table := brandTable(rows)
		result.BrandTable = append(table, overallRow(rows, table))

	case models.HistoryFilters:
		warnings = append(warnings, "history questions are answered by the trend merger")
	}

	if result.Rows == nil {
		result.Rows = []models.Listing{}
	}
	return result, warnings
}

func selectCondition(rows []models.Listing, f models.ConditionFilters) []models.Listing {
	return filterRows(rows, func(l models.Listing) bool {
		price := l.PriceValue()
		if f.PriceMin != nil && price < *f.PriceMin {
			return false
		}
		if f.PriceMax != nil && price > *f.PriceMax {
			return false
		}
		if f.KmLimit != nil && l.KilometersValue() > *f.KmLimit {
			return false
		}
		if len(f.Brands) > 0 && !inFold(l.Brand, f.Brands) {
			return false
		}
		return true
	})
}

// sample picks up to sampleLimit rows at random and keeps them in source order.
func (e *Engine) sample(rows []models.Listing) []models.Listing {
	if len(rows) <= e.sampleLimit {
		return rows
	}

	var perm []int
	if e.deterministic {
		perm = rand.New(rand.NewPCG(e.seed, e.seed)).Perm(len(rows))
	} else {
		perm = rand.Perm(len(rows))
	}

	picked := perm[:e.sampleLimit]
	sort.Ints(picked)

	out := make([]models.Listing, 0, len(picked))
	for _, i := range picked {
		out = append(out, rows[i])
	}
	return out
}

func filterRows(rows []models.Listing, keep func(models.Listing) bool) []models.Listing {
	out := []models.Listing{}
	for _, l := range rows {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

func inFold(s string, set []string) bool {
	s = strings.TrimSpace(s)
	for _, v := range set {
		if strings.EqualFold(s, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

type stats struct {
	count                    int
	sumPrice, sumYear, sumKm float64
	minPrice, maxPrice       float64
}

func (s *stats) add(l models.Listing) {
	p := l.PriceValue()
	if s.count == 0 || p < s.minPrice {
		s.minPrice = p
	}
	if s.count == 0 || p > s.maxPrice {
		s.maxPrice = p
	}
	s.count++
	s.sumPrice += p
	s.sumYear += l.YearValue()
	s.sumKm += l.KilometersValue()
}

func (s *stats) avg(sum float64) float64 {
	if s.count == 0 {
		return 0
	}
	return sum / float64(s.count)
}

// brandTable groups by brand in first-seen order. ModelCount is the number of distinct models.
func brandTable(rows []models.Listing) []models.BrandSummary {
	type group struct {
		stats
		modelSet map[string]bool
	}
	var order []string
	groups := make(map[string]*group)

	for _, l := range rows {
		g, ok := groups[l.Brand]
		if !ok {
			g = &group{modelSet: make(map[string]bool)}
			groups[l.Brand] = g
			order = append(order, l.Brand)
		}
		g.add(l)
		g.modelSet[l.Model] = true
	}

	table := make([]models.BrandSummary, 0, len(order))
	for _, brand := range order {
		g := groups[brand]
		table = append(table, models.BrandSummary{
			Brand:      brand,
			ModelCount: len(g.modelSet),
			AvgPrice:   g.avg(g.sumPrice),
			MinPrice:   g.minPrice,
			MaxPrice:   g.maxPrice,
			AvgYear:    g.avg(g.sumYear),
			AvgKm:      g.avg(g.sumKm),
		})
	}
	return table
}

// modelTable groups by (brand, model) in first-seen order.
func modelTable(rows []models.Listing) []models.ModelSummary {
	type key struct{ brand, model string }
	var order []key
	groups := make(map[key]*stats)

	for _, l := range rows {
		k := key{l.Brand, l.Model}
		s, ok := groups[k]
		if !ok {
			s = &stats{}
			groups[k] = s
			order = append(order, k)
		}
		s.add(l)
	}

	table := make([]models.ModelSummary, 0, len(order))
	for _, k := range order {
		s := groups[k]
		table = append(table, models.ModelSummary{
			Brand:    k.brand,
			Model:    k.model,
			AvgPrice: s.avg(s.sumPrice),
			AvgYear:  s.avg(s.sumYear),
			AvgKm:    s.avg(s.sumKm),
			Count:    s.count,
		})
	}
	return table
}

// overallRow sums the brand rows' ModelCount, so a model name shared by two brands counts
// twice. Price, year and km stats cover every row.
func overallRow(rows []models.Listing, brands []models.BrandSummary) models.BrandSummary {
	var all stats
	for _, l := range rows {
		all.add(l)
	}
	modelCount := 0
	for _, b := range brands {
		modelCount += b.ModelCount
	}
	return models.BrandSummary{
		Brand:      models.OverallBrand,
		ModelCount: modelCount,
		AvgPrice:   all.avg(all.sumPrice),
		MinPrice:   all.minPrice,
		MaxPrice:   all.maxPrice,
		AvgYear:    all.avg(all.sumYear),
		AvgKm:      all.avg(all.sumKm),
	}
}
