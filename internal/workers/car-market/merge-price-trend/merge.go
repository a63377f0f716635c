// internal/workers/car-market/merge-price-trend/merge.go
package mergepricetrend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/models"
)

var (
	ErrNoHistoryFiles = errors.New("NO_HISTORY_FILES")
	ErrNoTrendData    = errors.New("NO_TREND_DATA")
)

// Merge builds the trend view of one brand/model from the history collection. Market files
// give the points and the per-date median line; showroom files give flat reference lines
// across the market date range.
func Merge(history []models.Dataset, f models.HistoryFilters) (models.TrendSeries, []string, error) {
	var (
		market   []models.Dataset
		showroom []models.Dataset
		warnings []string
	)

	for _, ds := range history {
		switch {
		case ds.Kind == models.DatasetKindShowroom:
			showroom = append(showroom, ds)
		case ds.HasDateColumn:
			market = append(market, ds)
		default:
			warnings = append(warnings, fmt.Sprintf("%s has no Date column and is skipped", ds.SourceName))
		}
	}

	if len(market) == 0 {
		return models.TrendSeries{}, warnings, apperrors.NewNoHistoryFilesError(
			fmt.Errorf("%w: %d files uploaded, none with a Date column", ErrNoHistoryFiles, len(history)),
		)
	}

	match := matcher(f)

	points := []models.TrendPoint{}
	for _, ds := range market {
		before := len(points)
		for _, l := range ds.Listings {
			if !l.Dated() || !match(l) {
				continue
			}
			points = append(points, models.TrendPoint{
				Date:       *l.Date,
				Price:      l.PriceValue(),
				Kilometers: l.KilometersValue(),
				Year:       l.YearValue(),
				Source:     ds.SourceName,
			})
		}
		if len(points) == before {
			warnings = append(warnings, fmt.Sprintf("no %s %s rows in %s", f.Brand, f.Model, ds.SourceName))
		}
	}

	if len(points) == 0 {
		return models.TrendSeries{}, warnings, apperrors.NewNoTrendDataError(
			fmt.Errorf("%w: brand=%q model=%q", ErrNoTrendData, f.Brand, f.Model),
		)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	start, end := points[0].Date, points[len(points)-1].Date

	lines := []models.ShowroomLine{}
	for _, ds := range showroom {
		for _, l := range ds.Listings {
			if !match(l) {
				continue
			}
			lines = append(lines, models.ShowroomLine{
				Price:      l.PriceValue(),
				Kilometers: l.KilometersValue(),
				Year:       l.YearValue(),
				Start:      start,
				End:        end,
				Source:     ds.SourceName,
			})
		}
	}

	return models.TrendSeries{
		Points:        points,
		MedianLine:    medianLine(points),
		ShowroomLines: lines,
	}, warnings, nil
}

// matcher keeps complete listings whose brand and model contain the requested values and,
// when years are given, whose year is one of them.
func matcher(f models.HistoryFilters) func(models.Listing) bool {
	brand := strings.ToLower(strings.TrimSpace(f.Brand))
	model := strings.ToLower(strings.TrimSpace(f.Model))
	years := make(map[int]bool, len(f.Years))
	for _, y := range f.Years {
		years[y] = true
	}

	return func(l models.Listing) bool {
		if !l.Complete() {
			return false
		}
		if !strings.Contains(strings.ToLower(l.Brand), brand) || !strings.Contains(strings.ToLower(l.Model), model) {
			return false
		}
		if len(years) > 0 && !years[int(math.Round(l.YearValue()))] {
			return false
		}
		return true
	}
}

// medianLine expects points sorted by date. Points are grouped by calendar day, so snapshots
// taken at different times of one day share a median entry.
func medianLine(points []models.TrendPoint) []models.MedianPoint {
	line := []models.MedianPoint{}
	for i := 0; i < len(points); {
		day := calendarDay(points[i].Date)
		j := i
		for j < len(points) && calendarDay(points[j].Date).Equal(day) {
			j++
		}
		line = append(line, summarize(day, points[i:j]))
		i = j
	}
	return line
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func summarize(date time.Time, group []models.TrendPoint) models.MedianPoint {
	prices := make([]float64, len(group))
	var sumKm, sumYear float64
	for i, p := range group {
		prices[i] = p.Price
		sumKm += p.Kilometers
		sumYear += p.Year
	}
	n := float64(len(group))
	return models.MedianPoint{
		Date:        date,
		MedianPrice: median(prices),
		MeanKm:      sumKm / n,
		MeanYear:    sumYear / n,
	}
}

func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
