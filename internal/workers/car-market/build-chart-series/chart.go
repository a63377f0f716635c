// internal/workers/car-market/build-chart-series/chart.go
package buildchartseries

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-market-assistant/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

var ErrChartValidationFailed = errors.New("CHART_VALIDATION_FAILED")

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

const dateLayout = "2006-01-02"

// Build lays the trend series out as plottable points.
func Build(trend models.TrendSeries, brand, model string) Chart {
	chart := Chart{
		Title: title(brand, model),
		Brand: brand,
		Model: model,
		Series: Series{
			Points:        make([]ChartPoint, 0, len(trend.Points)),
			MedianLine:    make([]ChartPoint, 0, len(trend.MedianLine)),
			ShowroomLines: make([]ShowroomSeries, 0, len(trend.ShowroomLines)),
		},
	}

	for _, p := range trend.Points {
		chart.Series.Points = append(chart.Series.Points, ChartPoint{
			Date:       formatDate(p.Date),
			Price:      p.Price,
			Kilometers: p.Kilometers,
			Year:       p.Year,
		})
	}
	for _, m := range trend.MedianLine {
		chart.Series.MedianLine = append(chart.Series.MedianLine, ChartPoint{
			Date:       formatDate(m.Date),
			Price:      m.MedianPrice,
			Kilometers: m.MeanKm,
			Year:       m.MeanYear,
		})
	}
	for _, s := range trend.ShowroomLines {
		chart.Series.ShowroomLines = append(chart.Series.ShowroomLines, ShowroomSeries{
			Source: s.Source,
			Points: []ChartPoint{
				{Date: formatDate(s.Start), Price: s.Price, Kilometers: s.Kilometers, Year: s.Year},
				{Date: formatDate(s.End), Price: s.Price, Kilometers: s.Kilometers, Year: s.Year},
			},
		})
	}

	return chart
}

// Validate checks the chart document against the embedded schema.
func Validate(chart Chart) error {
	doc, err := json.Marshal(chart)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChartValidationFailed, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: validation error: %v", ErrChartValidationFailed, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrChartValidationFailed, strings.Join(errs, "; "))
	}

	return nil
}

func title(brand, model string) string {
	name := strings.TrimSpace(strings.TrimSpace(brand) + " " + strings.TrimSpace(model))
	if name == "" {
		return "Price trend"
	}
	return name + " price trend"
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
