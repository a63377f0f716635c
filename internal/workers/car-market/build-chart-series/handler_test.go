// internal/workers/car-market/build-chart-series/handler_test.go
package buildchartseries

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func trend() models.TrendSeries {
	return models.TrendSeries{
		Points: []models.TrendPoint{
			{Date: day(1), Price: 60000, Kilometers: 50000, Year: 2019, Source: "jan.csv"},
			{Date: day(1), Price: 70000, Kilometers: 30000, Year: 2021, Source: "jan.csv"},
			{Date: day(15), Price: 62000, Kilometers: 40000, Year: 2020, Source: "feb.csv"},
		},
		MedianLine: []models.MedianPoint{
			{Date: day(1), MedianPrice: 65000, MeanKm: 40000, MeanYear: 2020},
			{Date: day(15), MedianPrice: 62000, MeanKm: 40000, MeanYear: 2020},
		},
		ShowroomLines: []models.ShowroomLine{
			{Price: 95000, Kilometers: 0, Year: 2024, Start: day(1), End: day(15), Source: "toyota_showroom.csv"},
		},
	}
}

func TestBuild(t *testing.T) {
	chart := Build(trend(), "toyota", "camry")

	assert.Equal(t, "toyota camry price trend", chart.Title)
	require.Len(t, chart.Series.Points, 3)
	assert.Equal(t, ChartPoint{Date: "2024-01-01", Price: 60000, Kilometers: 50000, Year: 2019}, chart.Series.Points[0])

	require.Len(t, chart.Series.MedianLine, 2)
	assert.Equal(t, 65000.0, chart.Series.MedianLine[0].Price)

	require.Len(t, chart.Series.ShowroomLines, 1)
	line := chart.Series.ShowroomLines[0]
	assert.Equal(t, "toyota_showroom.csv", line.Source)
	require.Len(t, line.Points, 2)
	assert.Equal(t, "2024-01-01", line.Points[0].Date)
	assert.Equal(t, "2024-01-15", line.Points[1].Date)
	assert.Equal(t, line.Points[0].Price, line.Points[1].Price)

	require.NoError(t, Validate(chart))
}

func TestBuild_FieldNames(t *testing.T) {
	doc, err := json.Marshal(Build(trend(), "toyota", "camry"))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &decoded))
	series := decoded["series"].(map[string]interface{})
	for _, key := range []string{"points", "medianLine", "showroomLines"} {
		assert.Contains(t, series, key)
	}
	point := series["points"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"Date", "Price", "Kilometers", "Year"} {
		assert.Contains(t, point, key)
	}
}

func TestBuild_DefaultTitle(t *testing.T) {
	assert.Equal(t, "Price trend", Build(trend(), "", " ").Title)
}

func TestValidate_RejectsEmptySeries(t *testing.T) {
	err := Validate(Build(models.TrendSeries{}, "toyota", "camry"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChartValidationFailed)
}

func TestValidate_RejectsNegativePrice(t *testing.T) {
	series := trend()
	series.Points[0].Price = -1

	err := Validate(Build(series, "toyota", "camry"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Price")
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{SessionID: "s-1", Trend: trend(), Brand: "toyota", ModelName: "camry"})
	require.NoError(t, err)
	assert.Len(t, out.Chart.Series.Points, 3)
}

func TestHandler_Execute_ValidationFailure(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{SessionID: "s-1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeChartValidationFailed, apperrors.CodeOf(err))
}
