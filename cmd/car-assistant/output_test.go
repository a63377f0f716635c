// cmd/car-assistant/output_test.go
package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"car-market-assistant/internal/assistant"
	"car-market-assistant/internal/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func overallAnswer() *assistant.Answer {
	return &assistant.Answer{
		QueryID:     "q-1",
		Question:    "overall market",
		Intent:      models.IntentOverallMarket,
		MatchedRule: "overall market",
		Filters:     models.OverallFilters{},
		Aggregation: &models.AggregationResult{
			Intent: models.IntentOverallMarket,
			BrandTable: []models.BrandSummary{
				{Brand: "Toyota", ModelCount: 2, AvgPrice: 58500, MinPrice: 52000, MaxPrice: 65000, AvgYear: 2020.5, AvgKm: 35000},
				{Brand: models.OverallBrand, ModelCount: 2, AvgPrice: 58500, MinPrice: 52000, MaxPrice: 65000, AvgYear: 2020.5, AvgKm: 35000},
			},
		},
		Narrative: "Toyota dominates.",
	}
}

func TestRender_Text(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, render(&buf, overallAnswer(), formatText))

	out := buf.String()
	assert.Contains(t, out, "Intent: overall_market (rule: overall market)")
	assert.Contains(t, out, "Overall")
	assert.Contains(t, out, "58500.00")
	assert.Contains(t, out, "Toyota dominates.")
}

func TestRender_TextTrend(t *testing.T) {
	color.NoColor = true
	d := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	answer := &assistant.Answer{
		Intent: models.IntentHistoryTrend,
		Trend: &models.TrendSeries{
			Points:        []models.TrendPoint{{Date: d, Price: 60000}},
			MedianLine:    []models.MedianPoint{{Date: d, MedianPrice: 60000, MeanKm: 50000, MeanYear: 2019}},
			ShowroomLines: []models.ShowroomLine{{Price: 95000, Year: 2024, Start: d, End: d, Source: "toyota_showroom.csv"}},
		},
		Warnings: []string{"skipped undated.csv"},
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, answer, formatText))
	out := buf.String()
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "toyota_showroom.csv")
	assert.Contains(t, out, "skipped undated.csv")
	assert.Contains(t, out, "1 market listings across 1 dates")
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, overallAnswer(), formatJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "overall_market", decoded["intent"])
	assert.Equal(t, "Toyota dominates.", decoded["narrative"])
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, overallAnswer(), formatYAML))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "overall_market", decoded["intent"])
	assert.Equal(t, "q-1", decoded["queryId"])
}

func TestValidFormat(t *testing.T) {
	assert.True(t, validFormat("text"))
	assert.True(t, validFormat("json"))
	assert.True(t, validFormat("yaml"))
	assert.False(t, validFormat("xml"))
}

func TestOptional(t *testing.T) {
	assert.Equal(t, "-", optional(nil))
	assert.Equal(t, "12500", optional(models.Float(12500)))
}
