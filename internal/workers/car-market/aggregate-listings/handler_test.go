// internal/workers/car-market/aggregate-listings/handler_test.go
package aggregatelistings

import (
	"context"
	"fmt"
	"testing"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/models"
	"car-market-assistant/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Deterministic = true
	cfg.SampleSeed = 7
	return cfg
}

func listing(brand, model string, price, km, year float64) models.Listing {
	return models.Listing{
		Brand:      brand,
		Model:      model,
		Price:      models.Float(price),
		Kilometers: models.Float(km),
		Year:       models.Float(year),
	}
}

func dataset(rows ...models.Listing) models.Dataset {
	return models.Dataset{SourceName: "listings.csv", Kind: models.DatasetKindMarket, Listings: rows}
}

func TestEngine_ConditionFilter_AndsConstraints(t *testing.T) {
	ds := dataset(
		listing("Toyota", "Camry", 45000, 80000, 2018),
		listing("Toyota", "Corolla", 90000, 150000, 2019),
		listing("Nissan", "Altima", 60000, 60000, 2020),
	)
	filters := models.ConditionFilters{
		PriceMin: models.Float(50000),
		PriceMax: models.Float(80000),
		KmLimit:  models.Float(100000),
	}

	result, warnings := NewEngine(createTestConfig()).Aggregate(ds, filters)
	assert.Empty(t, warnings)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 60000.0, result.Rows[0].PriceValue())
	assert.Equal(t, 60000.0, result.Rows[0].KilometersValue())
	assert.Nil(t, result.BrandTable)
	assert.Nil(t, result.ModelTable)
}

func TestEngine_ConditionFilter_BoundsInclusiveAndBrands(t *testing.T) {
	ds := dataset(
		listing("Toyota", "Camry", 50000, 100000, 2018),
		listing("Nissan", "Altima", 80000, 10, 2020),
		listing("toyota", "Yaris", 70000, 100001, 2021),
	)
	filters := models.ConditionFilters{
		PriceMin: models.Float(50000),
		PriceMax: models.Float(80000),
		KmLimit:  models.Float(100000),
		Brands:   []string{"TOYOTA"},
	}

	result, _ := NewEngine(createTestConfig()).Aggregate(ds, filters)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Camry", result.Rows[0].Model)
}

func TestEngine_OverallMarket_DoubleCountsSharedModels(t *testing.T) {
	ds := dataset(
		listing("Toyota", "Camry", 60000, 50000, 2019),
		listing("Toyota", "Land Cruiser", 200000, 30000, 2021),
		listing("Nissan", "Patrol", 180000, 40000, 2020),
		listing("Nissan", "Camry", 40000, 90000, 2015),
		listing("Toyota", "Camry", 70000, 20000, 2021),
	)

	result, _ := NewEngine(createTestConfig()).Aggregate(ds, models.OverallFilters{})
	require.Len(t, result.BrandTable, 3)

	assert.Equal(t, "Toyota", result.BrandTable[0].Brand)
	assert.Equal(t, 2, result.BrandTable[0].ModelCount)
	assert.Equal(t, 60000.0, result.BrandTable[0].MinPrice)
	assert.Equal(t, 200000.0, result.BrandTable[0].MaxPrice)
	assert.InDelta(t, 110000.0, result.BrandTable[0].AvgPrice, 1e-9)

	overall := result.BrandTable[2]
	assert.Equal(t, models.OverallBrand, overall.Brand)
	assert.Equal(t, result.BrandTable[0].ModelCount+result.BrandTable[1].ModelCount, overall.ModelCount)
	assert.Equal(t, 4, overall.ModelCount)
	assert.Equal(t, 40000.0, overall.MinPrice)
	assert.Equal(t, 200000.0, overall.MaxPrice)
	assert.InDelta(t, 110000.0, overall.AvgPrice, 1e-9)
	assert.InDelta(t, 46000.0, overall.AvgKm, 1e-9)
	assert.Len(t, result.Rows, 5)
}

func TestEngine_OverallMarket_Empty(t *testing.T) {
	result, _ := NewEngine(createTestConfig()).Aggregate(dataset(), models.OverallFilters{})
	require.Len(t, result.BrandTable, 1)
	assert.Equal(t, models.OverallBrand, result.BrandTable[0].Brand)
	assert.Equal(t, 0, result.BrandTable[0].ModelCount)
	assert.Equal(t, 0.0, result.BrandTable[0].AvgPrice)
	assert.Empty(t, result.Rows)
}

func TestEngine_SkipsIncompleteListings(t *testing.T) {
	incomplete := listing("Kia", "Rio", 30000, 10000, 2020)
	incomplete.Year = nil

	result, _ := NewEngine(createTestConfig()).Aggregate(
		dataset(incomplete, listing("Kia", "Sportage", 50000, 20000, 2021)),
		models.OverallFilters{},
	)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.BrandTable[0].ModelCount)
}

func TestEngine_BrandMarket(t *testing.T) {
	ds := dataset(
		listing("Mercedes-Benz", "C200", 120000, 30000, 2020),
		listing("Mercedes-Benz", "E300", 180000, 20000, 2021),
		listing("Mercedes-Benz", "C200", 110000, 40000, 2019),
		listing("BMW", "X5", 250000, 15000, 2021),
	)

	result, warnings := NewEngine(createTestConfig()).Aggregate(ds, models.BrandMarketFilters{Brand: "mercedes"})
	assert.Empty(t, warnings)
	assert.False(t, result.Sampled)
	assert.Len(t, result.Rows, 3)
	require.Len(t, result.ModelTable, 2)
	assert.Equal(t, "C200", result.ModelTable[0].Model)
	assert.Equal(t, 2, result.ModelTable[0].Count)
	assert.InDelta(t, 115000.0, result.ModelTable[0].AvgPrice, 1e-9)
	require.Len(t, result.BrandTable, 1)
	assert.Equal(t, 2, result.BrandTable[0].ModelCount)
}

func TestEngine_DefaultCompare(t *testing.T) {
	ds := dataset(
		listing("BM", "One", 10000, 1000, 2010),
		listing("BMW", "X5", 250000, 15000, 2021),
		listing("Audi", "Q7", 220000, 25000, 2020),
	)

	result, _ := NewEngine(createTestConfig()).Aggregate(ds, models.CompareFilters{Brands: []string{"BMW"}})
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "BMW", result.Rows[0].Brand)
	assert.Len(t, result.BrandTable, 1)
}

func TestEngine_SampleFallback(t *testing.T) {
	var rows []models.Listing
	for i := 0; i < 250; i++ {
		rows = append(rows, listing(fmt.Sprintf("Brand%03d", i), "M", float64(1000+i), 100, 2020))
	}
	ds := dataset(rows...)
	engine := NewEngine(createTestConfig())

	first, warnings := engine.Aggregate(ds, models.CompareFilters{})
	require.Len(t, warnings, 1)
	assert.True(t, first.Sampled)
	require.Len(t, first.Rows, 100)

	for i := 1; i < len(first.Rows); i++ {
		assert.Less(t, first.Rows[i-1].PriceValue(), first.Rows[i].PriceValue(), "sample keeps source order")
	}

	second, _ := engine.Aggregate(ds, models.BrandMarketFilters{})
	assert.Equal(t, first.Rows, second.Rows, "fixed seed repeats the sample")
}

func TestEngine_SampleFallback_SmallDataset(t *testing.T) {
	ds := dataset(listing("Kia", "Rio", 30000, 10000, 2020))
	result, warnings := NewEngine(createTestConfig()).Aggregate(ds, models.CompareFilters{})
	assert.Len(t, result.Rows, 1)
	assert.True(t, result.Sampled)
	assert.Len(t, warnings, 1)
}

func TestEngine_EmptySelectionIsNotAnError(t *testing.T) {
	ds := dataset(listing("Kia", "Rio", 30000, 10000, 2020))
	result, _ := NewEngine(createTestConfig()).Aggregate(ds, models.BrandMarketFilters{Brand: "Ferrari"})
	assert.NotNil(t, result.Rows)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.BrandTable)
}

func TestHandler_Execute(t *testing.T) {
	sessions := session.NewManager(nil, logger.NewTestLogger(t))
	id, reg := sessions.Create()
	reg.Load(dataset(
		listing("Toyota", "Camry", 60000, 50000, 2019),
		listing("Nissan", "Patrol", 180000, 40000, 2020),
	))

	handler := NewHandler(createTestConfig(), sessions, logger.NewTestLogger(t))
	envelope, err := models.EncodeFilters(models.OverallFilters{})
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{SessionID: id, Filters: envelope})
	require.NoError(t, err)
	assert.Equal(t, models.IntentOverallMarket, output.Aggregation.Intent)
	assert.Len(t, output.Aggregation.BrandTable, 3)
}

func TestHandler_Execute_Errors(t *testing.T) {
	sessions := session.NewManager(nil, logger.NewTestLogger(t))
	id, _ := sessions.Create()
	handler := NewHandler(createTestConfig(), sessions, logger.NewTestLogger(t))

	overall, _ := models.EncodeFilters(models.OverallFilters{})
	history, _ := models.EncodeFilters(models.HistoryFilters{Brand: "Toyota", Model: "Camry"})

	tests := []struct {
		name     string
		input    *Input
		expected apperrors.ErrorCode
	}{
		{"no dataset", &Input{SessionID: id, Filters: overall}, apperrors.ErrCodeNoDataset},
		{"unknown session", &Input{SessionID: "nope", Filters: overall}, apperrors.ErrCodeSessionNotFound},
		{"history filters", &Input{SessionID: id, Filters: history}, apperrors.ErrCodeInvalidJobInput},
		{"unknown intent", &Input{SessionID: id, Filters: models.FilterEnvelope{Intent: "weather"}}, apperrors.ErrCodeInvalidJobInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.expected, apperrors.CodeOf(err))
		})
	}
}
