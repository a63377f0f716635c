// internal/workers/car-market/extract-filters/handler_test.go
package extractfilters

import (
	"context"
	"testing"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/models"
	"car-market-assistant/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestSessions(t *testing.T, brands ...string) (*session.Manager, string) {
	t.Helper()
	manager := session.NewManager(nil, logger.NewTestLogger(t))
	id, reg := manager.Create()

	ds := models.Dataset{SourceName: "listings.csv", Kind: models.DatasetKindMarket}
	for _, b := range brands {
		ds.Listings = append(ds.Listings, models.Listing{Brand: b, Model: "X"})
	}
	reg.Load(ds)
	return manager, id
}

func TestExtract_ConditionFilter(t *testing.T) {
	tests := []struct {
		name     string
		question string
		brands   []string
		priceMin *float64
		priceMax *float64
		kmLimit  *float64
		matched  []string
	}{
		{
			name:     "range and odometer",
			question: "condition under 50000 to 80000, under 100000 km",
			priceMin: models.Float(50000),
			priceMax: models.Float(80000),
			kmLimit:  models.Float(100000),
			matched:  []string{},
		},
		{
			name:     "lone number is a lower bound",
			question: "condition under $60,000",
			priceMin: models.Float(60000),
			matched:  []string{},
		},
		{
			name:     "dollar range with dash",
			question: "Condition $40,000-$55,000 for Toyota",
			brands:   []string{"Toyota", "Nissan"},
			priceMin: models.Float(40000),
			priceMax: models.Float(55000),
			matched:  []string{"Toyota"},
		},
		{
			name:     "km number is never a price",
			question: "condition less than 80,000 kilometers",
			kmLimit:  models.Float(80000),
			matched:  []string{},
		},
		{
			name:     "four-digit odometer is not a group number",
			question: "condition under 1000 km",
			matched:  []string{},
		},
		{
			name:     "single-digit leading group is ignored",
			question: "condition under 1,000 km",
			matched:  []string{},
		},
		{
			name:     "two-digit leading group",
			question: "condition under 15000 km",
			kmLimit:  models.Float(15000),
			matched:  []string{},
		},
		{
			name:     "odometer at start of text",
			question: "80,000km condition",
			kmLimit:  models.Float(80000),
			matched:  []string{},
		},
		{
			name:     "no constraints",
			question: "condition please",
			matched:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Extract(models.IntentConditionFilter, tt.question, tt.brands)
			require.NoError(t, err)

			cond, ok := f.(models.ConditionFilters)
			require.True(t, ok)
			assert.Equal(t, tt.priceMin, cond.PriceMin)
			assert.Equal(t, tt.priceMax, cond.PriceMax)
			assert.Equal(t, tt.kmLimit, cond.KmLimit)
			assert.Equal(t, tt.matched, cond.Brands)
		})
	}
}

func TestExtract_HistoryTrend(t *testing.T) {
	f, err := Extract(models.IntentHistoryTrend, `history line brand-"Land Rover" model-"Range Rover" year-"2019, 2020"`, nil)
	require.NoError(t, err)
	assert.Equal(t, models.HistoryFilters{
		Brand: "Land Rover",
		Model: "Range Rover",
		Years: []int{2019, 2020},
	}, f)

	f, err = Extract(models.IntentHistoryTrend, "history line brand-Toyota model-Land-Cruiser", nil)
	require.NoError(t, err)
	assert.Equal(t, models.HistoryFilters{Brand: "Toyota", Model: "Land-Cruiser"}, f)
}

func TestExtract_HistoryTrend_MissingTokens(t *testing.T) {
	for _, q := range []string{
		`history line brand-"Toyota"`,
		`history line model-"Camry"`,
		"history line for camry",
	} {
		_, err := Extract(models.IntentHistoryTrend, q, nil)
		require.Error(t, err, q)
		assert.ErrorIs(t, err, ErrHistoryTokensMissing)
		assert.Equal(t, apperrors.ErrCodeHistoryTokensMissing, apperrors.CodeOf(err))
	}
}

func TestExtract_BrandMarket(t *testing.T) {
	f, err := Extract(models.IntentBrandMarket, `brand market brand-"Mercedes-Benz"`, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BrandMarketFilters{Brand: "Mercedes-Benz"}, f)

	f, err = Extract(models.IntentBrandMarket, "brand market overview", nil)
	require.NoError(t, err)
	assert.Equal(t, models.BrandMarketFilters{}, f)
}

func TestExtract_DefaultCompare_WholeWord(t *testing.T) {
	f, err := Extract(models.IntentDefaultCompare, "How does BMW compare", []string{"BMW", "BM"})
	require.NoError(t, err)
	assert.Equal(t, models.CompareFilters{Brands: []string{"BMW"}}, f)

	f, err = Extract(models.IntentDefaultCompare, "kia vs hyundai, or KIA again", []string{"Hyundai", "Kia", "Genesis"})
	require.NoError(t, err)
	assert.Equal(t, models.CompareFilters{Brands: []string{"Hyundai", "Kia"}}, f)
}

func TestExtract_UnknownIntent(t *testing.T) {
	_, err := Extract(models.Intent("weather"), "anything", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownFilterIntent)
}

func TestMatchWords(t *testing.T) {
	tests := []struct {
		text       string
		vocabulary []string
		expected   []string
	}{
		{"BMW_X5 is nice", []string{"BMW"}, []string{}},
		{"(bmw)", []string{"BMW"}, []string{"BMW"}},
		{"Citroën or Škoda?", []string{"Škoda", "Citroën", "Seat"}, []string{"Škoda", "Citroën"}},
		{"land rover prices", []string{"Land Rover", "Rover"}, []string{"Land Rover", "Rover"}},
		{"minimal", []string{"mini"}, []string{}},
		{"mini, mini", []string{"Mini", "MINI"}, []string{"Mini"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchWords(tt.text, tt.vocabulary))
		})
	}
}

func TestHandler_Execute_UsesSessionVocabulary(t *testing.T) {
	sessions, id := createTestSessions(t, "BMW", "BM", "Audi")
	handler := NewHandler(createTestConfig(), sessions, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: id,
		Question:  "How does BMW compare with audi",
		Intent:    models.IntentDefaultCompare,
	})
	require.NoError(t, err)
	assert.Equal(t, models.IntentDefaultCompare, output.Filters.Intent)

	decoded, err := output.Filters.Decode()
	require.NoError(t, err)
	assert.Equal(t, models.CompareFilters{Brands: []string{"BMW", "Audi"}}, decoded)
}

func TestHandler_Execute_UnknownSession(t *testing.T) {
	sessions, _ := createTestSessions(t)
	handler := NewHandler(createTestConfig(), sessions, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		SessionID: "missing",
		Question:  "condition under 20000",
		Intent:    models.IntentConditionFilter,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.CodeOf(err))
}

func TestHandler_Execute_HistoryNeedsNoSession(t *testing.T) {
	sessions, _ := createTestSessions(t)
	handler := NewHandler(createTestConfig(), sessions, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "not-needed",
		Question:  `history line brand-"Toyota" model-"Camry"`,
		Intent:    models.IntentHistoryTrend,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"brand":"Toyota","model":"Camry"}`, string(output.Filters.Payload))
}
