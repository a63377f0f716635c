// internal/workers/car-market/extract-filters/extract.go
package extractfilters

import (
	"errors"
	"fmt"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/models"
)

var ErrHistoryTokensMissing = errors.New("HISTORY_TOKENS_MISSING")

// Strategy extracts the filters of one intent. brands is the vocabulary of the current dataset.
type Strategy func(question string, brands []string) (models.Filters, error)

// Strategies holds one extractor per intent.
var Strategies = map[models.Intent]Strategy{
	models.IntentConditionFilter: extractCondition,
	models.IntentHistoryTrend:    extractHistory,
	models.IntentBrandMarket:     extractBrandMarket,
	models.IntentOverallMarket:   extractOverall,
	models.IntentDefaultCompare:  extractCompare,
}

// Extract runs the strategy registered for intent.
func Extract(intent models.Intent, question string, brands []string) (models.Filters, error) {
	strategy, ok := Strategies[intent]
	if !ok {
		return nil, apperrors.NewInvalidJobInputError(fmt.Errorf("%w: %q", models.ErrUnknownFilterIntent, intent))
	}
	return strategy(question, brands)
}

// NeedsVocabulary reports whether the intent scans the dataset's brand names.
func NeedsVocabulary(intent models.Intent) bool {
	return intent == models.IntentConditionFilter || intent == models.IntentDefaultCompare
}

func extractCondition(question string, brands []string) (models.Filters, error) {
	lower, upper := priceRange(question)
	return models.ConditionFilters{
		PriceMin: lower,
		PriceMax: upper,
		KmLimit:  kmLimit(question),
		Brands:   MatchWords(question, brands),
	}, nil
}

func extractHistory(question string, _ []string) (models.Filters, error) {
	brand := tokenValue(brandToken, question)
	model := tokenValue(modelToken, question)
	if brand == "" || model == "" {
		return nil, apperrors.NewHistoryTokensMissingError(
			fmt.Errorf("%w: brand=%q model=%q", ErrHistoryTokensMissing, brand, model),
		)
	}
	return models.HistoryFilters{
		Brand: brand,
		Model: model,
		Years: yearSet(question),
	}, nil
}

func extractBrandMarket(question string, _ []string) (models.Filters, error) {
	return models.BrandMarketFilters{Brand: tokenValue(brandToken, question)}, nil
}

func extractOverall(string, []string) (models.Filters, error) {
	return models.OverallFilters{}, nil
}

func extractCompare(question string, brands []string) (models.Filters, error) {
	return models.CompareFilters{Brands: MatchWords(question, brands)}, nil
}
