// internal/models/intent.go
package models

// Intent is the classified purpose of a question.
type Intent string

const (
	IntentConditionFilter Intent = "condition_filter"
	IntentHistoryTrend    Intent = "history_trend"
	IntentBrandMarket     Intent = "brand_market"
	IntentOverallMarket   Intent = "overall_market"
	IntentDefaultCompare  Intent = "default_compare"
)

// AllIntents lists every intent in classification precedence order.
var AllIntents = []Intent{
	IntentConditionFilter,
	IntentHistoryTrend,
	IntentBrandMarket,
	IntentOverallMarket,
	IntentDefaultCompare,
}

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// Query is a submitted question. It is never modified after submission.
type Query struct {
	ID      string `json:"id"`
	RawText string `json:"rawText"`
}
