// internal/workers/car-market/classify-question/rules.go
package classifyquestion

import (
	"strings"

	"car-market-assistant/internal/models"
)

// Rule maps a lowercased question to an intent when Match holds.
type Rule struct {
	Name   string
	Match  func(question string) bool
	Intent models.Intent
}

var overallKeywords = []string{
	"overall", "market", "all brands", "general trend", "whole market", "total",
	"整体", "市场", "所有品牌", "总体趋势", "整个市场", "总计",
}

// Rules are evaluated in order; the first match wins. A question mentioning both
// "condition" and "market" is therefore a condition question.
var Rules = []Rule{
	{Name: "condition", Match: containsAny("condition"), Intent: models.IntentConditionFilter},
	{Name: "history line", Match: containsAny("history line"), Intent: models.IntentHistoryTrend},
	{Name: "brand market", Match: containsAny("brand market"), Intent: models.IntentBrandMarket},
	{Name: "overall market", Match: containsAny(overallKeywords...), Intent: models.IntentOverallMarket},
}

const fallbackRule = "default compare"

func containsAny(keywords ...string) func(string) bool {
	return func(question string) bool {
		for _, kw := range keywords {
			if strings.Contains(question, kw) {
				return true
			}
		}
		return false
	}
}

// Classify returns the intent of question and the name of the rule that decided it.
func Classify(question string) (models.Intent, string) {
	q := strings.ToLower(question)
	for _, rule := range Rules {
		if rule.Match(q) {
			return rule.Intent, rule.Name
		}
	}
	return models.IntentDefaultCompare, fallbackRule
}
