// internal/workers/car-market/classify-question/models.go
package classifyquestion

import "car-market-assistant/internal/models"

type Input struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

type Output struct {
	Intent      models.Intent `json:"intent"`
	MatchedRule string        `json:"matchedRule"`
}
