// internal/workers/car-market/narrative-synthesis/models.go
package narrativesynthesis

import "car-market-assistant/internal/models"

type Input struct {
	SessionID   string                    `json:"sessionId"`
	Question    string                    `json:"question"`
	Intent      models.Intent             `json:"intent"`
	Aggregation *models.AggregationResult `json:"aggregation,omitempty"`
	Trend       *models.TrendSeries       `json:"trend,omitempty"`
	Brand       string                    `json:"brand,omitempty"`
	ModelName   string                    `json:"modelName,omitempty"`
}

type Output struct {
	Narrative  string `json:"narrative"`
	Model      string `json:"model"`
	PromptRows int    `json:"promptRows"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
