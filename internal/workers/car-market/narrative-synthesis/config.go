// internal/workers/car-market/narrative-synthesis/config.go
package narrativesynthesis

import "time"

type Config struct {
	GenAIBaseURL string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	MaxTokens    int
	Temperature  float64
	// PromptRowLimit caps the condition-filter listings embedded in a prompt; 0 means no cap.
	// Trend points are always sent in full.
	PromptRowLimit int
}

func LoadConfig() *Config {
	return &Config{
		GenAIBaseURL:   "https://api.openai.com/v1",
		Model:          "gpt-4",
		Timeout:        60 * time.Second,
		MaxRetries:     2,
		MaxTokens:      1000,
		Temperature:    0.3,
		PromptRowLimit: 200,
	}
}
