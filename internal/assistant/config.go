// internal/assistant/config.go
package assistant

import (
	"time"

	"car-market-assistant/internal/common/config"
	aggregatelistings "car-market-assistant/internal/workers/car-market/aggregate-listings"
	buildchartseries "car-market-assistant/internal/workers/car-market/build-chart-series"
	classifyquestion "car-market-assistant/internal/workers/car-market/classify-question"
	extractfilters "car-market-assistant/internal/workers/car-market/extract-filters"
	mergepricetrend "car-market-assistant/internal/workers/car-market/merge-price-trend"
	narrativesynthesis "car-market-assistant/internal/workers/car-market/narrative-synthesis"
)

// StageConfigs holds the per-stage settings shared by the CLI pipeline and the worker manager.
type StageConfigs struct {
	Classify  *classifyquestion.Config
	Extract   *extractfilters.Config
	Aggregate *aggregatelistings.Config
	Merge     *mergepricetrend.Config
	Narrative *narrativesynthesis.Config
	Chart     *buildchartseries.Config
}

// NewStageConfigs derives stage settings from the application config. Worker timeouts
// under workers.<task-type>.timeout override the stage defaults.
func NewStageConfigs(cfg *config.Config) StageConfigs {
	stages := StageConfigs{
		Classify:  classifyquestion.LoadConfig(),
		Extract:   extractfilters.LoadConfig(),
		Aggregate: aggregatelistings.LoadConfig(),
		Merge:     mergepricetrend.LoadConfig(),
		Narrative: narrativesynthesis.LoadConfig(),
		Chart:     buildchartseries.LoadConfig(),
	}
	if cfg == nil {
		return stages
	}

	stages.Classify.Timeout = workerTimeout(cfg, classifyquestion.TaskType, stages.Classify.Timeout)
	stages.Extract.Timeout = workerTimeout(cfg, extractfilters.TaskType, stages.Extract.Timeout)
	stages.Aggregate.Timeout = workerTimeout(cfg, aggregatelistings.TaskType, stages.Aggregate.Timeout)
	stages.Merge.Timeout = workerTimeout(cfg, mergepricetrend.TaskType, stages.Merge.Timeout)
	stages.Chart.Timeout = workerTimeout(cfg, buildchartseries.TaskType, stages.Chart.Timeout)

	a := cfg.Assistant
	if a.SampleLimit > 0 {
		stages.Aggregate.SampleLimit = a.SampleLimit
	}
	stages.Aggregate.Deterministic = a.DeterministicSample
	stages.Aggregate.SampleSeed = a.SampleSeed

	g := cfg.APIs.GenAI
	n := stages.Narrative
	if g.BaseURL != "" {
		n.GenAIBaseURL = g.BaseURL
	}
	n.APIKey = g.APIKey
	if g.Model != "" {
		n.Model = g.Model
	}
	if g.Timeout > 0 {
		n.Timeout = time.Duration(g.Timeout) * time.Millisecond
	}
	n.MaxRetries = g.MaxRetries
	if g.MaxTokens > 0 {
		n.MaxTokens = g.MaxTokens
	}
	n.Temperature = g.Temperature
	n.PromptRowLimit = a.PromptRowLimit

	return stages
}

func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if wc, ok := cfg.Workers[taskType]; ok && wc.Timeout > 0 {
		return time.Duration(wc.Timeout) * time.Millisecond
	}
	return fallback
}
