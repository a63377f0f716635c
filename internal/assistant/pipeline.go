// internal/assistant/pipeline.go
package assistant

import (
	"context"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/common/metrics"
	"car-market-assistant/internal/ingest"
	"car-market-assistant/internal/models"
	"car-market-assistant/internal/session"
	aggregatelistings "car-market-assistant/internal/workers/car-market/aggregate-listings"
	buildchartseries "car-market-assistant/internal/workers/car-market/build-chart-series"
	classifyquestion "car-market-assistant/internal/workers/car-market/classify-question"
	extractfilters "car-market-assistant/internal/workers/car-market/extract-filters"
	mergepricetrend "car-market-assistant/internal/workers/car-market/merge-price-trend"
	narrativesynthesis "car-market-assistant/internal/workers/car-market/narrative-synthesis"

	"github.com/google/uuid"
)

// Answer is everything produced for one question.
type Answer struct {
	QueryID     string                    `json:"queryId" yaml:"queryId"`
	Question    string                    `json:"question" yaml:"question"`
	Intent      models.Intent             `json:"intent" yaml:"intent"`
	MatchedRule string                    `json:"matchedRule" yaml:"matchedRule"`
	Filters     models.Filters            `json:"filters" yaml:"filters"`
	Aggregation *models.AggregationResult `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	Trend       *models.TrendSeries       `json:"trend,omitempty" yaml:"trend,omitempty"`
	Chart       *buildchartseries.Chart   `json:"chart,omitempty" yaml:"chart,omitempty"`
	Narrative   string                    `json:"narrative,omitempty" yaml:"narrative,omitempty"`
	Warnings    []string                  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Assistant runs the question pipeline for a single session. Questions are answered one
// at a time; the registry may be reloaded concurrently by a watcher.
type Assistant struct {
	sessions  *session.Manager
	sessionID string
	narrate   bool
	timeout   time.Duration
	logger    logger.Logger

	classifier *classifyquestion.Handler
	extractor  *extractfilters.Handler
	aggregator *aggregatelistings.Handler
	merger     *mergepricetrend.Handler
	narrator   *narrativesynthesis.Handler
	charter    *buildchartseries.Handler
}

type Option func(*Assistant)

// WithoutNarrative skips the chat-completions call; answers carry data only.
func WithoutNarrative() Option {
	return func(a *Assistant) { a.narrate = false }
}

// WithSession binds the assistant to an existing session instead of creating one.
func WithSession(sessionID string) Option {
	return func(a *Assistant) { a.sessionID = sessionID }
}

func New(stages StageConfigs, sessions *session.Manager, log logger.Logger, opts ...Option) *Assistant {
	a := &Assistant{
		sessions:   sessions,
		narrate:    true,
		timeout:    stages.Narrative.Timeout,
		logger:     log,
		classifier: classifyquestion.NewHandler(stages.Classify, log),
		extractor:  extractfilters.NewHandler(stages.Extract, sessions, log),
		aggregator: aggregatelistings.NewHandler(stages.Aggregate, sessions, log),
		merger:     mergepricetrend.NewHandler(stages.Merge, sessions, log),
		narrator:   narrativesynthesis.NewHandler(stages.Narrative, log),
		charter:    buildchartseries.NewHandler(stages.Chart, log),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessionID == "" {
		a.sessionID, _ = sessions.Create()
	} else {
		sessions.GetOrCreate(a.sessionID)
	}
	a.logger = log.With(map[string]interface{}{"sessionId": a.sessionID})
	return a
}

func (a *Assistant) SessionID() string { return a.sessionID }

// Registry returns the datasets held by the assistant's session.
func (a *Assistant) Registry() *session.Registry {
	return a.sessions.GetOrCreate(a.sessionID)
}

// LoadCurrent reads src and makes it the current dataset. On failure the previous
// dataset stays in place.
func (a *Assistant) LoadCurrent(ctx context.Context, src ingest.Source) (models.Dataset, error) {
	ds, err := src.Load(ctx)
	if err != nil {
		a.logger.Warn("failed to load dataset", map[string]interface{}{
			"source": src.Name(),
			"error":  err.Error(),
		})
		return models.Dataset{}, err
	}

	a.sessions.LoadCurrent(ctx, a.sessionID, ds)
	metrics.DatasetsLoaded.WithLabelValues(sourceType(src), string(ds.Kind)).Inc()

	a.logger.Info("current dataset loaded", map[string]interface{}{
		"source": ds.SourceName,
		"kind":   string(ds.Kind),
		"rows":   ds.Len(),
	})
	return ds, nil
}

// LoadHistory reads every source and replaces the history collection. Any failure
// leaves the previous collection untouched.
func (a *Assistant) LoadHistory(ctx context.Context, srcs []ingest.Source) ([]models.Dataset, error) {
	datasets := make([]models.Dataset, 0, len(srcs))
	for _, src := range srcs {
		ds, err := src.Load(ctx)
		if err != nil {
			a.logger.Warn("failed to load history file", map[string]interface{}{
				"source": src.Name(),
				"error":  err.Error(),
			})
			return nil, err
		}
		datasets = append(datasets, ds)
	}

	a.sessions.LoadHistory(ctx, a.sessionID, datasets)
	for i, ds := range datasets {
		metrics.DatasetsLoaded.WithLabelValues(sourceType(srcs[i]), string(ds.Kind)).Inc()
	}

	a.logger.Info("history loaded", map[string]interface{}{
		"files": len(datasets),
	})
	return datasets, nil
}

// Ask answers one question: classify, extract, aggregate or merge, then narrate.
// HistoryTrend answers also carry a validated chart.
func (a *Assistant) Ask(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()
	query := models.Query{ID: uuid.NewString(), RawText: question}
	log := a.logger.With(map[string]interface{}{"queryId": query.ID})

	answer, err := a.ask(ctx, query)
	intent := ""
	if answer != nil {
		intent = string(answer.Intent)
	}

	metrics.QuestionDuration.WithLabelValues(intent).Observe(time.Since(start).Seconds())
	if err != nil {
		code := apperrors.CodeOf(err)
		metrics.QuestionsFailed.WithLabelValues(intent, string(code)).Inc()
		log.WithError(err).Warn("question failed", map[string]interface{}{
			"intent":    intent,
			"errorCode": string(code),
		})
		return answer, err
	}

	metrics.QuestionsTotal.WithLabelValues(intent).Inc()
	log.Info("question answered", map[string]interface{}{
		"intent":   intent,
		"duration": time.Since(start).String(),
	})
	return answer, nil
}

func (a *Assistant) ask(ctx context.Context, query models.Query) (*Answer, error) {
	classified, err := a.classifier.Execute(ctx, &classifyquestion.Input{
		SessionID: a.sessionID,
		Question:  query.RawText,
	})
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		QueryID:     query.ID,
		Question:    query.RawText,
		Intent:      classified.Intent,
		MatchedRule: classified.MatchedRule,
	}

	extracted, err := a.extractor.Execute(ctx, &extractfilters.Input{
		SessionID: a.sessionID,
		Question:  query.RawText,
		Intent:    classified.Intent,
	})
	if err != nil {
		return answer, err
	}
	filters, err := extracted.Filters.Decode()
	if err != nil {
		return answer, apperrors.NewInternalError(err)
	}
	answer.Filters = filters

	narrativeInput := &narrativesynthesis.Input{
		SessionID: a.sessionID,
		Question:  query.RawText,
		Intent:    classified.Intent,
	}

	if history, ok := filters.(models.HistoryFilters); ok {
		merged, err := a.merger.Execute(ctx, &mergepricetrend.Input{
			SessionID: a.sessionID,
			Filters:   extracted.Filters,
		})
		if err != nil {
			return answer, err
		}
		answer.Trend = &merged.Trend
		answer.Warnings = append(answer.Warnings, merged.Warnings...)

		chart, err := a.charter.Execute(ctx, &buildchartseries.Input{
			SessionID: a.sessionID,
			Trend:     merged.Trend,
			Brand:     history.Brand,
			ModelName: history.Model,
		})
		if err != nil {
			return answer, err
		}
		answer.Chart = &chart.Chart

		narrativeInput.Trend = answer.Trend
		narrativeInput.Brand = history.Brand
		narrativeInput.ModelName = history.Model
	} else {
		aggregated, err := a.aggregator.Execute(ctx, &aggregatelistings.Input{
			SessionID: a.sessionID,
			Filters:   extracted.Filters,
		})
		if err != nil {
			return answer, err
		}
		answer.Aggregation = &aggregated.Aggregation
		answer.Warnings = append(answer.Warnings, aggregated.Warnings...)
		narrativeInput.Aggregation = answer.Aggregation
	}

	if !a.narrate {
		return answer, nil
	}

	nctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	narrated, err := a.narrator.Execute(nctx, narrativeInput)
	if err != nil {
		return answer, err
	}
	answer.Narrative = narrated.Narrative

	return answer, nil
}

func sourceType(src ingest.Source) string {
	switch src.(type) {
	case *ingest.CSVSource:
		return "csv"
	case *ingest.SQLSource:
		return "sql"
	case *ingest.SearchSource:
		return "search"
	default:
		return "other"
	}
}
