// internal/workers/car-market/merge-price-trend/handler.go
package mergepricetrend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/common/metrics"
	"car-market-assistant/internal/models"
	"car-market-assistant/internal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "merge-price-trend"

// SessionLookup resolves the registry holding a session's datasets.
type SessionLookup interface {
	Get(sessionID string) (*session.Registry, error)
}

type Handler struct {
	config       *Config
	sessions     SessionLookup
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, sessions SessionLookup, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sessions:     sessions,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, apperrors.NewInvalidJobInputError(err))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute merges the session's history collection for the requested brand and model.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	decoded, err := input.Filters.Decode()
	if err != nil {
		return nil, apperrors.NewInvalidJobInputError(err)
	}
	filters, ok := decoded.(models.HistoryFilters)
	if !ok {
		return nil, apperrors.NewInvalidJobInputError(fmt.Errorf("expected history filters, got %s", decoded.Intent()))
	}

	reg, err := h.sessions.Get(input.SessionID)
	if err != nil {
		return nil, err
	}

	trend, warnings, err := Merge(reg.History(), filters)
	for _, w := range warnings {
		h.logger.Warn(w, map[string]interface{}{
			"sessionId": input.SessionID,
		})
	}
	if err != nil {
		return nil, err
	}

	metrics.SelectedRows.WithLabelValues(string(models.IntentHistoryTrend)).Observe(float64(len(trend.Points)))

	h.logger.Info("price trend merged", map[string]interface{}{
		"sessionId":     input.SessionID,
		"brand":         filters.Brand,
		"model":         filters.Model,
		"points":        len(trend.Points),
		"medianPoints":  len(trend.MedianLine),
		"showroomLines": len(trend.ShowroomLines),
	})

	return &Output{Trend: trend, Warnings: warnings}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
