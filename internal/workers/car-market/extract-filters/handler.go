// internal/workers/car-market/extract-filters/handler.go
package extractfilters

import (
	"context"
	"encoding/json"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/common/metrics"
	"car-market-assistant/internal/models"
	"car-market-assistant/internal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "extract-car-filters"

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

// Execute extracts the filters of the classified question. Brand vocabulary comes from the
// session's current dataset; with nothing loaded the vocabulary is empty.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	var vocabulary []string
	if NeedsVocabulary(input.Intent) {
		reg, err := h.sessions.Get(input.SessionID)
		if err != nil {
			return nil, err
		}
		if current, ok := reg.Current(); ok {
			vocabulary = current.Brands()
		}
	}

	filters, err := Extract(input.Intent, input.Question, vocabulary)
	if err != nil {
		h.logger.Warn("filter extraction failed", map[string]interface{}{
			"sessionId": input.SessionID,
			"intent":    string(input.Intent),
			"error":     err.Error(),
		})
		return nil, err
	}

	envelope, err := models.EncodeFilters(filters)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	h.logger.Info("filters extracted", map[string]interface{}{
		"sessionId": input.SessionID,
		"intent":    string(input.Intent),
		"filters":   string(envelope.Payload),
	})

	return &Output{Filters: envelope}, nil
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
