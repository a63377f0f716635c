// internal/workers/car-market/load-datasets/handler.go
package loaddatasets

import (
	"context"
	"encoding/json"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/common/metrics"
	"car-market-assistant/internal/ingest"
	"car-market-assistant/internal/models"
	"car-market-assistant/internal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "load-car-datasets"

type SourceResolver interface {
	Resolve(kind, ref string) (ingest.Source, error)
}

type Handler struct {
	config       *Config
	sessions     *session.Manager
	sources      SourceResolver
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, sessions *session.Manager, sources SourceResolver, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sessions:     sessions,
		sources:      sources,
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

// Execute loads the requested sources into the session, creating it when sessionId is empty.
// Every source is read before the session is created or changed, so a failure leaves no trace.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var current *models.Dataset
	if input.CurrentSource != "" || input.CurrentRef != "" {
		ds, err := h.load(ctx, input.CurrentSource, input.CurrentRef)
		if err != nil {
			return nil, err
		}
		current = &ds
	}

	var history []models.Dataset
	for _, path := range input.HistoryFiles {
		ds, err := h.load(ctx, ingest.KindCSV, path)
		if err != nil {
			return nil, err
		}
		history = append(history, ds)
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID, _ = h.sessions.Create()
	}

	output := &Output{SessionID: sessionID}
	if current != nil {
		h.sessions.LoadCurrent(ctx, sessionID, *current)
		output.CurrentRows = current.Len()
	}
	if input.HistoryFiles != nil {
		h.sessions.LoadHistory(ctx, sessionID, history)
	}
	output.State = h.sessions.GetOrCreate(sessionID).State()

	h.logger.Info("datasets loaded", map[string]interface{}{
		"sessionId":    sessionID,
		"currentFile":  output.State.CurrentFile,
		"historyFiles": len(output.State.HistoryFiles),
	})

	return output, nil
}

func (h *Handler) load(ctx context.Context, kind, ref string) (models.Dataset, error) {
	src, err := h.sources.Resolve(kind, ref)
	if err != nil {
		return models.Dataset{}, err
	}
	ds, err := src.Load(ctx)
	if err != nil {
		return models.Dataset{}, err
	}
	if kind == "" {
		kind = ingest.KindCSV
	}
	metrics.DatasetsLoaded.WithLabelValues(kind, string(ds.Kind)).Inc()
	return ds, nil
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
