package camunda

import (
	"context"
	"time"

	"car-market-assistant/internal/common/config"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// HandlerFunc is the signature every car-market worker's Handle method satisfies.
type HandlerFunc func(worker.JobClient, entities.Job)

// Workers opens job workers on one client and closes them together.
type Workers struct {
	client  zbc.Client
	obs     *observability.Observability
	logger  logger.Logger
	workers []worker.JobWorker
}

func NewWorkers(client zbc.Client, obs *observability.Observability, log logger.Logger) *Workers {
	return &Workers{client: client, obs: obs, logger: log}
}

// Start opens a worker for taskType unless it is disabled in config.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handle HandlerFunc) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jw := w.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(w.obs, taskType, handle))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()
	w.workers = append(w.workers, jw)

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Count returns the number of open workers.
func (w *Workers) Count() int {
	return len(w.workers)
}

// Close stops every worker and then the client.
func (w *Workers) Close() error {
	for _, jw := range w.workers {
		jw.Close()
	}
	w.workers = nil
	return w.client.Close()
}

// statusClient remembers whether the handler failed the job or threw an error for it.
type statusClient struct {
	worker.JobClient
	failed bool
}

func (c *statusClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.failed = true
	return c.JobClient.NewFailJobCommand()
}

func (c *statusClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.failed = true
	return c.JobClient.NewThrowErrorCommand()
}

func (c *statusClient) status() string {
	if c.failed {
		return observability.StatusFailed
	}
	return observability.StatusCompleted
}

// Instrument records the job outcome and duration for every call to handle.
func Instrument(obs *observability.Observability, taskType string, handle HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		sc := &statusClient{JobClient: client}
		handle(sc, job)
		obs.RecordJob(context.Background(), taskType, sc.status(), time.Since(start))
	}
}
