// internal/workers/car-market/narrative-synthesis/handler.go
package narrativesynthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	httpclient "car-market-assistant/internal/common/http"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "car-narrative-synthesis"

var (
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMSynthesisFailed = errors.New("LLM_SYNTHESIS_FAILED")
)

const emptyAnswer = "I don't have enough information to answer that question."

type Handler struct {
	config       *Config
	client       *httpclient.Client
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		// no client timeout; the context bounds every attempt
		client:       httpclient.NewClient(0),
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

	h.completeJob(context.Background(), client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute sends the prompt for one question to the chat-completions endpoint.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	defer func() {
		metrics.NarrativeDuration.Observe(time.Since(start).Seconds())
	}()

	prompt, rows := BuildPrompt(input, h.config.PromptRowLimit)

	body, err := json.Marshal(chatRequest{
		Model: h.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewLLMSynthesisFailedError(fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, err))
	}

	resp, err := h.send(ctx, body)
	if err != nil {
		if errors.Is(err, ErrLLMTimeout) {
			return nil, apperrors.NewLLMTimeoutError(err)
		}
		return nil, apperrors.NewLLMSynthesisFailedError(err)
	}
	defer resp.Body.Close()

	var apiResponse chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, apperrors.NewLLMSynthesisFailedError(fmt.Errorf("%w: decode error: %v", ErrLLMSynthesisFailed, err))
	}

	text := ""
	if len(apiResponse.Choices) > 0 {
		text = strings.TrimSpace(apiResponse.Choices[0].Message.Content)
	}
	if text == "" {
		text = emptyAnswer
	}

	h.logger.Info("narrative synthesis completed", map[string]interface{}{
		"sessionId":  input.SessionID,
		"intent":     string(input.Intent),
		"promptRows": rows,
		"promptLen":  len(prompt),
	})

	return &Output{Narrative: text, Model: h.config.Model, PromptRows: rows}, nil
}

// send posts body with retries and exponential backoff. Non-OK statuses are retried.
func (h *Handler) send(ctx context.Context, body []byte) (*http.Response, error) {
	endpoint := strings.TrimRight(h.config.GenAIBaseURL, "/") + "/chat/completions"
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrLLMTimeout
			}
		}

		resp, err := h.client.PostJSON(ctx, endpoint, h.config.APIKey, body)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, ErrLLMTimeout
		}
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("status %d", resp.StatusCode)

		h.logger.Warn("narrative request failed", map[string]interface{}{
			"attempt": attempt + 1,
			"status":  resp.StatusCode,
		})
	}

	return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, lastErr)
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
	h.errorHandler.HandleJobError(context.WithoutCancel(ctx), client, job, err)
}
