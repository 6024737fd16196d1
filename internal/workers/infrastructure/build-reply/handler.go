// internal/workers/infrastructure/build-reply/handler.go
package buildreply

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/metrics"
	"campus-assistant-workers/pkg/registry"
)

const (
	TaskType = "build-reply"
)

// Handler renders utter_* reply templates from the registry. The parsed
// registry is cached with a TTL so edits to replies.json reach a running
// worker without a restart.
type Handler struct {
	config       *Config
	errorHandler *errors.ErrorHandler
	logger       logger.Logger

	mu       sync.RWMutex
	registry *registry.ReplyRegistry
	loadedAt time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		errorHandler: errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{
			"worker":   "build-reply",
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("Processing build reply job", map[string]interface{}{
		"jobKey": job.Key,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.handleError(client, job, errors.NewValidationError("variables", fmt.Sprintf("failed to parse job variables: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.handleError(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.TemplateKey == "" {
		return nil, errors.NewValidationError("templateKey", "templateKey is required")
	}

	reg, err := h.loadRegistry()
	if err != nil {
		return nil, err
	}

	template, ok := reg.Template(input.TemplateKey)
	if !ok {
		return nil, errors.NewConfigurationGapError(
			fmt.Sprintf("reply template %q is not registered", input.TemplateKey),
			"registered keys: "+strings.Join(reg.Keys(), ", "))
	}

	text, err := template.Render(input.Params, input.Channel)
	if err != nil {
		return nil, errors.NewTemplateValidationFailedError(err.Error())
	}

	return &Output{
		Replies:     []string{text},
		TemplateKey: input.TemplateKey,
	}, nil
}

// loadRegistry returns the cached registry while the TTL holds, otherwise
// reparses replies.json. A failed reload keeps serving the last good copy.
func (h *Handler) loadRegistry() (*registry.ReplyRegistry, error) {
	h.mu.RLock()
	if h.registry != nil && time.Since(h.loadedAt) < h.config.CacheTTL {
		reg := h.registry
		h.mu.RUnlock()
		return reg, nil
	}
	h.mu.RUnlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.registry != nil && time.Since(h.loadedAt) < h.config.CacheTTL {
		return h.registry, nil
	}

	reg, err := registry.LoadRegistry(h.config.RegistryPath)
	if err != nil {
		if h.registry != nil {
			h.logger.Warn("reply registry reload failed, serving cached copy", map[string]interface{}{
				"path":  h.config.RegistryPath,
				"error": err.Error(),
			})
			h.loadedAt = time.Now()
			return h.registry, nil
		}
		return nil, errors.NewConfigurationGapError("reply registry unavailable", err.Error())
	}

	h.registry = reg
	h.loadedAt = time.Now()
	h.logger.Info("reply registry loaded", map[string]interface{}{
		"path":      h.config.RegistryPath,
		"templates": len(reg.Templates),
	})
	return reg, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(context.Background()); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("Job completed", map[string]interface{}{
		"jobKey":      job.Key,
		"templateKey": output.TemplateKey,
	})
}

func (h *Handler) handleError(client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*errors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

// Execute renders one reply template (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
