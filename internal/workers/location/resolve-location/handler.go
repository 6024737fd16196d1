// internal/workers/location/resolve-location/handler.go
package resolvelocation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"campus-assistant-workers/internal/campus/locations"
	"campus-assistant-workers/internal/campus/tracker"
	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/metrics"
)

const (
	TaskType = "resolve-location"
)

// Handler resolves a campus location utterance against the catalog and
// keeps the disambiguation state in the conversation tracker.
type Handler struct {
	config        *Config
	resolver      *locations.Resolver
	conversations *tracker.Tracker
	errorHandler  *errors.ErrorHandler
	logger        logger.Logger
}

func NewHandler(config *Config, resolver *locations.Resolver, conversations *tracker.Tracker, log logger.Logger) *Handler {
	return &Handler{
		config:        config,
		resolver:      resolver,
		conversations: conversations,
		errorHandler:  errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{
			"worker":   "resolve-location",
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

	h.logger.Info("Processing resolve location job", map[string]interface{}{
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
	if input.SenderID == "" {
		return nil, errors.NewValidationError("senderId", "senderId is required")
	}

	state, err := h.conversations.Load(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}

	result := h.resolver.Resolve(locations.ResolveInput{
		Text:   input.Text,
		Intent: input.Intent,
		State:  state.Location,
	})

	state.Location = result.State
	if err := h.conversations.Save(ctx, input.SenderID, state); err != nil {
		return nil, err
	}

	output := &Output{
		Replies:      result.Replies,
		AskPlaceType: result.AskPlaceType,
	}
	if output.Replies == nil {
		output.Replies = []string{}
	}
	if result.Resolved != nil {
		output.Resolved = true
		output.PlaceTitle = result.Resolved.Title
		output.PlaceURL = result.Resolved.URL
	}

	return output, nil
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
		"jobKey":       job.Key,
		"askPlaceType": output.AskPlaceType,
		"resolved":     output.Resolved,
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

// Execute resolves one utterance against the location catalog (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
