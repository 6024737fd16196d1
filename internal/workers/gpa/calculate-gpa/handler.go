// internal/workers/gpa/calculate-gpa/handler.go
package calculategpa

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"campus-assistant-workers/internal/campus/grading"
	"campus-assistant-workers/internal/campus/tracker"
	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/metrics"
)

const (
	TaskType = "calculate-gpa"
)

const msgNoCourses = "Хичээлийн мэдээлэл алга байна. Дахин эхлүүлье."

// Handler finalizes a GPA collection round: grades the confirmed courses,
// renders the breakdown and resets the tracked session either way.
type Handler struct {
	config        *Config
	conversations *tracker.Tracker
	errorHandler  *errors.ErrorHandler
	logger        logger.Logger
}

func NewHandler(config *Config, conversations *tracker.Tracker, log logger.Logger) *Handler {
	return &Handler{
		config:        config,
		conversations: conversations,
		errorHandler:  errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{
			"worker":   "calculate-gpa",
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

	h.logger.Info("Processing calculate gpa job", map[string]interface{}{
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

	session := grading.NewSession(&state.Gpa)
	report, finalizeErr := session.Finalize()

	// Finalize resets the session state in both outcomes; persist that
	// before reporting anything.
	if err := h.conversations.Save(ctx, input.SenderID, state); err != nil {
		return nil, err
	}

	if finalizeErr != nil {
		if stdErr, ok := finalizeErr.(*errors.StandardError); ok && stdErr.Code == errors.ErrCodeNotFound {
			return &Output{Replies: []string{msgNoCourses}}, nil
		}
		return nil, finalizeErr
	}

	h.logger.Info("gpa round finalized", map[string]interface{}{
		"senderId":     input.SenderID,
		"gpa":          report.GPA,
		"totalCredits": report.TotalCredit,
		"courses":      len(report.Lines),
	})

	return &Output{
		Gpa:          report.GPA,
		TotalCredits: report.TotalCredit,
		Replies:      []string{report.Format()},
	}, nil
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
		"jobKey": job.Key,
		"gpa":    output.Gpa,
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

// Execute finalizes one GPA round (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
