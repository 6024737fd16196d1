// internal/workers/gpa/validate-gpa-form/handler.go
package validategpaform

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
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
	TaskType = "validate-gpa-form"
)

const (
	SlotNumberOfCourses = "number_of_courses"
	SlotCurrentCredit   = "current_credit"
	SlotCurrentScore    = "current_score"
)

const (
	msgCountNotNumber  = "Тоогоор оруулна уу. Жишээ: 2"
	msgCountRange      = "Хичээлийн тоо 1-50 хооронд байх ёстой."
	msgCreditNotNumber = "Кредитийг тоогоор оруулна уу. Жишээ: 3"
	msgCreditRange     = "Кредит 0-30 хооронд байх ёстой."
	msgScoreNotNumber  = "Дүнг тоогоор оруулна уу. Жишээ: 95"
	msgScoreRange      = "Дүн 0-100 хооронд байх ёстой."
)

// Handler validates one GPA form slot and advances the course-by-course
// collection kept in the conversation tracker.
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
			"worker":   "validate-gpa-form",
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

	h.logger.Info("Processing validate gpa form job", map[string]interface{}{
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

	var valid bool
	var replies []string

	switch input.Slot {
	case SlotNumberOfCourses:
		if v, ok := parseNumber(input.Value); !ok {
			state.Gpa.NumberOfCourses = 0
			replies = append(replies, msgCountNotNumber)
		} else if err := session.SetCourseCount(int(v)); err != nil {
			state.Gpa.NumberOfCourses = 0
			replies = append(replies, msgCountRange)
		} else {
			valid = true
		}

	case SlotCurrentCredit:
		if v, ok := parseNumber(input.Value); !ok {
			state.Gpa.CurrentCredit = nil
			replies = append(replies, msgCreditNotNumber)
		} else if err := session.SetCredit(v); err != nil {
			state.Gpa.CurrentCredit = nil
			replies = append(replies, msgCreditRange)
		} else {
			valid = true
		}

	case SlotCurrentScore:
		if v, ok := parseNumber(input.Value); !ok {
			state.Gpa.CurrentScore = nil
			replies = append(replies, msgScoreNotNumber)
		} else if err := session.SetScore(v); err != nil {
			state.Gpa.CurrentScore = nil
			replies = append(replies, msgScoreRange)
		} else {
			valid = true
		}

	default:
		return nil, errors.NewValidationError("slot", fmt.Sprintf("unknown gpa form slot %q", input.Slot))
	}

	if err := h.conversations.Save(ctx, input.SenderID, state); err != nil {
		return nil, err
	}

	if replies == nil {
		replies = []string{}
	}
	return &Output{
		Valid:           valid,
		Replies:         replies,
		ReadyToFinalize: session.Done(),
	}, nil
}

// parseNumber accepts the numeric shapes a chat channel produces: typed
// JSON numbers or plain decimal strings. No thousands or decimal-comma
// tolerance here.
func parseNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(value)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
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
		"jobKey":          job.Key,
		"valid":           output.Valid,
		"readyToFinalize": output.ReadyToFinalize,
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

// Execute validates one GPA form slot (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
