// internal/workers/admission/apply-menu-selection/handler.go
package applymenuselection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"campus-assistant-workers/internal/campus/tracker"
	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/metrics"
)

const (
	TaskType = "apply-menu-selection"
)

const (
	slotAdmissionGroup = "admission_group"
	slotFaculty        = "faculty"
)

type menuSelection struct {
	slot  string
	value string
}

// menuSelections maps every chat menu button onto the tuition slot it
// fills. Faculty names are the official school titles and double as keys
// into pricing.yml.
var menuSelections = map[string]menuSelection{
	"action_set_admission_group_before_2024_2025": {slotAdmissionGroup, "before_2024_2025"},
	"action_set_admission_group_2024_2025":        {slotAdmissionGroup, "2024_2025"},
	"action_set_admission_group_2025_2026":        {slotAdmissionGroup, "2025_2026"},

	"action_set_faculty_science":     {slotFaculty, "ШИНЖЛЭХ УХААНЫ СУРГУУЛЬ"},
	"action_set_faculty_mtee":        {slotFaculty, "МЭДЭЭЛЛИЙН ТЕХНОЛОГИ, ЭЛЕКТРОНИКИЙН СУРГУУЛЬ"},
	"action_set_faculty_engineering": {slotFaculty, "ИНЖЕНЕР, ТЕХНОЛОГИЙН СУРГУУЛЬ"},
	"action_set_faculty_business":    {slotFaculty, "БИЗНЕСИЙН СУРГУУЛЬ"},
	"action_set_faculty_law":         {slotFaculty, "ХУУЛЬ ЗҮЙН СУРГУУЛЬ"},
	"action_set_faculty_politics":    {slotFaculty, "УЛС ТӨР СУДЛАЛ, ОЛОН УЛСЫН ХАРИЛЦАА, НИЙТИЙН УДИРДЛАГЫН СУРГУУЛЬ"},
	"action_set_faculty_zavkhan":     {slotFaculty, "ЗАВХАН АЙМАГ ДАХЬ БИЗНЕС, МЭДЭЭЛЛИЙН ТЕХНОЛОГИЙН СУРГУУЛЬ"},
	"action_set_faculty_east":        {slotFaculty, "ЗҮҮН БҮСИЙН СУРГУУЛЬ"},
	"action_set_faculty_west":        {slotFaculty, "БАРУУН БҮСИЙН СУРГУУЛЬ"},
}

// Handler applies a chat menu button press to the tracked tuition
// selection.
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
			"worker":   "apply-menu-selection",
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

	h.logger.Info("Processing apply menu selection job", map[string]interface{}{
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

	selection, ok := menuSelections[input.Action]
	if !ok {
		return nil, errors.NewUnknownMenuActionError(input.Action)
	}

	state, err := h.conversations.Load(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}

	switch selection.slot {
	case slotAdmissionGroup:
		state.Tuition.AdmissionGroup = selection.value
	case slotFaculty:
		state.Tuition.Faculty = selection.value
	}

	if err := h.conversations.Save(ctx, input.SenderID, state); err != nil {
		return nil, err
	}

	h.logger.Info("menu selection applied", map[string]interface{}{
		"senderId": input.SenderID,
		"action":   input.Action,
		"slot":     selection.slot,
	})

	return &Output{
		SlotName:  selection.slot,
		SlotValue: selection.value,
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
		"slot":   output.SlotName,
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

// Execute applies one menu selection (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
