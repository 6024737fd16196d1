// internal/workers/tuition/validate-tuition-form/handler.go
package validatetuitionform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"campus-assistant-workers/internal/campus/tracker"
	"campus-assistant-workers/internal/campus/tuition"
	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/metrics"
	"campus-assistant-workers/internal/models"
)

const (
	TaskType = "validate-tuition-form"
)

const (
	SlotAdmissionGroup = "admission_group"
	SlotFaculty        = "faculty"
	SlotGeneralCredits = "general_credits"
	SlotMajorCredits   = "major_credits"
)

const (
	msgPickAdmission  = "Сонголтоо товч дээр дарж сонгоорой."
	msgAdmissionFirst = "Эхлээд элсэлтийн оноо сонгоорой."
	msgPickFaculty    = "Бүрэлдэхүүн/салбараа товч дээр дарж сонгоорой."
	msgGeneralCredits = "Ерөнхий суурь кредитийг 0-ээс их эсвэл тэнцүү тоогоор оруулна уу."
	msgMajorCredits   = "Мэргэжлийн суурь/мэргэших кредитийг 0-ээс их эсвэл тэнцүү тоогоор оруулна уу."
)

// Handler validates one tuition form slot against the pricing table and
// stores accepted values in the conversation tracker.
type Handler struct {
	config        *Config
	pricing       tuition.PricingTable
	conversations *tracker.Tracker
	errorHandler  *errors.ErrorHandler
	logger        logger.Logger
}

func NewHandler(config *Config, pricing tuition.PricingTable, conversations *tracker.Tracker, log logger.Logger) *Handler {
	return &Handler{
		config:        config,
		pricing:       pricing,
		conversations: conversations,
		errorHandler:  errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{
			"worker":   "validate-tuition-form",
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

	h.logger.Info("Processing validate tuition form job", map[string]interface{}{
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
	sel := &state.Tuition

	var valid bool
	var replies []string

	switch input.Slot {
	case SlotAdmissionGroup:
		valid = h.acceptAdmissionGroup(sel, input)
		if !valid {
			replies = append(replies, msgPickAdmission)
		}

	case SlotFaculty:
		var message string
		valid, message = h.acceptFaculty(sel, input)
		if !valid {
			replies = append(replies, message)
		}

	case SlotGeneralCredits:
		if v, ok := parseCredits(input.Value); ok {
			sel.GeneralCredits = &v
			valid = true
		} else {
			sel.GeneralCredits = nil
			replies = append(replies, msgGeneralCredits)
		}

	case SlotMajorCredits:
		if v, ok := parseCredits(input.Value); ok {
			sel.MajorCredits = &v
			valid = true
		} else {
			sel.MajorCredits = nil
			replies = append(replies, msgMajorCredits)
		}

	default:
		return nil, errors.NewValidationError("slot", fmt.Sprintf("unknown tuition form slot %q", input.Slot))
	}

	if err := h.conversations.Save(ctx, input.SenderID, state); err != nil {
		return nil, err
	}

	if replies == nil {
		replies = []string{}
	}
	return &Output{
		Valid:       valid,
		Replies:     replies,
		SlotCleared: !valid,
	}, nil
}

// acceptAdmissionGroup takes the group from the button intent when
// present, otherwise from the raw value. Anything else clears the slot.
func (h *Handler) acceptAdmissionGroup(sel *models.TuitionSelection, input *Input) bool {
	if group, ok := tuition.GroupFromIntent(input.Intent); ok {
		sel.AdmissionGroup = group
		return true
	}
	if s, ok := input.Value.(string); ok && tuition.IsAllowedGroup(s) {
		sel.AdmissionGroup = s
		return true
	}
	sel.AdmissionGroup = ""
	return false
}

// acceptFaculty requires an admission group first; the faculty must then
// exist under that group in the pricing table.
func (h *Handler) acceptFaculty(sel *models.TuitionSelection, input *Input) (bool, string) {
	if sel.AdmissionGroup == "" || !h.pricing.HasGroup(sel.AdmissionGroup) {
		sel.Faculty = ""
		return false, msgAdmissionFirst
	}
	if s, ok := input.Value.(string); ok && h.pricing.HasFaculty(sel.AdmissionGroup, s) {
		sel.Faculty = s
		return true, ""
	}
	sel.Faculty = ""
	return false, msgPickFaculty
}

func parseCredits(value interface{}) (float64, bool) {
	v, ok := tuition.ParseNumber(value)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
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
		"valid":  output.Valid,
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

// Execute validates one tuition form slot (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
