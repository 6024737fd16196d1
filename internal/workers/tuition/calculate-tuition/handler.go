// internal/workers/tuition/calculate-tuition/handler.go
package calculatetuition

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"campus-assistant-workers/internal/campus/tracker"
	"campus-assistant-workers/internal/campus/tuition"
	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/metrics"
	"campus-assistant-workers/internal/models"
)

const (
	TaskType = "calculate-tuition"
)

const (
	msgMissingSelection = "Мэдээлэл дутуу байна. Дахиад 'төлбөр бодоорой' гэж эхлүүлнэ үү."
	msgPricingNotFound  = "Уучлаарай, сонгосон өгөгдлийн үнэ хүснэгтээс олдсонгүй."
)

// Handler computes the tuition total from the tracked selection and
// records the run in Postgres. Persistence is best effort: a database
// failure adds a notice to the replies but never withholds the result.
type Handler struct {
	config        *Config
	pricing       tuition.PricingTable
	conversations *tracker.Tracker
	db            *sql.DB
	errorHandler  *errors.ErrorHandler
	logger        logger.Logger
}

func NewHandler(config *Config, pricing tuition.PricingTable, conversations *tracker.Tracker, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config:        config,
		pricing:       pricing,
		conversations: conversations,
		db:            db,
		errorHandler:  errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{
			"worker":   "calculate-tuition",
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

	h.logger.Info("Processing calculate tuition job", map[string]interface{}{
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

	result, err := tuition.Calculate(state.Tuition, h.pricing)
	if err != nil {
		if reply, ok := userFacingReply(err); ok {
			return &Output{Replies: []string{reply}}, nil
		}
		return nil, err
	}

	var replies []string
	persisted := true
	if err := h.persistRun(ctx, input.SenderID, state.Tuition, result); err != nil {
		persisted = false
		perr := errors.NewPersistenceFailureError(err)
		h.logger.Warn("tuition run not persisted", map[string]interface{}{
			"senderId":  input.SenderID,
			"errorCode": string(perr.Code),
			"error":     perr.Details,
		})
		replies = append(replies, fmt.Sprintf("(DB хадгалалт амжилтгүй: %v)", perr.Details))
	}

	replies = append(replies, tuition.FormatBreakdown(state.Tuition, result))

	return &Output{
		TotalTuition: result.Total,
		Persisted:    persisted,
		Replies:      replies,
	}, nil
}

// userFacingReply maps the recoverable calculation errors onto the chat
// replies the user sees. Anything else stays an engine-level failure.
func userFacingReply(err error) (string, bool) {
	stdErr, ok := err.(*errors.StandardError)
	if !ok {
		return "", false
	}
	switch stdErr.Code {
	case errors.ErrCodeMissingSelection:
		return msgMissingSelection, true
	case errors.ErrCodePricingNotFound:
		return msgPricingNotFound, true
	}
	return "", false
}

// persistRun records one calculation under a stable identity row. The
// identity insert is idempotent so repeated runs of the same sender reuse
// the existing row.
func (h *Handler) persistRun(ctx context.Context, senderID string, sel models.TuitionSelection, result tuition.Result) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)

	if _, err := h.db.ExecContext(ctx, `
		INSERT INTO identities (sender_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (sender_id) DO NOTHING`,
		senderID,
		createdAt,
	); err != nil {
		return fmt.Errorf("ensure identity: %v", err)
	}

	var identityID int64
	if err := h.db.QueryRowContext(ctx,
		`SELECT id FROM identities WHERE sender_id = $1`,
		senderID,
	).Scan(&identityID); err != nil {
		return fmt.Errorf("load identity: %v", err)
	}

	run := models.TuitionRun{
		ID:             uuid.New().String(),
		IdentityID:     identityID,
		AdmissionGroup: sel.AdmissionGroup,
		Faculty:        sel.Faculty,
		GeneralCredits: creditOrZero(sel.GeneralCredits),
		MajorCredits:   creditOrZero(sel.MajorCredits),
		GeneralRate:    result.GeneralRate,
		MajorRate:      result.MajorRate,
		TotalTuition:   result.Total,
		CreatedAt:      createdAt,
	}
	if _, err := h.db.ExecContext(ctx, `
		INSERT INTO tuition_runs (
			id, identity_id, admission_group, faculty,
			general_credits, major_credits, general_rate, major_rate,
			total_tuition, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID,
		run.IdentityID,
		run.AdmissionGroup,
		run.Faculty,
		run.GeneralCredits,
		run.MajorCredits,
		run.GeneralRate,
		run.MajorRate,
		run.TotalTuition,
		run.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert run: %v", err)
	}

	h.logger.Info("tuition run recorded", map[string]interface{}{
		"runId":    run.ID,
		"senderId": senderID,
		"total":    run.TotalTuition,
	})
	return nil
}

func creditOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
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
		"jobKey":    job.Key,
		"persisted": output.Persisted,
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

// Execute computes and records one tuition run (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
