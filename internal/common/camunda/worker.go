// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"campus-assistant-workers/internal/common/config"
)

// JobHandler is what every worker package's Handler satisfies. Job outcome
// (complete, fail, BPMN error) is reported through the JobClient inside
// Handle, so there is nothing to return.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Worker is one open Zeebe job subscription.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job subscription for taskType, polling with the limits
// from the worker's config section.
func NewWorker(client *Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log *zap.Logger) *Worker {
	jobWorker := client.GetClient().NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// Close stops polling and waits for in-flight jobs to finish. The shared
// Zeebe client is closed separately by the owner.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
