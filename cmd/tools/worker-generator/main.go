// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name        string // directory name, e.g. resolve-location
	PackageName string // squashed package name, e.g. resolvelocation
	HumanName   string // spaced name for log lines, e.g. resolve location
	TaskType    string // Zeebe task type
	Group       string // worker group directory under internal/workers/
}

var workerGroups = map[string]bool{
	"location":       true,
	"tuition":        true,
	"gpa":            true,
	"admission":      true,
	"infrastructure": true,
}

const configTemplate = `// internal/workers/{{ .Group }}/{{ .Name }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
`

const modelsTemplate = `// internal/workers/{{ .Group }}/{{ .Name }}/models.go
package {{ .PackageName }}

// Input is the job variable payload for a {{ .TaskType }} job.
type Input struct {
	SenderID string ` + "`json:\"senderId\"`" + `
}

// Output is written back to the process on completion.
type Output struct {
	Replies []string ` + "`json:\"replies\"`" + `
}
`

const handlerTemplate = `// internal/workers/{{ .Group }}/{{ .Name }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/metrics"
)

const (
	TaskType = "{{ .TaskType }}"
)

// Handler processes {{ .TaskType }} jobs.
type Handler struct {
	config       *Config
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		errorHandler: errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{
			"worker":   "{{ .Name }}",
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

	h.logger.Info("Processing {{ .HumanName }} job", map[string]interface{}{
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

	// Business logic for {{ .HumanName }} goes here.

	return &Output{Replies: []string{}}, nil
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

// Execute runs the worker logic directly (exported for testing)
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `// internal/workers/{{ .Group }}/{{ .Name }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assistant-workers/internal/common/logger"
)

func TestHandler_Execute(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{SenderID: "user-1"})

	require.NoError(t, err)
	assert.NotNil(t, output)
}

func TestHandler_Execute_RequiresSenderID(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
}
`

func main() {
	name := flag.String("name", "", "Worker directory name (e.g., resolve-location)")
	group := flag.String("group", "", "Worker group: location, tuition, gpa, admission, infrastructure")
	taskType := flag.String("task-type", "", "Zeebe task type (defaults to the worker name)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	flag.Parse()

	if *name == "" || *group == "" {
		fmt.Println("Usage: worker-generator --name <worker-name> --group <group> [--task-type <type>] [--output <dir>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --name resolve-location --group location")
		os.Exit(1)
	}

	if !workerGroups[*group] {
		fmt.Printf("Unknown group %q. Valid groups: location, tuition, gpa, admission, infrastructure\n", *group)
		os.Exit(1)
	}

	data := WorkerData{
		Name:        *name,
		PackageName: strings.ReplaceAll(*name, "-", ""),
		HumanName:   strings.ReplaceAll(*name, "-", " "),
		TaskType:    *taskType,
		Group:       *group,
	}
	if data.TaskType == "" {
		data.TaskType = data.Name
	}

	workerDir := filepath.Join(*outputDir, data.Group, data.Name)
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(workerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Worker scaffold generated successfully at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Fill in the Input/Output variables in models.go\n")
	fmt.Printf("  2. Implement the business logic in handler.go execute\n")
	fmt.Printf("  3. Extend the tests in handler_test.go\n")
	fmt.Printf("  4. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  5. Add configuration to configs/config.yaml\n")
}
