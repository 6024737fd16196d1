// internal/workers/gpa/validate-gpa-form/models.go
package validategpaform

// Input is the job variable payload for the validate-gpa-form task.
type Input struct {
	SenderID string      `json:"senderId"`
	Slot     string      `json:"slot"`
	Value    interface{} `json:"value"`
}

// Output reports the validation outcome. ReadyToFinalize turns true once
// the last announced course has been confirmed.
type Output struct {
	Valid           bool     `json:"valid"`
	Replies         []string `json:"replies"`
	ReadyToFinalize bool     `json:"readyToFinalize"`
}
