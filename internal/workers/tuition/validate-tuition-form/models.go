// internal/workers/tuition/validate-tuition-form/models.go
package validatetuitionform

// Input is the job variable payload for the validate-tuition-form task.
// Value carries whatever the channel extracted: a button payload string
// or a typed number.
type Input struct {
	SenderID string      `json:"senderId"`
	Slot     string      `json:"slot"`
	Value    interface{} `json:"value"`
	Intent   string      `json:"intent,omitempty"`
}

// Output reports the validation outcome. SlotCleared mirrors the form
// convention of resetting a slot that failed validation so it gets asked
// again.
type Output struct {
	Valid       bool     `json:"valid"`
	Replies     []string `json:"replies"`
	SlotCleared bool     `json:"slotCleared"`
}
