// internal/workers/tuition/calculate-tuition/models.go
package calculatetuition

// Input is the job variable payload for the calculate-tuition task. The
// selection itself lives in the conversation tracker.
type Input struct {
	SenderID string `json:"senderId"`
}

// Output carries the computed total back to the process. Persisted is
// false when the run could not be recorded; the replies then include a
// notice but the breakdown is still delivered.
type Output struct {
	TotalTuition float64  `json:"totalTuition"`
	Persisted    bool     `json:"persisted"`
	Replies      []string `json:"replies"`
}
