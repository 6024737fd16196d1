// internal/workers/gpa/calculate-gpa/models.go
package calculategpa

// Input is the job variable payload for the calculate-gpa task.
type Input struct {
	SenderID string `json:"senderId"`
}

// Output carries the computed GPA. With no confirmed courses the job
// still completes; Gpa and TotalCredits stay zero and the replies explain
// the restart.
type Output struct {
	Gpa          float64  `json:"gpa"`
	TotalCredits float64  `json:"totalCredits"`
	Replies      []string `json:"replies"`
}
