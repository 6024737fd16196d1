// internal/workers/gpa/prompt-course-entry/models.go
package promptcourseentry

// Input is the job variable payload for the prompt-course-entry task.
// Field selects which of the two per-course questions to ask.
type Input struct {
	SenderID string `json:"senderId"`
	Field    string `json:"field"`
}

// Output carries the rendered question.
type Output struct {
	Replies []string `json:"replies"`
}
