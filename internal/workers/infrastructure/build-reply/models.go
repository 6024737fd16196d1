// internal/workers/infrastructure/build-reply/models.go
package buildreply

// Input is the job variable payload for the build-reply task.
type Input struct {
	TemplateKey string            `json:"templateKey"`
	Params      map[string]string `json:"params,omitempty"`
	Channel     string            `json:"channel,omitempty"`
}

// Output carries the rendered reply text.
type Output struct {
	Replies     []string `json:"replies"`
	TemplateKey string   `json:"templateKey"`
}
