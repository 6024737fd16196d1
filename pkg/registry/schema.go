// pkg/registry/schema.go
package registry

// ReplyRegistry is the parsed replies.json document: every canned bot
// reply keyed by its utter_* name.
type ReplyRegistry struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Templates   []ReplyTemplate `json:"templates"`

	byKey map[string]int
}

// ReplyTemplate is one reply text. Params lists the placeholders the text
// requires; Channels holds per-channel overrides of the default text.
type ReplyTemplate struct {
	Key         string            `json:"key"`
	Description string            `json:"description,omitempty"`
	Text        string            `json:"text"`
	Params      []string          `json:"params,omitempty"`
	Channels    map[string]string `json:"channels,omitempty"`
}

// registrySchema validates replies.json before it is trusted. A registry
// that fails here is a deployment problem, not a per-job one.
var registrySchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"templates"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string"},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"templates": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"key", "text"},
				"properties": map[string]interface{}{
					"key":         map[string]interface{}{"type": "string", "minLength": 1},
					"description": map[string]interface{}{"type": "string"},
					"text":        map[string]interface{}{"type": "string"},
					"params": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"channels": map[string]interface{}{
						"type":                 "object",
						"additionalProperties": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	},
}
