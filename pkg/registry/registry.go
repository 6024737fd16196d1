// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// LoadRegistry reads and schema-validates a replies.json file. Duplicate
// keys are rejected so a lookup is never ambiguous.
func LoadRegistry(path string) (*ReplyRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(registrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("registry schema violations: %v", errs)
	}

	var reg ReplyRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	reg.byKey = make(map[string]int, len(reg.Templates))
	for i, t := range reg.Templates {
		if _, dup := reg.byKey[t.Key]; dup {
			return nil, fmt.Errorf("duplicate template key %q", t.Key)
		}
		reg.byKey[t.Key] = i
	}

	return &reg, nil
}

// Template looks up a reply template by its utter_* key.
func (r *ReplyRegistry) Template(key string) (*ReplyTemplate, bool) {
	idx, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return &r.Templates[idx], true
}

// Keys returns the registered template keys in file order.
func (r *ReplyRegistry) Keys() []string {
	keys := make([]string, 0, len(r.Templates))
	for _, t := range r.Templates {
		keys = append(keys, t.Key)
	}
	return keys
}

// Render produces the reply text for a channel. Channel overrides beat
// the default text; every declared param must be supplied and fills its
// {{name}} placeholders.
func (t *ReplyTemplate) Render(params map[string]string, channel string) (string, error) {
	if err := t.validateParams(params); err != nil {
		return "", err
	}

	text := t.Text
	if channel != "" {
		if override, ok := t.Channels[channel]; ok {
			text = override
		}
	}

	for name, value := range params {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text, nil
}

func (t *ReplyTemplate) validateParams(params map[string]string) error {
	if len(t.Params) == 0 {
		return nil
	}

	properties := map[string]interface{}{}
	required := make([]interface{}, 0, len(t.Params))
	for _, name := range t.Params {
		properties[name] = map[string]interface{}{"type": "string"}
		required = append(required, name)
	}

	doc := map[string]interface{}{}
	for k, v := range params {
		doc[k] = v
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		}),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate params: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("params validation failed for template %q: %v", t.Key, errs)
	}
	return nil
}
