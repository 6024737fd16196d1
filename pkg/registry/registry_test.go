// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validRegistry = `{
	"version": "1.0.0",
	"lastUpdated": "2025-08-20",
	"templates": [
		{
			"key": "utter_greet",
			"description": "Opening greeting",
			"text": "Сайн байна уу! Би кампусын туслах бот байна 🤖"
		},
		{
			"key": "utter_ask_place_type",
			"text": "“хичээлийн байр” эсвэл “дотуур байр” гэж хариулаарай 🙂"
		},
		{
			"key": "utter_course_progress",
			"text": "{{index}}-р хичээл ({{total}}-оос)",
			"params": ["index", "total"]
		},
		{
			"key": "utter_tuition_start",
			"text": "Төлбөр тооцоолъё. Элсэлтийн жилээ сонгоорой.",
			"channels": {
				"messenger": "Төлбөр тооцоолъё 💳 Элсэлтийн жилээ товчноос сонгоорой."
			}
		}
	]
}`

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, validRegistry))

	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
	assert.Len(t, reg.Templates, 4)
	assert.Equal(t, []string{"utter_greet", "utter_ask_place_type", "utter_course_progress", "utter_tuition_start"}, reg.Keys())

	tmpl, ok := reg.Template("utter_greet")
	require.True(t, ok)
	assert.Equal(t, "Сайн байна уу! Би кампусын туслах бот байна 🤖", tmpl.Text)

	_, ok = reg.Template("utter_unknown")
	assert.False(t, ok)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read registry")
}

func TestLoadRegistry_SchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing templates array",
			content: `{"version": "1.0.0"}`,
		},
		{
			name:    "template without text",
			content: `{"templates": [{"key": "utter_greet"}]}`,
		},
		{
			name:    "empty key",
			content: `{"templates": [{"key": "", "text": "hi"}]}`,
		},
		{
			name:    "params not strings",
			content: `{"templates": [{"key": "utter_greet", "text": "hi", "params": [1]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(writeRegistry(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema violations")
		})
	}
}

func TestLoadRegistry_DuplicateKey(t *testing.T) {
	content := `{"templates": [
		{"key": "utter_greet", "text": "a"},
		{"key": "utter_greet", "text": "b"}
	]}`

	_, err := LoadRegistry(writeRegistry(t, content))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template key")
}

func TestReplyTemplate_Render(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, validRegistry))
	require.NoError(t, err)

	t.Run("plain text", func(t *testing.T) {
		tmpl, _ := reg.Template("utter_ask_place_type")
		text, err := tmpl.Render(nil, "")
		require.NoError(t, err)
		assert.Equal(t, "“хичээлийн байр” эсвэл “дотуур байр” гэж хариулаарай 🙂", text)
	})

	t.Run("params substituted", func(t *testing.T) {
		tmpl, _ := reg.Template("utter_course_progress")
		text, err := tmpl.Render(map[string]string{"index": "2", "total": "5"}, "")
		require.NoError(t, err)
		assert.Equal(t, "2-р хичээл (5-оос)", text)
	})

	t.Run("missing required param", func(t *testing.T) {
		tmpl, _ := reg.Template("utter_course_progress")
		_, err := tmpl.Render(map[string]string{"index": "2"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "params validation failed")
	})

	t.Run("channel override", func(t *testing.T) {
		tmpl, _ := reg.Template("utter_tuition_start")
		text, err := tmpl.Render(nil, "messenger")
		require.NoError(t, err)
		assert.Equal(t, "Төлбөр тооцоолъё 💳 Элсэлтийн жилээ товчноос сонгоорой.", text)
	})

	t.Run("unknown channel falls back to default", func(t *testing.T) {
		tmpl, _ := reg.Template("utter_tuition_start")
		text, err := tmpl.Render(nil, "telegram")
		require.NoError(t, err)
		assert.Equal(t, "Төлбөр тооцоолъё. Элсэлтийн жилээ сонгоорой.", text)
	})

	t.Run("extra params are harmless", func(t *testing.T) {
		tmpl, _ := reg.Template("utter_greet")
		text, err := tmpl.Render(map[string]string{"name": "Бат"}, "")
		require.NoError(t, err)
		assert.Equal(t, "Сайн байна уу! Би кампусын туслах бот байна 🤖", text)
	})
}
