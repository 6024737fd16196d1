// internal/campus/locations/classify_test.go
package locations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campus-assistant-workers/internal/models"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.LocationKind
		found    bool
	}{
		{
			name:     "dorm keyword",
			input:    "дотуур байр хаана вэ",
			expected: models.LocationKindDorm,
			found:    true,
		},
		{
			name:     "dorm keyword in english",
			input:    "where is the dorm",
			expected: models.LocationKindDorm,
			found:    true,
		},
		{
			name:     "class keyword",
			input:    "хичээлийн байр",
			expected: models.LocationKindClass,
			found:    true,
		},
		{
			name:     "class via сургуулийн",
			input:    "сургуулийн төв байр",
			expected: models.LocationKindClass,
			found:    true,
		},
		{
			name:     "class keyword in english",
			input:    "academic building 2",
			expected: models.LocationKindClass,
			found:    true,
		},
		{
			name:     "dorm wins when both match",
			input:    "дотуур байр хичээлийн байрны хажууд",
			expected: models.LocationKindDorm,
			found:    true,
		},
		{
			name:  "no keyword",
			input: "номын сан",
			found: false,
		},
		{
			name:  "empty text",
			input: "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := DetectKind(tt.input)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, kind)
			}
		})
	}
}

func TestDetectKind_CaseInsensitive(t *testing.T) {
	upper, upperOK := DetectKind("ДОТУУР БАЙР")
	lower, lowerOK := DetectKind("дотуур байр")

	assert.True(t, upperOK)
	assert.True(t, lowerOK)
	assert.Equal(t, lower, upper)
}
