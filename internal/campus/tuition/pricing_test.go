// internal/campus/tuition/pricing_test.go
package tuition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePricingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPricing(t *testing.T) {
	path := writePricingFile(t, `2024_2025:
  БИЗНЕСИЙН СУРГУУЛЬ:
    general: 64900
    major: 86500
  ХУУЛЬ ЗҮЙН СУРГУУЛЬ:
    general: 64900
2025_2026:
  БИЗНЕСИЙН СУРГУУЛЬ:
    general: 71400
    major: 95200
`)

	table, err := LoadPricing(path)
	require.NoError(t, err)

	assert.True(t, table.HasGroup("2024_2025"))
	assert.True(t, table.HasGroup("2025_2026"))
	assert.False(t, table.HasGroup("before_2024_2025"))

	assert.True(t, table.HasFaculty("2024_2025", "БИЗНЕСИЙН СУРГУУЛЬ"))
	assert.False(t, table.HasFaculty("2024_2025", "ИНЖЕНЕР, ТЕХНОЛОГИЙН СУРГУУЛЬ"))
	assert.False(t, table.HasFaculty("missing", "БИЗНЕСИЙН СУРГУУЛЬ"))

	rates := table["2024_2025"]["БИЗНЕСИЙН СУРГУУЛЬ"]
	require.NotNil(t, rates.General)
	require.NotNil(t, rates.Major)
	assert.Equal(t, 64900.0, *rates.General)
	assert.Equal(t, 86500.0, *rates.Major)

	// A row may omit a rate; the key still exists for faculty validation.
	partial := table["2024_2025"]["ХУУЛЬ ЗҮЙН СУРГУУЛЬ"]
	require.NotNil(t, partial.General)
	assert.Nil(t, partial.Major)
}

func TestLoadPricing_MissingFile(t *testing.T) {
	_, err := LoadPricing(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRICING_LOAD_FAILED")
}

func TestLoadPricing_MalformedYaml(t *testing.T) {
	path := writePricingFile(t, "2024_2025: [not, a, mapping]\n")
	_, err := LoadPricing(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRICING_LOAD_FAILED")
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		{"float64", 12.5, 12.5, true},
		{"int", 10, 10, true},
		{"numeric string", "15", 15, true},
		{"decimal comma", "7,5", 7.5, true},
		{"padded string", "  12  ", 12, true},
		{"nil", nil, 0, false},
		{"word", "арав", 0, false},
		{"bool", true, 0, false},
		{"empty string", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}
