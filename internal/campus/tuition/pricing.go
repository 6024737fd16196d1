// internal/campus/tuition/pricing.go
package tuition

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"campus-assistant-workers/internal/common/errors"
)

// Rates holds the per-credit prices for one faculty. The fields are
// pointers because pricing.yml rows may omit either key; a missing rate
// must surface as pricing-not-found at calculation time, not as a silent
// zero.
type Rates struct {
	General *float64 `yaml:"general"`
	Major   *float64 `yaml:"major"`
}

// PricingTable maps admission group → faculty → rates.
type PricingTable map[string]map[string]Rates

// LoadPricing reads pricing.yml once at startup.
func LoadPricing(path string) (PricingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewPricingLoadFailedError(fmt.Errorf("read %s: %w", path, err))
	}

	table := PricingTable{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.NewPricingLoadFailedError(fmt.Errorf("parse %s: %w", path, err))
	}
	return table, nil
}

// HasGroup reports whether the admission group exists in the table.
func (t PricingTable) HasGroup(group string) bool {
	_, ok := t[group]
	return ok
}

// HasFaculty reports whether the faculty is listed under the group. It
// only checks the key; whether the row carries usable rates is decided by
// Calculate.
func (t PricingTable) HasFaculty(group, faculty string) bool {
	_, ok := t[group][faculty]
	return ok
}

// ParseNumber coerces a job variable into a float64. Strings accept a
// decimal comma ("7,5" reads as 7.5). Returns false for anything that does
// not read as a number.
func ParseNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	s := strings.ReplaceAll(strings.TrimSpace(fmt.Sprint(value)), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
