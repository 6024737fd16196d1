// internal/campus/tuition/calculate.go
package tuition

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/models"
)

// Admission intents arrive as button payloads; each maps to the group key
// used by pricing.yml.
var intentToGroup = map[string]string{
	"choose_admission_before_2024_2025": "before_2024_2025",
	"choose_admission_2024_2025":        "2024_2025",
	"choose_admission_2025_2026":        "2025_2026",
}

var allowedGroups = map[string]struct{}{
	"before_2024_2025": {},
	"2024_2025":        {},
	"2025_2026":        {},
}

var groupLabels = map[string]string{
	"before_2024_2025": "2024–2025 оноос өмнө",
	"2024_2025":        "2024–2025",
	"2025_2026":        "2025–2026",
}

// GroupFromIntent maps an admission button intent to its group key.
func GroupFromIntent(intent string) (string, bool) {
	group, ok := intentToGroup[intent]
	return group, ok
}

// IsAllowedGroup reports whether the value is one of the known admission
// groups.
func IsAllowedGroup(group string) bool {
	_, ok := allowedGroups[group]
	return ok
}

// GroupLabel renders the user-facing label for an admission group,
// falling back to the raw key for anything unknown.
func GroupLabel(group string) string {
	if label, ok := groupLabels[group]; ok {
		return label
	}
	return group
}

// Result is a priced tuition calculation.
type Result struct {
	GeneralRate float64 `json:"generalRate"`
	MajorRate   float64 `json:"majorRate"`
	Total       float64 `json:"total"`
	GroupLabel  string  `json:"groupLabel"`
}

// Calculate prices a completed selection against the table. Nil credit
// fields count as zero credits.
func Calculate(sel models.TuitionSelection, table PricingTable) (Result, error) {
	if sel.AdmissionGroup == "" || sel.Faculty == "" {
		return Result{}, errors.NewMissingSelectionError("admission group and faculty are required")
	}

	rates, ok := table[sel.AdmissionGroup][sel.Faculty]
	if !ok || rates.General == nil || rates.Major == nil {
		return Result{}, errors.NewPricingNotFoundError(sel.AdmissionGroup, sel.Faculty)
	}

	result := Result{
		GeneralRate: *rates.General,
		MajorRate:   *rates.Major,
		GroupLabel:  GroupLabel(sel.AdmissionGroup),
	}
	result.Total = creditOrZero(sel.GeneralCredits)*result.GeneralRate +
		creditOrZero(sel.MajorCredits)*result.MajorRate
	return result, nil
}

// FormatBreakdown renders the user-facing calculation block.
func FormatBreakdown(sel models.TuitionSelection, r Result) string {
	genCr := creditOrZero(sel.GeneralCredits)
	majCr := creditOrZero(sel.MajorCredits)

	return fmt.Sprintf("Таны сонголт:\n"+
		"- Элсэлт: %s\n"+
		"- Бүрэлдэхүүн/салбар: %s\n\n"+
		"Тооцоолол:\n"+
		"- Ерөнхий суурь: %s кр × %s ₮ = %s ₮\n"+
		"- Мэргэжлийн суурь/мэргэших: %s кр × %s ₮ = %s ₮\n\n"+
		"✅ Нийт төлөх төлбөр: %s ₮",
		r.GroupLabel, sel.Faculty,
		formatCredits(genCr), FormatMoney(r.GeneralRate), FormatMoney(genCr*r.GeneralRate),
		formatCredits(majCr), FormatMoney(r.MajorRate), FormatMoney(majCr*r.MajorRate),
		FormatMoney(r.Total))
}

// FormatMoney renders an amount in whole tugriks with comma thousands
// separators.
func FormatMoney(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

func creditOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func formatCredits(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
