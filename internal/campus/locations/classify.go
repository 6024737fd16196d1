// internal/campus/locations/classify.go
package locations

import (
	"strings"

	"campus-assistant-workers/internal/models"
)

// DetectKind classifies text as referring to a dormitory or an academic
// building by keyword. Dorm keywords win when both families are present.
func DetectKind(text string) (models.LocationKind, bool) {
	t := Normalize(text)
	switch {
	case strings.Contains(t, "дотуур") || strings.Contains(t, "dorm"):
		return models.LocationKindDorm, true
	case strings.Contains(t, "хичээл") || strings.Contains(t, "сургуулийн") || strings.Contains(t, "academic"):
		return models.LocationKindClass, true
	}
	return "", false
}
