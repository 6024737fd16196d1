// internal/campus/grading/grade.go
package grading

// Grade pairs a letter grade with its quality points.
type Grade struct {
	Letter string  `json:"letter"`
	Points float64 `json:"points"`
}

// ScoreToGrade maps a 0-100 score onto the university grade table.
// Note the C- band (70-74) carries 1.9 points while the lower C band
// (65-69) carries 2.0; the table is kept exactly as published.
func ScoreToGrade(score float64) Grade {
	switch {
	case score >= 90:
		return Grade{Letter: "A+", Points: 4.0}
	case score >= 85:
		return Grade{Letter: "A-", Points: 3.7}
	case score >= 80:
		return Grade{Letter: "B+", Points: 3.3}
	case score >= 75:
		return Grade{Letter: "B", Points: 3.0}
	case score >= 70:
		return Grade{Letter: "C-", Points: 1.9}
	case score >= 65:
		return Grade{Letter: "C", Points: 2.0}
	case score >= 60:
		return Grade{Letter: "D", Points: 1.0}
	default:
		return Grade{Letter: "F", Points: 0.0}
	}
}
