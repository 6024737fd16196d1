// internal/campus/grading/session.go
package grading

import (
	"fmt"
	"strconv"
	"strings"

	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/models"
)

const (
	minCourses = 1
	maxCourses = 50
	maxCredit  = 30
	maxScore   = 100
)

// Session drives the course-by-course GPA collection over a shared state
// document. Mutations happen in place so the caller persists the same
// struct it handed in.
type Session struct {
	state *models.GpaState
}

func NewSession(state *models.GpaState) *Session {
	return &Session{state: state}
}

// SetCourseCount starts a fresh collection round: index back to 1 and any
// previously confirmed courses discarded. Partial credit/score inputs are
// left alone; the dialogue overwrites them as it collects.
func (s *Session) SetCourseCount(n int) error {
	if n < minCourses || n > maxCourses {
		return errors.NewValidationError("number_of_courses",
			fmt.Sprintf("course count %d outside %d-%d", n, minCourses, maxCourses))
	}
	s.state.NumberOfCourses = n
	s.state.CurrentCourseIndex = 1
	s.state.Courses = nil
	return nil
}

// SetCredit captures the credit value for the course currently being
// entered.
func (s *Session) SetCredit(c float64) error {
	if c <= 0 || c > maxCredit {
		return errors.NewValidationError("current_credit",
			fmt.Sprintf("credit %v outside 0-%d", c, maxCredit))
	}
	s.state.CurrentCredit = &c
	return nil
}

// SetScore confirms the current course. While more courses remain the
// index advances and the per-course inputs clear; on the last course the
// score stays set so the caller can see the round is complete.
func (s *Session) SetScore(score float64) error {
	if score < 0 || score > maxScore {
		return errors.NewValidationError("current_score",
			fmt.Sprintf("score %v outside 0-%d", score, maxScore))
	}

	credit := 0.0
	if s.state.CurrentCredit != nil {
		credit = *s.state.CurrentCredit
	}
	s.state.Courses = append(s.state.Courses, models.CourseEntry{Credit: credit, Score: score})

	next := s.state.CurrentCourseIndex + 1
	if next <= s.state.NumberOfCourses {
		s.state.CurrentCourseIndex = next
		s.state.CurrentCredit = nil
		s.state.CurrentScore = nil
		return nil
	}

	s.state.CurrentScore = &score
	return nil
}

// Done reports whether every announced course has been confirmed.
func (s *Session) Done() bool {
	return s.state.NumberOfCourses > 0 && len(s.state.Courses) >= s.state.NumberOfCourses
}

// Report is the outcome of a finished GPA round.
type Report struct {
	Lines       []string
	TotalCredit float64
	GPA         float64
}

// Finalize grades the confirmed courses, computes the credit-weighted GPA
// and resets the session for the next round. With nothing confirmed it
// resets anyway and reports NOT_FOUND so the dialogue can restart cleanly.
func (s *Session) Finalize() (Report, error) {
	courses := s.state.Courses
	s.reset()

	if len(courses) == 0 {
		return Report{}, errors.NewNotFoundError("gpa courses", "no confirmed courses to grade")
	}

	report := Report{}
	totalPoints := 0.0
	for i, course := range courses {
		grade := ScoreToGrade(course.Score)
		report.Lines = append(report.Lines, fmt.Sprintf("%d. %sкр - %s%% → %s (%.1f)",
			i+1, formatNumber(course.Credit), formatNumber(course.Score), grade.Letter, grade.Points))
		report.TotalCredit += course.Credit
		totalPoints += course.Credit * grade.Points
	}
	if report.TotalCredit > 0 {
		report.GPA = totalPoints / report.TotalCredit
	}
	return report, nil
}

func (s *Session) reset() {
	s.state.NumberOfCourses = 0
	s.state.CurrentCourseIndex = 1
	s.state.CurrentCredit = nil
	s.state.CurrentScore = nil
	s.state.Courses = nil
}

// Format renders the user-facing breakdown block.
func (r Report) Format() string {
	var b strings.Builder
	b.WriteString("📊 Таны дүнгийн задаргаа:\n")
	for _, line := range r.Lines {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n✅ Нийт кредит: ")
	b.WriteString(formatNumber(r.TotalCredit))
	b.WriteString("\n⭐ Нийт GPA: ")
	b.WriteString(fmt.Sprintf("%.2f", r.GPA))
	return b.String()
}

// formatNumber renders a float without a trailing .0 (3 stays 3, 2.5
// stays 2.5).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
