// internal/models/grading.go
package models

// CourseEntry is a single confirmed course in a GPA session.
type CourseEntry struct {
	Credit float64 `json:"credit"`
	Score  float64 `json:"score"`
}

// GpaState is the collection state of the GPA dialogue. CurrentCourseIndex
// is 1-based; CurrentCredit/CurrentScore hold the values captured for the
// course currently being entered and are nil until the user supplies them.
type GpaState struct {
	NumberOfCourses    int           `json:"numberOfCourses,omitempty"`
	CurrentCourseIndex int           `json:"currentCourseIndex,omitempty"`
	CurrentCredit      *float64      `json:"currentCredit,omitempty"`
	CurrentScore       *float64      `json:"currentScore,omitempty"`
	Courses            []CourseEntry `json:"courses,omitempty"`
}
