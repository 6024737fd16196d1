// internal/models/tuition.go
package models

// TuitionSelection is the partially filled tuition form. Credit fields are
// nil until the user has provided them so that zero credits stays
// distinguishable from "not answered yet".
type TuitionSelection struct {
	AdmissionGroup string   `json:"admissionGroup,omitempty"`
	Faculty        string   `json:"faculty,omitempty"`
	GeneralCredits *float64 `json:"generalCredits,omitempty"`
	MajorCredits   *float64 `json:"majorCredits,omitempty"`
}

// TuitionRun is one completed tuition calculation as persisted to Postgres.
type TuitionRun struct {
	ID             string  `json:"id"`
	IdentityID     int64   `json:"identityId"`
	AdmissionGroup string  `json:"admissionGroup"`
	Faculty        string  `json:"faculty"`
	GeneralCredits float64 `json:"generalCredits"`
	MajorCredits   float64 `json:"majorCredits"`
	GeneralRate    float64 `json:"generalRate"`
	MajorRate      float64 `json:"majorRate"`
	TotalTuition   float64 `json:"totalTuition"`
	CreatedAt      string  `json:"createdAt"`
}
