// internal/models/location.go
package models

// LocationKind distinguishes dormitories from academic buildings.
type LocationKind string

const (
	LocationKindDorm  LocationKind = "dorm"
	LocationKindClass LocationKind = "class"
)

// LocationRecord is one entry from the campus location catalog.
// Number is nil for places that are not addressed by a building number
// (the library, the sports hall and similar).
type LocationRecord struct {
	Kind    LocationKind `json:"kind,omitempty" yaml:"kind"`
	Number  *int         `json:"number,omitempty" yaml:"number"`
	Title   string       `json:"title" yaml:"title"`
	URL     string       `json:"url,omitempty" yaml:"url"`
	Aliases []string     `json:"aliases,omitempty" yaml:"aliases"`
}

// LocationState carries the disambiguation context between two turns of
// the location dialogue: the user typed a bare number and we are waiting
// to hear whether they meant a dorm or an academic building.
type LocationState struct {
	PendingNumber string `json:"pendingNumber,omitempty"`
	PlaceType     string `json:"placeType,omitempty"`
}
