// internal/workers/location/resolve-location/models.go
package resolvelocation

// Input is the job variable payload for the resolve-location task.
type Input struct {
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
	Intent   string `json:"intent,omitempty"`
}

// Output is merged back into the process instance on completion.
type Output struct {
	Replies      []string `json:"replies"`
	AskPlaceType bool     `json:"askPlaceType"`
	Resolved     bool     `json:"resolved"`
	PlaceTitle   string   `json:"placeTitle,omitempty"`
	PlaceURL     string   `json:"placeUrl,omitempty"`
}
