// internal/models/conversation.go
package models

// ConversationState is the per-sender state document kept in Redis between
// process instances. Each dialogue keeps its own slice of the document so
// that abandoning one flow never clobbers another.
type ConversationState struct {
	Location LocationState    `json:"location"`
	Gpa      GpaState         `json:"gpa"`
	Tuition  TuitionSelection `json:"tuition"`
}
