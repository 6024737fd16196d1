// internal/workers/admission/apply-menu-selection/models.go
package applymenuselection

// Input is the job variable payload for the apply-menu-selection task.
// Action is the button payload name from the chat menu.
type Input struct {
	SenderID string `json:"senderId"`
	Action   string `json:"action"`
}

// Output reports which tuition slot the selection filled.
type Output struct {
	SlotName  string `json:"slotName"`
	SlotValue string `json:"slotValue"`
}
