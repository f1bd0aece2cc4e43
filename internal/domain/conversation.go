package domain

// ConversationState is the single persisted record for a recipient's
// in-progress conversation. At most one exists per recipient; it is
// overwritten wholesale on every transition and deleted when the
// conversation ends.
type ConversationState struct {
	Recipient       string
	ConversationKey string
	State           string
	Data            map[string]any
}
