package conversation

import "github.com/TeamDman/Ehyaioess/internal/models"

type EventKind string

const (
	EventConversationAdded        EventKind = "new_conversation"
	EventConversationTitleChanged EventKind = "conversation_title_changed"
	EventConversationMessageAdded EventKind = "conversation_message_added"
	EventConversationDeleted      EventKind = "conversation_deleted"
)

// Event is published by the Manager after every successful mutation.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind           EventKind                   `json:"kind"`
	ConversationID string                      `json:"conversation_id"`
	Title          string                      `json:"title,omitempty"`
	Message        *models.ConversationMessage `json:"message,omitempty"`
}
