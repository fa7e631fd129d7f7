// Package state holds observable in-process values shared between the
// conversation service and whatever is presenting it.
package state

import "github.com/TeamDman/Ehyaioess/internal/models"

// ConversationStore holds the conversation currently being viewed. nil means none.
type ConversationStore = Writable[*models.Conversation]

// NewConversationStore returns a store that starts out empty.
func NewConversationStore(opts ...Option) *ConversationStore {
	return NewWritable[*models.Conversation](nil, append([]Option{WithName("view_conversation")}, opts...)...)
}
