package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

const DefaultConversationTitle = "Untitled Conversation"

type ConversationMessage struct {
	ConversationID string     `json:"conversation_id"`
	ID             string     `json:"id"`
	Author         AuthorRole `json:"author"`
	Content        string     `json:"content"`
}

// Conversation is a titled, ordered sequence of messages. History order is turn order.
type Conversation struct {
	ID      string                `json:"id"`
	Title   string                `json:"title"`
	History []ConversationMessage `json:"history"`
}

// NewConversation returns an empty conversation with a fresh id. A blank
// title falls back to DefaultConversationTitle.
func NewConversation(title string) *Conversation {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultConversationTitle
	}
	return &Conversation{
		ID:      uuid.NewString(),
		Title:   title,
		History: []ConversationMessage{},
	}
}

func NewMessage(conversationID string, author AuthorRole, content string) ConversationMessage {
	return ConversationMessage{
		ConversationID: conversationID,
		ID:             uuid.NewString(),
		Author:         author,
		Content:        content,
	}
}

// Validate checks the back-links and id uniqueness of the history.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("conversation: %w", ErrEmptyID)
	}
	seen := make(map[string]struct{}, len(c.History))
	for i, msg := range c.History {
		if msg.ID == "" {
			return fmt.Errorf("history[%d]: %w", i, ErrEmptyID)
		}
		if msg.ConversationID != c.ID {
			return fmt.Errorf("history[%d] (%s): %w: %q", i, msg.ID, ErrForeignMessage, msg.ConversationID)
		}
		if !msg.Author.Valid() {
			return fmt.Errorf("history[%d] (%s): %w: %q", i, msg.ID, ErrInvalidAuthorRole, string(msg.Author))
		}
		if _, dup := seen[msg.ID]; dup {
			return fmt.Errorf("history[%d]: %w: %s", i, ErrDuplicateMessageID, msg.ID)
		}
		seen[msg.ID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy. A nil receiver clones to nil.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.History = make([]ConversationMessage, len(c.History))
	copy(out.History, c.History)
	return &out
}

func (c *Conversation) LatestMessage() (ConversationMessage, bool) {
	if len(c.History) == 0 {
		return ConversationMessage{}, false
	}
	return c.History[len(c.History)-1], true
}

// ChatMessages converts the history to langchaingo chat messages, oldest first.
func (c *Conversation) ChatMessages() ([]llms.ChatMessage, error) {
	out := make([]llms.ChatMessage, 0, len(c.History))
	for _, msg := range c.History {
		switch msg.Author {
		case RoleSystem:
			out = append(out, llms.SystemChatMessage{Content: msg.Content})
		case RoleAssistant:
			out = append(out, llms.AIChatMessage{Content: msg.Content})
		case RoleUser:
			out = append(out, llms.HumanChatMessage{Content: msg.Content})
		default:
			return nil, fmt.Errorf("message %s: %w: %q", msg.ID, ErrInvalidAuthorRole, string(msg.Author))
		}
	}
	return out, nil
}
