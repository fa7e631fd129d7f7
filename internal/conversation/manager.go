// Package conversation owns the set of known conversations and keeps the
// viewed-conversation store in step with them.
package conversation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/TeamDman/Ehyaioess/internal/models"
	"github.com/TeamDman/Ehyaioess/internal/state"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationExists   = errors.New("conversation already exists")
)

// Manager is an in-memory conversation registry. It is the only writer of the
// conversations it holds and hands out deep copies, so callers can keep what
// they get without seeing later changes.
type Manager struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	order         []string
	defaultTitle  string

	events *state.Topic[Event]
	logger *zap.Logger
}

type ManagerOption func(*Manager)

// WithDefaultTitle overrides the title given to conversations created without one.
func WithDefaultTitle(title string) ManagerOption {
	return func(m *Manager) {
		if t := strings.TrimSpace(title); t != "" {
			m.defaultTitle = t
		}
	}
}

func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		conversations: make(map[string]*models.Conversation),
		defaultTitle:  models.DefaultConversationTitle,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.events = state.NewTopic[Event](state.WithLogger(logger), state.WithName("conversation_events"))
	return m
}

// Events is where mutations are announced. Subscribers run after the
// manager's lock has been released and may call back into it.
func (m *Manager) Events() *state.Topic[Event] { return m.events }

func (m *Manager) normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return m.defaultTitle
	}
	return title
}

func (m *Manager) CreateConversation(title string) (*models.Conversation, error) {
	conv := models.NewConversation(m.normalizeTitle(title))

	m.mu.Lock()
	if _, ok := m.conversations[conv.ID]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrConversationExists, conv.ID)
	}
	m.conversations[conv.ID] = conv
	m.order = append(m.order, conv.ID)
	snapshot := conv.Clone()
	m.mu.Unlock()

	m.logger.Info("Created conversation",
		zap.String("conversationID", conv.ID),
		zap.String("title", conv.Title))
	m.events.Publish(Event{Kind: EventConversationAdded, ConversationID: conv.ID, Title: conv.Title})
	return snapshot, nil
}

// AddConversation registers a conversation built elsewhere. It must pass Validate.
func (m *Manager) AddConversation(conv *models.Conversation) (*models.Conversation, error) {
	if conv == nil {
		return nil, fmt.Errorf("add conversation: %w", models.ErrEmptyID)
	}
	if err := conv.Validate(); err != nil {
		return nil, fmt.Errorf("add conversation: %w", err)
	}
	owned := conv.Clone()
	owned.Title = m.normalizeTitle(owned.Title)

	m.mu.Lock()
	if _, ok := m.conversations[owned.ID]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrConversationExists, owned.ID)
	}
	m.conversations[owned.ID] = owned
	m.order = append(m.order, owned.ID)
	snapshot := owned.Clone()
	m.mu.Unlock()

	m.logger.Info("Added conversation",
		zap.String("conversationID", owned.ID),
		zap.Int("messages", len(owned.History)))
	m.events.Publish(Event{Kind: EventConversationAdded, ConversationID: owned.ID, Title: owned.Title})
	return snapshot, nil
}

func (m *Manager) GetConversation(id string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return conv.Clone(), nil
}

// GetConversations returns every conversation, oldest first.
func (m *Manager) GetConversations() []*models.Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Conversation, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.conversations[id].Clone())
	}
	return out
}

func (m *Manager) ListConversationTitles() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	titles := make(map[string]string, len(m.conversations))
	for id, conv := range m.conversations {
		titles[id] = conv.Title
	}
	return titles
}

// UpdateConversationTitle sets a trimmed title. Setting the current title again is a no-op.
func (m *Manager) UpdateConversationTitle(id, title string) error {
	title = m.normalizeTitle(title)

	m.mu.Lock()
	conv, ok := m.conversations[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	if conv.Title == title {
		m.mu.Unlock()
		return nil
	}
	conv.Title = title
	m.mu.Unlock()

	m.logger.Debug("Renamed conversation",
		zap.String("conversationID", id),
		zap.String("title", title))
	m.events.Publish(Event{Kind: EventConversationTitleChanged, ConversationID: id, Title: title})
	return nil
}

// SaveMessage appends a message to the end of a conversation's history.
func (m *Manager) SaveMessage(conversationID string, author models.AuthorRole, content string) (*models.ConversationMessage, error) {
	if !author.Valid() {
		return nil, fmt.Errorf("save message: %w: %q", models.ErrInvalidAuthorRole, string(author))
	}
	msg := models.NewMessage(conversationID, author, content)

	m.mu.Lock()
	conv, ok := m.conversations[conversationID]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("save message: %w: %s", ErrConversationNotFound, conversationID)
	}
	for _, existing := range conv.History {
		if existing.ID == msg.ID {
			m.mu.Unlock()
			return nil, fmt.Errorf("save message: %w: %s", models.ErrDuplicateMessageID, msg.ID)
		}
	}
	conv.History = append(conv.History, msg)
	m.mu.Unlock()

	m.logger.Debug("Saved message",
		zap.String("conversationID", conversationID),
		zap.String("messageID", msg.ID),
		zap.Stringer("author", author))
	saved := msg
	m.events.Publish(Event{Kind: EventConversationMessageAdded, ConversationID: conversationID, Message: &saved})
	return &msg, nil
}

// GetConversationHistory returns the last limit messages in turn order. A
// non-positive limit returns the whole history.
func (m *Manager) GetConversationHistory(conversationID string, limit int) ([]models.ConversationMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	history := conv.History
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]models.ConversationMessage, len(history))
	copy(out, history)
	return out, nil
}

func (m *Manager) DeleteConversation(id string) error {
	m.mu.Lock()
	if _, ok := m.conversations[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	delete(m.conversations, id)
	for i, cur := range m.order {
		if cur == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.logger.Info("Deleted conversation", zap.String("conversationID", id))
	m.events.Publish(Event{Kind: EventConversationDeleted, ConversationID: id})
	return nil
}
