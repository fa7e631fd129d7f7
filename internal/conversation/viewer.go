package conversation

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/TeamDman/Ehyaioess/internal/models"
	"github.com/TeamDman/Ehyaioess/internal/state"
)

// Viewer keeps a ConversationStore pointed at a fresh snapshot of one
// conversation while the manager changes it underneath.
type Viewer struct {
	manager *Manager
	store   *state.ConversationStore
	logger  *zap.Logger

	mu       sync.Mutex
	viewedID string
	stop     func()
}

func NewViewer(manager *Manager, store *state.ConversationStore, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Viewer{manager: manager, store: store, logger: logger}
	v.stop = manager.Events().Subscribe(v.handle)
	return v
}

// Open puts the current snapshot of id into the store.
func (v *Viewer) Open(id string) error {
	conv, err := v.manager.GetConversation(id)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.viewedID = id
	v.mu.Unlock()

	v.logger.Debug("Viewing conversation", zap.String("conversationID", id))
	v.store.Set(conv)
	return nil
}

// Close empties the store.
func (v *Viewer) Close() {
	v.mu.Lock()
	v.viewedID = ""
	v.mu.Unlock()
	v.store.Set(nil)
}

// ViewedID is the id of the conversation in the store, or "" when none is.
func (v *Viewer) ViewedID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewedID
}

// Stop detaches from the manager. The store keeps its last value.
func (v *Viewer) Stop() {
	v.mu.Lock()
	stop := v.stop
	v.stop = nil
	v.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (v *Viewer) handle(ev Event) {
	v.mu.Lock()
	viewed := v.viewedID
	v.mu.Unlock()
	if viewed == "" || ev.ConversationID != viewed {
		return
	}

	if ev.Kind == EventConversationDeleted {
		v.logger.Debug("Viewed conversation deleted", zap.String("conversationID", viewed))
		v.Close()
		return
	}

	conv, err := v.manager.GetConversation(viewed)
	if errors.Is(err, ErrConversationNotFound) {
		// deletion event for it is still queued behind this one
		return
	}
	if err != nil {
		v.logger.Warn("Failed to refresh viewed conversation", zap.Error(err))
		return
	}
	v.store.Set(conv)
}

// Current returns the store's value; handy for callers holding only the Viewer.
func (v *Viewer) Current() *models.Conversation { return v.store.Get() }
