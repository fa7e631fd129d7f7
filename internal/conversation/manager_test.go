package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/TeamDman/Ehyaioess/internal/models"
)

type ManagerTestSuite struct {
	suite.Suite
	mgr    *Manager
	events []Event
	unsub  func()
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) SetupTest() {
	s.mgr = NewManager(zaptest.NewLogger(s.T()))
	s.events = nil
	s.unsub = s.mgr.Events().Subscribe(func(ev Event) { s.events = append(s.events, ev) })
}

func (s *ManagerTestSuite) TearDownTest() {
	s.unsub()
}

func (s *ManagerTestSuite) kinds() []EventKind {
	out := make([]EventKind, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (s *ManagerTestSuite) TestCreateConversation() {
	conv, err := s.mgr.CreateConversation("  Demo  ")
	s.Require().NoError(err)
	s.Equal("Demo", conv.Title)
	s.Empty(conv.History)

	untitled, err := s.mgr.CreateConversation("")
	s.Require().NoError(err)
	s.Equal(models.DefaultConversationTitle, untitled.Title)

	s.Require().Len(s.events, 2)
	s.Equal(Event{Kind: EventConversationAdded, ConversationID: conv.ID, Title: "Demo"}, s.events[0])

	all := s.mgr.GetConversations()
	s.Require().Len(all, 2)
	s.Equal(conv.ID, all[0].ID)
	s.Equal(untitled.ID, all[1].ID)

	s.Equal(map[string]string{conv.ID: "Demo", untitled.ID: models.DefaultConversationTitle}, s.mgr.ListConversationTitles())
}

func (s *ManagerTestSuite) TestGetConversationNotFound() {
	_, err := s.mgr.GetConversation("missing")
	s.ErrorIs(err, ErrConversationNotFound)
}

func (s *ManagerTestSuite) TestSnapshotsAreIsolated() {
	conv, err := s.mgr.CreateConversation("Demo")
	s.Require().NoError(err)

	conv.Title = "mutated"
	conv.History = append(conv.History, models.NewMessage(conv.ID, models.RoleUser, "sneaky"))

	fresh, err := s.mgr.GetConversation(conv.ID)
	s.Require().NoError(err)
	s.Equal("Demo", fresh.Title)
	s.Empty(fresh.History)
}

func (s *ManagerTestSuite) TestSaveMessageKeepsTurnOrderAndLinkage() {
	conv, err := s.mgr.CreateConversation("Demo")
	s.Require().NoError(err)

	for _, step := range []struct {
		role    models.AuthorRole
		content string
	}{
		{models.RoleSystem, "be brief"},
		{models.RoleUser, "hi"},
		{models.RoleAssistant, "hello"},
	} {
		msg, err := s.mgr.SaveMessage(conv.ID, step.role, step.content)
		s.Require().NoError(err)
		s.Equal(conv.ID, msg.ConversationID)
		s.NotEmpty(msg.ID)
	}

	got, err := s.mgr.GetConversation(conv.ID)
	s.Require().NoError(err)
	s.Require().NoError(got.Validate())
	s.Require().Len(got.History, 3)
	s.Equal([]string{"be brief", "hi", "hello"},
		[]string{got.History[0].Content, got.History[1].Content, got.History[2].Content})

	last := s.events[len(s.events)-1]
	s.Equal(EventConversationMessageAdded, last.Kind)
	s.Require().NotNil(last.Message)
	s.Equal(models.RoleAssistant, last.Message.Author)
	s.Equal("hello", last.Message.Content)
}

func (s *ManagerTestSuite) TestSaveMessageErrors() {
	conv, err := s.mgr.CreateConversation("Demo")
	s.Require().NoError(err)

	_, err = s.mgr.SaveMessage(conv.ID, models.AuthorRole("narrator"), "x")
	s.ErrorIs(err, models.ErrInvalidAuthorRole)

	_, err = s.mgr.SaveMessage("missing", models.RoleUser, "x")
	s.ErrorIs(err, ErrConversationNotFound)

	s.Equal([]EventKind{EventConversationAdded}, s.kinds())
}

func (s *ManagerTestSuite) TestUpdateConversationTitle() {
	conv, err := s.mgr.CreateConversation("Demo")
	s.Require().NoError(err)

	s.Require().NoError(s.mgr.UpdateConversationTitle(conv.ID, "  Demo "))
	s.Equal([]EventKind{EventConversationAdded}, s.kinds(), "unchanged title must not emit")

	s.Require().NoError(s.mgr.UpdateConversationTitle(conv.ID, " Renamed "))
	got, err := s.mgr.GetConversation(conv.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Title)
	s.Equal(Event{Kind: EventConversationTitleChanged, ConversationID: conv.ID, Title: "Renamed"}, s.events[len(s.events)-1])

	s.Require().NoError(s.mgr.UpdateConversationTitle(conv.ID, ""))
	got, _ = s.mgr.GetConversation(conv.ID)
	s.Equal(models.DefaultConversationTitle, got.Title)

	s.ErrorIs(s.mgr.UpdateConversationTitle("missing", "x"), ErrConversationNotFound)
}

func (s *ManagerTestSuite) TestGetConversationHistoryLimit() {
	conv, err := s.mgr.CreateConversation("Demo")
	s.Require().NoError(err)
	for _, c := range []string{"1", "2", "3", "4"} {
		_, err := s.mgr.SaveMessage(conv.ID, models.RoleUser, c)
		s.Require().NoError(err)
	}

	last2, err := s.mgr.GetConversationHistory(conv.ID, 2)
	s.Require().NoError(err)
	s.Require().Len(last2, 2)
	s.Equal("3", last2[0].Content)
	s.Equal("4", last2[1].Content)

	all, err := s.mgr.GetConversationHistory(conv.ID, 0)
	s.Require().NoError(err)
	s.Len(all, 4)

	_, err = s.mgr.GetConversationHistory("missing", 1)
	s.ErrorIs(err, ErrConversationNotFound)
}

func (s *ManagerTestSuite) TestAddConversation() {
	conv := &models.Conversation{ID: "c1", Title: "Imported"}
	conv.History = []models.ConversationMessage{
		{ConversationID: "c1", ID: "m1", Author: models.RoleUser, Content: "hi"},
	}
	added, err := s.mgr.AddConversation(conv)
	s.Require().NoError(err)
	s.Equal("Imported", added.Title)

	_, err = s.mgr.AddConversation(conv)
	s.ErrorIs(err, ErrConversationExists)

	foreign := &models.Conversation{ID: "c2", History: []models.ConversationMessage{
		{ConversationID: "c1", ID: "m1", Author: models.RoleUser},
	}}
	_, err = s.mgr.AddConversation(foreign)
	s.ErrorIs(err, models.ErrForeignMessage)

	dup := &models.Conversation{ID: "c3", History: []models.ConversationMessage{
		{ConversationID: "c3", ID: "m1", Author: models.RoleUser},
		{ConversationID: "c3", ID: "m1", Author: models.RoleAssistant},
	}}
	_, err = s.mgr.AddConversation(dup)
	s.ErrorIs(err, models.ErrDuplicateMessageID)

	_, err = s.mgr.AddConversation(nil)
	s.Error(err)
}

func (s *ManagerTestSuite) TestDeleteConversation() {
	a, _ := s.mgr.CreateConversation("a")
	b, _ := s.mgr.CreateConversation("b")

	s.Require().NoError(s.mgr.DeleteConversation(a.ID))
	s.ErrorIs(s.mgr.DeleteConversation(a.ID), ErrConversationNotFound)

	all := s.mgr.GetConversations()
	s.Require().Len(all, 1)
	s.Equal(b.ID, all[0].ID)
	s.Equal(EventConversationDeleted, s.events[len(s.events)-1].Kind)
}

func TestManager_WithDefaultTitle(t *testing.T) {
	m := NewManager(nil, WithDefaultTitle("  New chat "))
	conv, err := m.CreateConversation("")
	require.NoError(t, err)
	assert.Equal(t, "New chat", conv.Title)

	m = NewManager(nil, WithDefaultTitle("   "))
	conv, err = m.CreateConversation("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConversationTitle, conv.Title)
}
