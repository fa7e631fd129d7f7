package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// AuthorRole says who wrote a message. The set is closed.
type AuthorRole string

const (
	RoleSystem    AuthorRole = "system"
	RoleAssistant AuthorRole = "assistant"
	RoleUser      AuthorRole = "user"
)

// AuthorRoles lists every valid role.
var AuthorRoles = []AuthorRole{RoleSystem, RoleAssistant, RoleUser}

func (r AuthorRole) Valid() bool {
	switch r {
	case RoleSystem, RoleAssistant, RoleUser:
		return true
	}
	return false
}

func (r AuthorRole) String() string { return string(r) }

// ParseAuthorRole accepts "system", "assistant" or "user", ignoring case and surrounding space.
func ParseAuthorRole(s string) (AuthorRole, error) {
	r := AuthorRole(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAuthorRole, s)
	}
	return r, nil
}

func (r AuthorRole) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAuthorRole, string(r))
	}
	return json.Marshal(string(r))
}

func (r *AuthorRole) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAuthorRole, b)
	}
	if !AuthorRole(s).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAuthorRole, s)
	}
	*r = AuthorRole(s)
	return nil
}

// ChatMessageType maps the role onto langchaingo's message type vocabulary.
func (r AuthorRole) ChatMessageType() (llms.ChatMessageType, error) {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem, nil
	case RoleAssistant:
		return llms.ChatMessageTypeAI, nil
	case RoleUser:
		return llms.ChatMessageTypeHuman, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAuthorRole, string(r))
}

// RoleFromChatMessageType is the inverse of ChatMessageType. Generic, function
// and tool messages have no author role.
func RoleFromChatMessageType(t llms.ChatMessageType) (AuthorRole, error) {
	switch t {
	case llms.ChatMessageTypeSystem:
		return RoleSystem, nil
	case llms.ChatMessageTypeAI:
		return RoleAssistant, nil
	case llms.ChatMessageTypeHuman:
		return RoleUser, nil
	}
	return "", fmt.Errorf("%w: chat message type %q", ErrInvalidAuthorRole, string(t))
}
