package domain

import (
	"fmt"
	"strings"
)

// Status describes whether a conversation still has questions to answer.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Session is the persisted progress of one conversation through a catalog.
// The engine receives a copy and returns a new one; it never mutates the caller's value.
type Session struct {
	// CurrentStep is the index of the question the next answer is graded against.
	CurrentStep int `json:"currentStep"`

	// ScoreTotal is the running sum of awarded points.
	ScoreTotal int `json:"scoreTotal"`

	// Status is in_progress until every question is answered.
	Status Status `json:"status"`
}

// NewSession returns the initial state of a conversation.
func NewSession() Session {
	return Session{Status: StatusInProgress}
}

// Done reports whether the session reached its terminal state.
func (s Session) Done() bool {
	return s.Status == StatusDone
}

// SessionKey builds the store key of a conversation.
// The conversation id is expected to be normalized already. The tenant id must not
// contain ':', otherwise two tenants could share a key; callers check it with
// scoring.CheckIdentifiers.
func SessionKey(tenantID, conversationID string) string {
	return tenantID + ":" + conversationID
}

// ParseSessionKey splits a key produced by SessionKey.
func ParseSessionKey(key string) (tenantID, conversationID string, err error) {
	tenantID, conversationID, ok := strings.Cut(key, ":")
	if !ok || tenantID == "" || conversationID == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSessionKey, key)
	}
	return tenantID, conversationID, nil
}
