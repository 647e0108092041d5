package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventReset            EventType = "reset"
	EventAnswerScored     EventType = "answer_scored"
	EventCompleted        EventType = "completed"
	EventValidationFailed EventType = "validation_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"type"`
	TenantID       string    `json:"tenant_id"`
	ConversationID string    `json:"conversation_id"`
}

// ResetEvent is emitted when an empty answer restarts a conversation.
type ResetEvent struct {
	EventBase
	CatalogSize int `json:"catalog_size"`
}

// AnswerEvent is emitted when an answer is graded against a question.
type AnswerEvent struct {
	EventBase
	Step       int    `json:"step"`
	QuestionID string `json:"question_id,omitempty"`
	Bucket     Bucket `json:"bucket"`
	Points     int    `json:"points"`
	ScoreTotal int    `json:"score_total"`
}

// CompletionEvent is emitted whenever a final classification is returned.
// Replay is true when the session was already done before the call.
type CompletionEvent struct {
	EventBase
	Classification Bucket `json:"classification"`
	ScoreTotal     int    `json:"score_total"`
	Replay         bool   `json:"replay,omitempty"`
}

// ValidationEvent is emitted when a request is rejected for missing identifiers.
type ValidationEvent struct {
	EventBase
	Message string `json:"message"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnReset            func(context.Context, *ResetEvent)
	OnAnswerScored     func(context.Context, *AnswerEvent)
	OnCompleted        func(context.Context, *CompletionEvent)
	OnValidationFailed func(context.Context, *ValidationEvent)
}
