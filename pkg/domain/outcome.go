package domain

import (
	"encoding/json"
	"fmt"
)

// OutcomeKind discriminates the Outcome union.
type OutcomeKind string

const (
	OutcomeAskNext         OutcomeKind = "ask_next"
	OutcomeCompleted       OutcomeKind = "completed"
	OutcomeValidationError OutcomeKind = "validation_error"
)

// Outcome tells the caller what to do after an answer was processed.
// Only the fields relevant to Kind are meaningful.
type Outcome struct {
	Kind OutcomeKind

	// PromptText is set for OutcomeAskNext.
	PromptText string

	// Classification and ScoreTotal are set for OutcomeCompleted.
	Classification Bucket
	ScoreTotal     int

	// Message is set for OutcomeValidationError.
	Message string
}

// AskNext builds an outcome asking the end user the given prompt.
func AskNext(prompt string) Outcome {
	return Outcome{Kind: OutcomeAskNext, PromptText: prompt}
}

// Completed builds a final classification outcome.
func Completed(classification Bucket, score int) Outcome {
	return Outcome{Kind: OutcomeCompleted, Classification: classification, ScoreTotal: score}
}

// Invalid builds a validation error outcome.
func Invalid(message string) Outcome {
	return Outcome{Kind: OutcomeValidationError, Message: message}
}

type outcomeJSON struct {
	Kind           OutcomeKind `json:"kind"`
	PromptText     *string     `json:"promptText,omitempty"`
	Classification Bucket      `json:"classification,omitempty"`
	ScoreTotal     *int        `json:"scoreTotal,omitempty"`
	Message        *string     `json:"message,omitempty"`
}

// MarshalJSON emits only the fields of the active variant.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Kind: o.Kind}
	switch o.Kind {
	case OutcomeAskNext:
		out.PromptText = &o.PromptText
	case OutcomeCompleted:
		out.Classification = o.Classification
		out.ScoreTotal = &o.ScoreTotal
	case OutcomeValidationError:
		out.Message = &o.Message
	default:
		return nil, fmt.Errorf("unknown outcome kind %q", o.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var in outcomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*o = Outcome{Kind: in.Kind}
	switch in.Kind {
	case OutcomeAskNext:
		if in.PromptText != nil {
			o.PromptText = *in.PromptText
		}
	case OutcomeCompleted:
		o.Classification = in.Classification
		if in.ScoreTotal != nil {
			o.ScoreTotal = *in.ScoreTotal
		}
	case OutcomeValidationError:
		if in.Message != nil {
			o.Message = *in.Message
		}
	default:
		return fmt.Errorf("unknown outcome kind %q", in.Kind)
	}
	return nil
}

// Request is the input of a single engine invocation.
type Request struct {
	TenantID       string   `json:"tenantId"`
	ConversationID string   `json:"conversationId"`
	RawAnswer      string   `json:"rawAnswer"`
	Catalog        Catalog  `json:"catalog"`
	PriorSession   *Session `json:"priorSession,omitempty"`
}

// Result is the output of a single engine invocation.
type Result struct {
	Outcome        Outcome `json:"outcome"`
	ConversationID string  `json:"conversationId"`
	TenantID       string  `json:"tenantId"`
	Session        Session `json:"session"`
}

// Persistable reports whether Session should be written back to the store.
// Validation failures must never be persisted as a real session.
func (r Result) Persistable() bool {
	return r.Outcome.Kind != OutcomeValidationError
}

// Err returns the validation error carried by the result, if any.
func (r Result) Err() error {
	if r.Outcome.Kind != OutcomeValidationError {
		return nil
	}
	return &ValidationError{Message: r.Outcome.Message}
}
