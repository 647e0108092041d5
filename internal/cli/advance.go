package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/qualifica/pkg/catalog"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/aretw0/qualifica/pkg/runner"
)

// advanceInput mirrors domain.Request with loosely typed catalog rows.
type advanceInput struct {
	TenantID       string           `json:"tenantId"`
	ConversationID string           `json:"conversationId"`
	RawAnswer      string           `json:"rawAnswer"`
	Catalog        []map[string]any `json:"catalog"`
	PriorSession   *domain.Session  `json:"priorSession,omitempty"`
}

// RunAdvance reads one Request as JSON, runs the engine without touching any store and
// prints the Result. A validation result is printed and also returned as an error.
func RunAdvance(ctx context.Context, engine ports.Advancer, in io.Reader, out io.Writer) error {
	var body advanceInput
	dec := json.NewDecoder(in)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("invalid request JSON: %w", err)
	}

	questions, err := catalog.Decode(body.Catalog)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	answer, err := runner.SanitizeInput(body.RawAnswer)
	if err != nil {
		return fmt.Errorf("answer rejected: %w", err)
	}

	result := engine.Advance(ctx, domain.Request{
		TenantID:       body.TenantID,
		ConversationID: body.ConversationID,
		RawAnswer:      answer,
		Catalog:        questions,
		PriorSession:   body.PriorSession,
	})

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	return result.Err()
}
