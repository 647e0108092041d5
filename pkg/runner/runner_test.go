package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/pkg/adapters/memory"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/qualifier"
	"github.com/aretw0/qualifica/pkg/runner"
	"github.com/aretw0/qualifica/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *qualifier.Service {
	catalogs := memory.NewCatalogs(map[string]domain.Catalog{
		"acme": {
			{Order: 0, Text: "Você é o decisor?", HotCriteria: "sim", ColdCriteria: "não"},
			{Order: 1, Text: "Qual o orçamento?", HotCriteria: "acima de 10 mil", Weight: 3},
		},
	})
	return qualifier.New(qualifica.New(), session.NewManager(memory.NewStore()), catalogs)
}

func TestRunner_TextConversation(t *testing.T) {
	in := strings.NewReader("sim\n\nacima de 10 mil\n")
	var out bytes.Buffer

	r := runner.New(runner.WithHandler(runner.NewTextHandler(in, &out)))
	res, err := r.Run(context.Background(), newService(), "acme", "5511")
	require.NoError(t, err)

	assert.Equal(t, domain.Completed(domain.Warm, 40), res.Outcome)

	got := out.String()
	assert.Contains(t, got, "Você é o decisor?")
	assert.Contains(t, got, "Qual o orçamento?")
	assert.Contains(t, got, "[System] Please type an answer")
	assert.Contains(t, got, "**Lead classified as Warm** (score 40)")
}

func TestRunner_Reset(t *testing.T) {
	in := strings.NewReader("não\n/reset\nsim\n/quit\n")
	var out bytes.Buffer
	svc := newService()

	r := runner.New(runner.WithHandler(runner.NewTextHandler(in, &out)))
	res, err := r.Run(context.Background(), svc, "acme", "5511")
	require.NoError(t, err)

	assert.Equal(t, domain.AskNext("Qual o orçamento?"), res.Outcome)
	assert.Contains(t, out.String(), "[System] Conversation restarted.")

	stored, err := svc.Session(context.Background(), "acme", "5511")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.ScoreTotal, "the Cold answer before /reset must be discarded")
}

func TestRunner_EOFStopsQuietly(t *testing.T) {
	r := runner.New(runner.WithHandler(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})))
	res, err := r.Run(context.Background(), newService(), "acme", "5511")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAskNext, res.Outcome.Kind)
}

func TestRunner_ValidationError(t *testing.T) {
	var out bytes.Buffer
	r := runner.New(runner.WithHandler(runner.NewTextHandler(strings.NewReader(""), &out)))

	_, err := r.Run(context.Background(), newService(), "", "5511")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, out.String(), "Error: tenantId is required")
}

func TestRunner_Renderer(t *testing.T) {
	var out bytes.Buffer
	render := func(s string) (string, error) { return "<<" + s + ">>", nil }
	h := runner.NewTextHandler(strings.NewReader(""), &out, runner.WithTextRenderer(render))

	_, err := runner.New(runner.WithHandler(h)).Run(context.Background(), newService(), "acme", "5511")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "<<Você é o decisor?>>")
}

func TestRunner_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr := &blockingReader{}
	r := runner.New(runner.WithHandler(runner.NewTextHandler(pr, &bytes.Buffer{})))
	_, err := r.Run(ctx, newService(), "acme", "5511")
	assert.ErrorIs(t, err, context.Canceled)
}

// blockingReader never returns, like an idle terminal.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
