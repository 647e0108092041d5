package qualifier_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/pkg/adapters/memory"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/persistence/middleware"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/aretw0/qualifica/pkg/qualifier"
	"github.com/aretw0/qualifica/pkg/runner"
	"github.com/aretw0/qualifica/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadCatalog = domain.Catalog{
	{Order: 2, Text: "Quando pretende começar?", HotCriteria: "este mês", ColdCriteria: "sem previsão", Weight: 3},
	{Order: 0, Text: "Você é o decisor?", HotCriteria: "sim", ColdCriteria: "não", Weight: 1},
	{Order: 1, Text: "Qual o orçamento?", HotCriteria: "acima de 10 mil", WarmCriteria: "até 10 mil", Weight: 2},
}

var fastRetry = qualifier.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func newService(t *testing.T, store ports.SessionStore, catalogs ports.CatalogSource) *qualifier.Service {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	if catalogs == nil {
		catalogs = memory.NewCatalogs(map[string]domain.Catalog{"acme": leadCatalog})
	}
	return qualifier.New(qualifica.New(), session.NewManager(store), catalogs, qualifier.WithRetry(fastRetry))
}

func TestService_FullConversation(t *testing.T) {
	svc := newService(t, nil, nil)
	ctx := context.Background()

	steps := []struct {
		answer string
		want   domain.Outcome
	}{
		{"", domain.AskNext("Você é o decisor?")},
		{"Sim", domain.AskNext("Qual o orçamento?")},
		{"até 10 mil", domain.AskNext("Quando pretende começar?")},
		{"Este mês!", domain.Completed(domain.Warm, 50)},
		{"mais alguma coisa", domain.Completed(domain.Warm, 50)},
	}
	for _, step := range steps {
		res, err := svc.Answer(ctx, "acme", "5511999999999@s.whatsapp.net", step.answer)
		require.NoError(t, err)
		assert.Equal(t, step.want, res.Outcome, "answer %q", step.answer)
		assert.Equal(t, "5511999999999", res.ConversationID)
	}

	stored, err := svc.Session(ctx, "acme", "5511999999999")
	require.NoError(t, err)
	assert.Equal(t, domain.Session{CurrentStep: 3, ScoreTotal: 50, Status: domain.StatusDone}, *stored)

	keys, err := svc.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme:5511999999999"}, keys)
}

func TestService_ValidationErrorIsNotPersisted(t *testing.T) {
	catalogs := &countingCatalogs{inner: memory.NewCatalogs(map[string]domain.Catalog{"acme": leadCatalog})}
	svc := newService(t, nil, catalogs)
	ctx := context.Background()

	for _, tc := range []struct{ tenant, conversation, message string }{
		{"", "5511", "tenantId is required"},
		{"acme", "@s.whatsapp.net", "conversationId is required"},
	} {
		res, err := svc.Answer(ctx, tc.tenant, tc.conversation, "sim")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeValidationError, res.Outcome.Kind)
		assert.Equal(t, tc.message, res.Outcome.Message)
		assert.False(t, res.Persistable())
	}

	keys, err := svc.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Zero(t, catalogs.calls.Load(), "invalid requests must not load catalogs")
}

func TestService_RejectsUnsafeInput(t *testing.T) {
	svc := newService(t, nil, nil)

	_, err := svc.Answer(context.Background(), "acme", "5511", strings.Repeat("a", runner.DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)

	_, err = svc.Answer(context.Background(), "acme", "5511", "\xff\xfe")
	assert.ErrorIs(t, err, runner.ErrInvalidUTF8)
}

func TestService_ControlOnlyAnswerKeepsSession(t *testing.T) {
	svc := newService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "acme", "5511", "")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, "acme", "5511", "Sim")
	require.NoError(t, err)
	before, err := svc.Session(ctx, "acme", "5511")
	require.NoError(t, err)

	_, err = svc.Answer(ctx, "acme", "5511", "\x01")
	assert.ErrorIs(t, err, runner.ErrControlOnly)

	after, err := svc.Session(ctx, "acme", "5511")
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
}

func TestService_TenantWithSeparatorCannotReachAnotherTenant(t *testing.T) {
	catalogs := memory.NewCatalogs(map[string]domain.Catalog{"acme": leadCatalog, "acme:x": leadCatalog})
	svc := newService(t, nil, catalogs)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "acme", "x:5511", "")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, "acme", "x:5511", "sim")
	require.NoError(t, err)

	res, err := svc.Answer(ctx, "acme:x", "5511", "sim")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeValidationError, res.Outcome.Kind)
	assert.Equal(t, "tenantId must not contain ':'", res.Outcome.Message)

	_, err = svc.Session(ctx, "acme:x", "5511")
	assert.ErrorIs(t, err, domain.ErrInvalidSessionKey)
	assert.ErrorIs(t, svc.Reset(ctx, "acme:x", "5511"), domain.ErrInvalidSessionKey)

	stored, err := svc.Session(ctx, "acme", "x:5511")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStep)
}

func TestService_PseudonymizedKeyIsNotAConversationID(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	svc := newService(t, middleware.Chain(memory.NewStore(), middleware.NewPseudonymizer(secret)), nil)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "acme", "5511", "")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, "acme", "5511", "sim")
	require.NoError(t, err)
	before, err := svc.Session(ctx, "acme", "5511")
	require.NoError(t, err)

	keys, err := svc.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	_, stored, err := domain.ParseSessionKey(keys[0])
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored, middleware.PseudonymPrefix))

	// A fresh conversation grades the first question instead of the second.
	res, err := svc.Answer(ctx, "acme", stored, "sim")
	require.NoError(t, err)
	assert.Equal(t, domain.AskNext("Qual o orçamento?"), res.Outcome)
	assert.Equal(t, 1, res.Session.CurrentStep)

	after, err := svc.Session(ctx, "acme", "5511")
	require.NoError(t, err)
	assert.Equal(t, *before, *after)

	keys, err = svc.Sessions(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestService_CatalogNotFoundIsNotRetried(t *testing.T) {
	catalogs := &countingCatalogs{inner: memory.NewCatalogs(nil)}
	svc := newService(t, nil, catalogs)

	_, err := svc.Answer(context.Background(), "ghost", "5511", "")
	assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
	assert.Equal(t, int32(1), catalogs.calls.Load())
}

func TestService_TransientCatalogFailureIsRetried(t *testing.T) {
	catalogs := &countingCatalogs{
		inner:    memory.NewCatalogs(map[string]domain.Catalog{"acme": leadCatalog}),
		failures: 2,
	}
	svc := newService(t, nil, catalogs)

	res, err := svc.Answer(context.Background(), "acme", "5511", "")
	require.NoError(t, err)
	assert.Equal(t, domain.AskNext("Você é o decisor?"), res.Outcome)
	assert.Equal(t, int32(3), catalogs.calls.Load())
}

func TestService_ConflictIsNotRetried(t *testing.T) {
	store := &conflictStore{Store: memory.NewStore()}
	svc := newService(t, store, nil)

	_, err := svc.Answer(context.Background(), "acme", "5511", "")
	assert.ErrorIs(t, err, domain.ErrSessionConflict)
	assert.Equal(t, int32(1), store.saves.Load())
}

func TestService_TransientSaveFailureRetriesTheUpdate(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore()}
	svc := newService(t, store, nil)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "acme", "5511", "")
	require.NoError(t, err)

	store.failures.Store(1)
	res, err := svc.Answer(ctx, "acme", "5511", "sim")
	require.NoError(t, err)
	assert.Equal(t, domain.AskNext("Qual o orçamento?"), res.Outcome)
	assert.Equal(t, int32(3), store.saves.Load())

	stored, err := svc.Session(ctx, "acme", "5511")
	require.NoError(t, err)
	assert.Equal(t, domain.Session{CurrentStep: 1, ScoreTotal: 10, Status: domain.StatusInProgress}, *stored)
}

func TestService_Reset(t *testing.T) {
	svc := newService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "acme", "5511", "")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, "acme", "5511", "sim")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "acme", "5511@c.us"))

	_, err = svc.Session(ctx, "acme", "5511")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Without a stored session, the next answer grades the first question.
	res, err := svc.Answer(ctx, "acme", "5511", "sim")
	require.NoError(t, err)
	assert.Equal(t, domain.AskNext("Qual o orçamento?"), res.Outcome)
}

func TestService_ConcurrentAnswersAreSerialized(t *testing.T) {
	catalog := make(domain.Catalog, 20)
	for i := range catalog {
		catalog[i] = domain.Question{Order: i, Text: fmt.Sprintf("q%d", i), HotCriteria: "sim"}
	}
	svc := newService(t, nil, memory.NewCatalogs(map[string]domain.Catalog{"acme": catalog}))
	ctx := context.Background()

	_, err := svc.Answer(ctx, "acme", "5511", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Answer(ctx, "acme", "5511", "sim")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := svc.Session(ctx, "acme", "5511")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.CurrentStep)
	assert.Equal(t, 100, stored.ScoreTotal)
}

// countingCatalogs counts loads and fails the first `failures` of them.
type countingCatalogs struct {
	inner    ports.CatalogSource
	failures int32
	calls    atomic.Int32
}

func (c *countingCatalogs) Catalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	if n := c.calls.Add(1); n <= c.failures {
		return nil, errors.New("connection reset by peer")
	}
	return c.inner.Catalog(ctx, tenantID)
}

// conflictStore rejects every save as a concurrent modification.
type conflictStore struct {
	*memory.Store
	saves atomic.Int32
}

func (s *conflictStore) Save(ctx context.Context, key string, v *domain.Session) error {
	s.saves.Add(1)
	return domain.ErrSessionConflict
}

// flakyStore fails the next `failures` saves with a transient error.
type flakyStore struct {
	*memory.Store
	saves    atomic.Int32
	failures atomic.Int32
}

func (s *flakyStore) Save(ctx context.Context, key string, v *domain.Session) error {
	s.saves.Add(1)
	if s.failures.Add(-1) >= 0 {
		return errors.New("connection reset")
	}
	return s.Store.Save(ctx, key, v)
}
