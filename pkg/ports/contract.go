package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractOption adjusts RunSessionStoreContract for decorators.
type ContractOption func(*contractConfig)

type contractConfig struct {
	listed func(key string) (string, error)
}

// WithListedKey declares that List reports key as listed(key), for stores that rewrite
// keys before they reach the backend.
func WithListedKey(listed func(key string) (string, error)) ContractOption {
	return func(c *contractConfig) {
		c.listed = listed
	}
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore, opts ...ContractOption) {
	cfg := contractConfig{listed: func(key string) (string, error) { return key, nil }}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx := context.Background()
	tenant := "contract-" + time.Now().Format("20060102150405")
	key := domain.SessionKey(tenant, "5511999999999")

	t.Run("Save and Load", func(t *testing.T) {
		session := &domain.Session{CurrentStep: 2, ScoreTotal: 25, Status: domain.StatusInProgress}

		err := store.Save(ctx, key, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, *session, *loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		done := &domain.Session{CurrentStep: 3, ScoreTotal: 40, Status: domain.StatusDone}
		require.NoError(t, store.Save(ctx, key, done))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, *done, *loaded)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded.ScoreTotal = 9999

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.NotEqual(t, 9999, again.ScoreTotal, "mutating a loaded session must not affect the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, domain.SessionKey(tenant, "missing"))
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, &domain.Session{Status: domain.StatusInProgress}))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := domain.SessionKey(tenant, "conv-1")
		k2 := domain.SessionKey(tenant, "conv-2")
		require.NoError(t, store.Save(ctx, k1, &domain.Session{Status: domain.StatusInProgress}))
		require.NoError(t, store.Save(ctx, k2, &domain.Session{Status: domain.StatusInProgress}))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		for _, k := range []string{k1, k2} {
			want, err := cfg.listed(k)
			require.NoError(t, err)
			assert.Contains(t, keys, want)
		}
	})
}
