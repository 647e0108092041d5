package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_MarshalOnlyActiveVariant(t *testing.T) {
	tests := []struct {
		name    string
		outcome domain.Outcome
		want    string
	}{
		{"AskNext", domain.AskNext("Qual o orçamento?"), `{"kind":"ask_next","promptText":"Qual o orçamento?"}`},
		{"AskNextEmptyPrompt", domain.AskNext(""), `{"kind":"ask_next","promptText":""}`},
		{"Completed", domain.Completed(domain.Cold, 0), `{"kind":"completed","classification":"Cold","scoreTotal":0}`},
		{"Invalid", domain.Invalid("tenantId is required"), `{"kind":"validation_error","message":"tenantId is required"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.outcome)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back domain.Outcome
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.outcome, back)
		})
	}
}

func TestOutcome_UnknownKind(t *testing.T) {
	_, err := json.Marshal(domain.Outcome{Kind: "shrug"})
	assert.Error(t, err)

	var o domain.Outcome
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"shrug"}`), &o))
}

func TestResult_PersistableAndErr(t *testing.T) {
	ok := domain.Result{Outcome: domain.AskNext("?")}
	assert.True(t, ok.Persistable())
	assert.NoError(t, ok.Err())

	bad := domain.Result{Outcome: domain.Invalid("conversationId is required")}
	assert.False(t, bad.Persistable())

	var verr *domain.ValidationError
	require.ErrorAs(t, bad.Err(), &verr)
	assert.Equal(t, "conversationId is required", verr.Error())
}

func TestSessionKey_RoundTrip(t *testing.T) {
	key := domain.SessionKey("acme", "5511999999999")
	assert.Equal(t, "acme:5511999999999", key)

	tenant, conv, err := domain.ParseSessionKey(key)
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant)
	assert.Equal(t, "5511999999999", conv)

	// Only the first separator splits.
	_, conv, err = domain.ParseSessionKey("acme:a:b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", conv)

	for _, bad := range []string{"", "acme", ":1", "acme:"} {
		_, _, err := domain.ParseSessionKey(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidSessionKey, bad)
	}
}

func TestBucket_BasePoints(t *testing.T) {
	assert.Equal(t, 10, domain.Hot.BasePoints())
	assert.Equal(t, 5, domain.Warm.BasePoints())
	assert.Equal(t, 1, domain.Cold.BasePoints())
	assert.Equal(t, 0, domain.Bucket("Lukewarm").BasePoints())
	assert.False(t, domain.Bucket("Lukewarm").Valid())
}

func TestSession_Defaults(t *testing.T) {
	s := domain.NewSession()
	assert.Equal(t, domain.Session{Status: domain.StatusInProgress}, s)
	assert.False(t, s.Done())

	assert.Equal(t, domain.Thresholds{Hot: 35, Warm: 70}, domain.DefaultThresholds())
}
