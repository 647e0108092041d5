package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
)

// MinSecretSize is the shortest HMAC secret accepted by NewPseudonymizer.
const MinSecretSize = 16

// PseudonymPrefix starts the conversation part of every pseudonymized key.
const PseudonymPrefix = "px_"

type pseudonymizer struct {
	next   ports.SessionStore
	secret []byte
}

// NewPseudonymizer creates a middleware that replaces the conversation part of every key
// with "px_" + hex(HMAC-SHA256(secret, tenant:conversation)) before it reaches the backend.
//
// Every key is hashed, including ones that already look pseudonymized: a listed key
// addresses the backend store, never the decorated one. The tenant stays readable so that
// operators can still scope listings.
func NewPseudonymizer(secret []byte) Middleware {
	if len(secret) < MinSecretSize {
		panic(fmt.Sprintf("pseudonymizer secret must be at least %d bytes", MinSecretSize))
	}
	key := append([]byte(nil), secret...)
	return func(next ports.SessionStore) ports.SessionStore {
		return &pseudonymizer{next: next, secret: key}
	}
}

// PseudonymizeKey returns the backend key the pseudonymizer built with secret uses for key.
func PseudonymizeKey(secret []byte, key string) (string, error) {
	tenantID, conversationID, err := domain.ParseSessionKey(key)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(tenantID))
	mac.Write([]byte{':'})
	mac.Write([]byte(conversationID))
	return domain.SessionKey(tenantID, PseudonymPrefix+hex.EncodeToString(mac.Sum(nil))), nil
}

// IsPseudonymized reports whether key has the shape PseudonymizeKey produces. Admin tools
// use it to send a listed key straight to the backend store.
func IsPseudonymized(key string) bool {
	_, conversationID, err := domain.ParseSessionKey(key)
	return err == nil && strings.HasPrefix(conversationID, PseudonymPrefix)
}

// Pseudonymize returns the backend key for key.
func (m *pseudonymizer) Pseudonymize(key string) (string, error) {
	return PseudonymizeKey(m.secret, key)
}

func (m *pseudonymizer) Save(ctx context.Context, key string, session *domain.Session) error {
	hashed, err := m.Pseudonymize(key)
	if err != nil {
		return err
	}
	return m.next.Save(ctx, hashed, session)
}

func (m *pseudonymizer) Load(ctx context.Context, key string) (*domain.Session, error) {
	hashed, err := m.Pseudonymize(key)
	if err != nil {
		return nil, err
	}
	return m.next.Load(ctx, hashed)
}

func (m *pseudonymizer) Delete(ctx context.Context, key string) error {
	hashed, err := m.Pseudonymize(key)
	if err != nil {
		return err
	}
	return m.next.Delete(ctx, hashed)
}

// List returns the backend keys; the original ids cannot be recovered.
func (m *pseudonymizer) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
