package testsupport

import (
	"context"
	"testing"

	"lightbox/internal/config"
	"lightbox/internal/session"
)

// MustOpenStore opens a session.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewDraft creates a fresh draft session for tests using the provided store.
func NewDraft(t testing.TB, store *session.Store) *session.Session {
	t.Helper()

	sess, err := store.NewSession(context.Background())
	if err != nil {
		t.Fatalf("store.NewSession: %v", err)
	}
	return sess
}
