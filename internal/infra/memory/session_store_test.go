package memory

import (
	"testing"

	"millionaire-quiz/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session, err := app.NewSession("session-1", "classic", sampleConfig())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Put(session)
	got, ok := store.Get("session-1")
	if !ok || got != session {
		t.Fatalf("expected session present")
	}
	if all := store.Sessions(); len(all) != 1 || all[0] != session {
		t.Fatalf("expected 1 session, got %d", len(all))
	}

	store.Delete("session-1")
	if _, ok := store.Get("session-1"); ok {
		t.Fatalf("expected session removed")
	}
	store.Delete("session-1")
	if len(store.Sessions()) != 0 {
		t.Fatalf("expected no sessions")
	}
}
