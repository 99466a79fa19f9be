package session_test

import (
	"testing"

	"github.com/kelsos/atom-tasks/internal/session"
	"github.com/kelsos/atom-tasks/internal/storage"
)

func TestStore_Lifecycle(t *testing.T) {
	local := storage.NewMemoryStore()
	store := session.NewStore(local)

	if store.IsAuthenticated() {
		t.Fatal("expected no session initially")
	}

	if err := store.Set("user123", "test@example.com"); err != nil {
		t.Fatal(err)
	}

	raw, ok, _ := local.GetItem(session.StorageKey)
	if !ok || raw != `{"userId":"user123","email":"test@example.com"}` {
		t.Errorf("unexpected stored record %q", raw)
	}

	if id, ok := store.UserID(); !ok || id != "user123" {
		t.Errorf("UserID() = %q, %v", id, ok)
	}
	if email, ok := store.Email(); !ok || email != "test@example.com" {
		t.Errorf("Email() = %q, %v", email, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if store.IsAuthenticated() {
		t.Error("expected session to be cleared")
	}
	if _, ok := store.UserID(); ok {
		t.Error("expected UserID to be absent after clear")
	}
}

func TestStore_UnparseableRecordIsNoSession(t *testing.T) {
	local := storage.NewMemoryStore()
	_ = local.SetItem(session.StorageKey, "{not json")

	store := session.NewStore(local)
	if store.Get() != nil {
		t.Fatal("expected nil session for corrupt record")
	}
	if store.IsAuthenticated() {
		t.Fatal("corrupt record must not authenticate")
	}
}

func TestStore_NoStorageIsNoop(t *testing.T) {
	store := session.NewStore(nil)
	if err := store.Set("u", "e@x.io"); err != nil {
		t.Fatal(err)
	}
	if store.IsAuthenticated() {
		t.Fatal("store without storage must never report a session")
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
}
