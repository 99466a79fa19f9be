package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kelsos/atom-tasks/internal/config"
	"github.com/kelsos/atom-tasks/internal/storage"
)

func backends(t *testing.T) map[string]storage.Local {
	t.Helper()

	sqliteStore, err := storage.Open(config.StorageSQLite, t.TempDir())
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	fileStore, err := storage.Open(config.StorageFile, t.TempDir())
	if err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}

	return map[string]storage.Local{
		"file":   fileStore,
		"sqlite": sqliteStore,
		"memory": storage.NewMemoryStore(),
	}
}

func TestLocal_SetGetRemove(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.GetItem("darkTheme"); err != nil || ok {
				t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
			}

			if err := store.SetItem("darkTheme", "true"); err != nil {
				t.Fatal(err)
			}
			if err := store.SetItem("darkTheme", "false"); err != nil {
				t.Fatal(err)
			}

			v, ok, err := store.GetItem("darkTheme")
			if err != nil || !ok || v != "false" {
				t.Fatalf("got %q ok=%v err=%v, want \"false\"", v, ok, err)
			}

			if err := store.RemoveItem("darkTheme"); err != nil {
				t.Fatal(err)
			}
			if err := store.RemoveItem("darkTheme"); err != nil {
				t.Fatalf("removing a missing key should succeed: %v", err)
			}
			if _, ok, _ := store.GetItem("darkTheme"); ok {
				t.Fatal("expected key to be removed")
			}
		})
	}
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	if err := store.SetItem("../escape", "x"); err == nil {
		t.Fatal("expected invalid key error")
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	if err := storage.NewFileStore(dir).SetItem("atom_user_session", `{"userId":"u"}`); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "atom_user_session")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	v, ok, err := storage.NewFileStore(dir).GetItem("atom_user_session")
	if err != nil || !ok || v != `{"userId":"u"}` {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := storage.Open("redis", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
