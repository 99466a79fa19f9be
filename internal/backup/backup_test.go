package backup

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestInclude(t *testing.T) {
	tests := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"atom_user_session", false, true},
		{"darkTheme", false, true},
		{"state.sqlite", false, true},
		{"darkTheme.tmp", false, false},
		{"state.sqlite-journal", false, false},
		{"logs", true, false},
		{filepath.Join("logs", "atom-tasks_1.log"), false, false},
	}

	for _, tt := range tests {
		if got := include(tt.rel, tt.isDir); got != tt.want {
			t.Errorf("include(%q, %v) = %v, want %v", tt.rel, tt.isDir, got, tt.want)
		}
	}
}

func TestCreate(t *testing.T) {
	dataDir := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dataDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	write("atom_user_session", `{"userId":"u1","email":"a@b.c"}`)
	write("darkTheme", "true")
	write(filepath.Join("logs", "atom-tasks_x.log"), "{}")

	first, err := Create(dataDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(first) != DefaultDir(dataDir) {
		t.Errorf("archive written to %s", first)
	}

	zr, err := zip.OpenReader(first)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	want := []string{"atom_user_session", "darkTheme"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("archive holds %v, want %v", names, want)
	}
}
