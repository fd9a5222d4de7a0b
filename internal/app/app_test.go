package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/curator/internal/collection"
	"github.com/five82/curator/internal/config"
	"github.com/five82/curator/internal/editor"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestSetup_WiresManagerToAPI(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.TokenEnv, "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/courses" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"courses":[
			{"id":"1","title":"Go Basics","price":10},
			{"id":"2","title":"Advanced Go","price":30},
			{"id":"3","title":"Rust","price":20}
		]}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	writeFile(t, cfgPath, fmt.Sprintf("api_url = %q\ntoken = \"secret\"\npage_size = 10\n", srv.URL))
	prefsPath := filepath.Join(dir, "prefs.toml")
	writeFile(t, prefsPath, "sort_key = \"price\"\nsort_dir = \"desc\"\npage_size = 2\n")

	svc, err := Setup(Options{ConfigPath: cfgPath, PrefsPath: prefsPath, LogOutput: io.Discard})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer svc.Close()

	if err := svc.Manager.Reload(context.Background()); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}

	page := svc.Manager.VisiblePage()
	if page.SyncStatus != collection.StatusSynced {
		t.Fatalf("SyncStatus = %v, want synced", page.SyncStatus)
	}
	if page.Pagination.PageSize != 2 || page.Pagination.TotalPages != 2 {
		t.Fatalf("Pagination = %+v, want page size 2 over 2 pages", page.Pagination)
	}
	if len(page.Entities) != 2 || page.Entities[0].ID != "2" || page.Entities[1].ID != "3" {
		t.Fatalf("Entities = %+v, want ids [2 3] sorted by price desc", page.Entities)
	}
}

func TestSetup_EditorDerivesSlugs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	svc, err := Setup(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.toml"), PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"), LogOutput: io.Discard})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer svc.Close()

	s := svc.Editor.Reduce(svc.Editor.Blank(), editor.SetTitle{Title: "Hello World"})
	if s.Draft.Slug != "hello-world" {
		t.Fatalf("Slug = %q, want hello-world", s.Draft.Slug)
	}
}

func TestSetup_InvalidAPIURLFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, cfgPath, "api_url = \"://nope\"\n")

	if _, err := Setup(Options{ConfigPath: cfgPath, LogOutput: io.Discard}); err == nil {
		t.Fatalf("Setup returned nil error for an invalid api_url")
	}
}

func TestOpenLogFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "curator.log")
	f, err := openLogFile(path)
	if err != nil {
		t.Fatalf("openLogFile returned error: %v", err)
	}
	_ = f.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Stat(%s): %v", path, err)
	}
}
