package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/curator/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSlugCommand(t *testing.T) {
	out, err := execute(t, "slug", "Crème", "Brûlée 101")
	if err != nil {
		t.Fatalf("slug returned error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "creme-brulee-101" {
		t.Fatalf("slug output = %q, want creme-brulee-101", got)
	}
}

func TestSlugCommand_RequiresTitle(t *testing.T) {
	if _, err := execute(t, "slug"); err == nil {
		t.Fatalf("expected error without a title")
	}
}

func setupCatalog(t *testing.T) (cfgPath, prefsPath string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.TokenEnv, "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/courses" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"courses":[
			{"id":"1","title":"Go Basics","status":"published","category":"backend","price":10,"rating":4.5},
			{"id":"2","title":"Advanced Go","status":"draft","category":"backend","price":30,"rating":4.9},
			{"id":"3","title":"CSS Layout","status":"published","category":"frontend","price":0,"rating":3.2}
		]}`)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("api_url = %q\nlog_file = %q\n", srv.URL, filepath.Join(dir, "curator.log"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return cfgPath, filepath.Join(dir, "prefs.toml")
}

func TestListCommand_Filters(t *testing.T) {
	cfgPath, prefsPath := setupCatalog(t)

	out, err := execute(t, "list", "--config", cfgPath, "--prefs", prefsPath,
		"--category", "backend", "--sort", "price", "--desc")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if strings.Contains(out, "CSS Layout") {
		t.Fatalf("frontend course should be filtered out:\n%s", out)
	}
	adv, basics := strings.Index(out, "Advanced Go"), strings.Index(out, "Go Basics")
	if adv < 0 || basics < 0 || adv > basics {
		t.Fatalf("want Advanced Go before Go Basics:\n%s", out)
	}
	if !strings.Contains(out, "page 1/1 · 2 courses") {
		t.Fatalf("missing page summary:\n%s", out)
	}
}

func TestListCommand_PriceRangeAndPaging(t *testing.T) {
	cfgPath, prefsPath := setupCatalog(t)

	out, err := execute(t, "list", "--config", cfgPath, "--prefs", prefsPath,
		"--max-price", "15", "--page-size", "1", "--page", "2")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if !strings.Contains(out, "page 2/2 · 2 courses") {
		t.Fatalf("unexpected page summary:\n%s", out)
	}
	if !strings.Contains(out, "CSS Layout") || strings.Contains(out, "Go Basics") {
		t.Fatalf("page 2 should hold only CSS Layout:\n%s", out)
	}
}

func TestListCommand_NoMatches(t *testing.T) {
	cfgPath, prefsPath := setupCatalog(t)

	out, err := execute(t, "list", "--config", cfgPath, "--prefs", prefsPath, "--search", "haskell")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if strings.TrimSpace(out) != "No courses" {
		t.Fatalf("output = %q, want No courses", out)
	}
}
