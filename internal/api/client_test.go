package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/collection"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultAPIURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultAPIURL)
	}

	u, err = parseBaseURL("example.com:1234/v1/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/v1" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL accepted a url without host")
	}
}

func TestClient_CRUD(t *testing.T) {
	t.Parallel()

	var (
		gotAuth    string
		gotAgent   string
		gotCreated catalog.Course
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/courses":
			_ = json.NewEncoder(w).Encode(courseList{Courses: []catalog.Course{{ID: "1", Title: "Go"}}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/courses":
			_ = json.NewDecoder(r.Body).Decode(&gotCreated)
			gotCreated.ID = "55"
			_ = json.NewEncoder(w).Encode(gotCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/api/courses/1":
			var c catalog.Course
			_ = json.NewDecoder(r.Body).Decode(&c)
			_ = json.NewEncoder(w).Encode(c)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/courses/1":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithToken(" secret "))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	courses, err := c.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != "1" {
		t.Fatalf("LoadAll = %#v, want one course id=1", courses)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if !strings.HasPrefix(gotAgent, "curator/") {
		t.Fatalf("User-Agent = %q, want curator/*", gotAgent)
	}

	created, err := c.Create(ctx, catalog.Course{ID: collection.TempIDPrefix + "abc", Title: "New"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != "55" || gotCreated.Title != "New" {
		t.Fatalf("Create = %#v, want server id 55", created)
	}

	updated, err := c.Update(ctx, "1", catalog.Course{ID: "1", Title: "Go 2"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "Go 2" {
		t.Fatalf("Update title = %q, want Go 2", updated.Title)
	}

	if err := c.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestClient_KeepsBasePathPrefix(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(courseList{})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/catalog/v1/")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	if _, err := c.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if err := c.Delete(ctx, "a b"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"/catalog/v1/api/courses", "/catalog/v1/api/courses/a%20b"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("request paths = %v, want %v", paths, want)
	}
}

func TestClient_CreateDoesNotSendTemporaryID(t *testing.T) {
	t.Parallel()

	var sentID atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		sentID.Store(raw["id"])
		_ = json.NewEncoder(w).Encode(catalog.Course{ID: "9"})
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL)
	if _, err := c.Create(context.Background(), catalog.Course{ID: collection.TempIDPrefix + "x"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got := sentID.Load(); got != "" {
		t.Fatalf("sent id = %v, want empty", got)
	}
}

func TestClient_StatusMapsToErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, collection.ErrValidation},
		{http.StatusUnprocessableEntity, collection.ErrValidation},
		{http.StatusUnauthorized, collection.ErrAuth},
		{http.StatusForbidden, collection.ErrAuth},
		{http.StatusNotFound, collection.ErrNotFound},
		{http.StatusInternalServerError, collection.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"bad","message":"rejected","fields":{"slug":"taken"}}`))
			}))
			t.Cleanup(server.Close)

			c, _ := NewClient(server.URL)
			_, err := c.Update(context.Background(), "1", catalog.Course{ID: "1"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Update error = %v, want %v", err, tt.want)
			}
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("Update error = %T, want *HTTPError", err)
			}
			if httpErr.Message != "rejected" || httpErr.Fields["slug"] != "taken" {
				t.Fatalf("HTTPError = %#v, want parsed body", httpErr)
			}
		})
	}
}

func TestClient_RetriesReadsButNotWrites(t *testing.T) {
	t.Parallel()

	var gets, puts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if gets.Add(1) < 3 {
				w.Header().Set("Retry-After", "0")
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(courseList{})
		default:
			puts.Add(1)
			http.Error(w, "busy", http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, WithRetry(3, time.Millisecond, 5*time.Millisecond))
	if _, err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if gets.Load() != 3 {
		t.Fatalf("GET attempts = %d, want 3", gets.Load())
	}

	_, err := c.Update(context.Background(), "1", catalog.Course{ID: "1"})
	if !errors.Is(err, collection.ErrNetwork) {
		t.Fatalf("Update error = %v, want network error", err)
	}
	if puts.Load() != 1 {
		t.Fatalf("PUT attempts = %d, want 1", puts.Load())
	}
}

func TestClient_TransportErrorIsNetwork(t *testing.T) {
	c, _ := NewClient("127.0.0.1:1", WithRetry(0, 0, 0))
	err := c.Delete(context.Background(), "1")
	if !errors.Is(err, collection.ErrNetwork) {
		t.Fatalf("Delete error = %v, want network error", err)
	}
	if err := c.Delete(context.Background(), " "); !errors.Is(err, collection.ErrValidation) {
		t.Fatalf("Delete with blank id = %v, want validation error", err)
	}
}

func TestRetryDelay(t *testing.T) {
	c := &Client{baseDelay: 100 * time.Millisecond, maxDelay: time.Second}
	if got := c.retryDelay(1, ""); got != 100*time.Millisecond {
		t.Fatalf("attempt 1 delay = %v", got)
	}
	if got := c.retryDelay(3, ""); got != 400*time.Millisecond {
		t.Fatalf("attempt 3 delay = %v", got)
	}
	if got := c.retryDelay(10, ""); got != time.Second {
		t.Fatalf("attempt 10 delay = %v, want cap", got)
	}
	if got := c.retryDelay(1, "30"); got != time.Second {
		t.Fatalf("Retry-After delay = %v, want cap", got)
	}
}
