package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/collection"
)

// courseList is the GET /api/courses payload.
type courseList struct {
	Courses []catalog.Course `json:"courses"`
}

// HTTPError is a non-2xx response. It matches the collection error kinds
// through errors.Is.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	// Fields carries per-field messages from validation failures.
	Fields map[string]string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: http %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is maps the status code onto collection.ErrValidation, ErrAuth,
// ErrNotFound or ErrNetwork.
func (e *HTTPError) Is(target error) bool {
	return target == e.Kind()
}

// Kind returns the collection error kind for the status code.
func (e *HTTPError) Kind() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return collection.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return collection.ErrAuth
	case http.StatusNotFound, http.StatusGone:
		return collection.ErrNotFound
	default:
		return collection.ErrNetwork
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	e := &HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
	}
	var parsed errorBody
	if json.Unmarshal(body, &parsed) == nil {
		e.Code = parsed.Code
		e.Fields = parsed.Fields
		switch {
		case strings.TrimSpace(parsed.Message) != "":
			e.Message = parsed.Message
		case strings.TrimSpace(parsed.Error) != "":
			e.Message = parsed.Error
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
