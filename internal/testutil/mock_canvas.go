// Package testutil provides testing utilities for the Canvas client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/canvas-graph/pkg/client"
)

// TestToken is the bearer token MockCanvas accepts by default.
const TestToken = "test-token"

// MockResponse defines the behavior for a mock Canvas endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCanvas is a configurable mock Canvas server for testing.
// Requests without "Authorization: Bearer <Token>" get a 401 envelope.
type MockCanvas struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Token is the accepted bearer token.
	Token string

	requestCount int
	paths        []string
}

// NewMockCanvas creates a new mock Canvas server.
func NewMockCanvas() *MockCanvas {
	mock := &MockCanvas{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		Token:    TestToken,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.paths = append(mock.paths, r.URL.Path)
		token := mock.Token
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, `{"errors":[{"message":"Invalid access token.","error_code":"unauthenticated"}],"error_report_id":1}`, nil)
			return
		}

		if exists {
			handler(w, r)
			return
		}

		writeJSON(w, http.StatusNotFound, `{"errors":[{"message":"The specified resource does not exist.","error_code":"not_found"}],"error_report_id":404}`, nil)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCanvas) URL() string {
	return m.server.URL
}

// Profile returns a profile pointing at the mock with the accepted token.
func (m *MockCanvas) Profile() *client.ServerProfile {
	return &client.ServerProfile{
		Name:     "mock",
		HostURL:  m.server.URL,
		APIToken: m.Token,
	}
}

// Close shuts down the mock server.
func (m *MockCanvas) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCanvas) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.paths = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCanvas) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockCanvas) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, resp.StatusCode, resp.Body, resp.Headers)
	})
}

// SetCourses serves courses on /api/v1/courses.
func (m *MockCanvas) SetCourses(courses any) {
	m.SetResponse("/api/v1/courses", NewJSONResponse(courses))
}

// SetEnrollments serves resp on a course's enrollments path.
func (m *MockCanvas) SetEnrollments(courseID int64, resp MockResponse) {
	m.SetResponse(fmt.Sprintf("/api/v1/courses/%d/enrollments", courseID), resp)
}

// RequestCount returns the number of requests made to the server.
func (m *MockCanvas) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// Paths returns the request paths in arrival order.
func (m *MockCanvas) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.paths...)
}

// CountPrefix returns how many requests hit a path starting with prefix.
func (m *MockCanvas) CountPrefix(prefix string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.paths {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body string, headers map[string]string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Rate-Limit-Remaining", "700.0")
	w.Header().Set("X-Request-Cost", "1.0")
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(status)
	if body != "" {
		w.Write([]byte(body))
	}
}

// NewJSONResponse creates a 200 OK response with v encoded as the body.
func NewJSONResponse(v any) MockResponse {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal mock body: %v", err))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(data),
	}
}

// NewErrorResponse creates a Canvas error envelope response.
func NewErrorResponse(status int, message, code string, reportID uint64) MockResponse {
	data, _ := json.Marshal(client.APIErrorEnvelope{
		Errors:        []client.APIError{{Message: message, ErrorCode: code}},
		ErrorReportID: reportID,
	})
	return MockResponse{
		StatusCode: status,
		Body:       string(data),
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>maintenance</html>`,
	}
}

// NewLowQuotaResponse creates a 200 OK response reporting a nearly drained quota.
func NewLowQuotaResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"X-Rate-Limit-Remaining": "12.5",
			"X-Request-Cost":         "3.25",
		},
	}
}
