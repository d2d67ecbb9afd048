// Package testutil provides testing utilities for the GitHub GraphQL fetcher.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gustavclausen/github-api-fetcher/pkg/graphql"
)

// MockResponse defines the behavior for a mock GraphQL response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockRequest is a decoded GraphQL request received by the mock.
type MockRequest struct {
	Operation string
	Query     string
	Variables map[string]any
	Header    http.Header
}

// Handler answers a decoded GraphQL request.
type Handler func(w http.ResponseWriter, req MockRequest)

// MockGitHub is a configurable mock GitHub GraphQL endpoint. Requests are
// routed by operation name; anonymous queries route to graphql.AnonymousOperation.
type MockGitHub struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]Handler

	// Tracking
	RequestCount      int
	InFlight          int
	MaxInFlight       int
	LastRequestHeader http.Header
	Requests          []MockRequest
}

// NewMockGitHub creates a new mock GitHub GraphQL server.
func NewMockGitHub() *MockGitHub {
	mock := &MockGitHub{
		handlers: make(map[string]Handler),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Problems parsing JSON"}`))
			return
		}

		req := MockRequest{
			Operation: graphql.OperationName(body.Query),
			Query:     body.Query,
			Variables: body.Variables,
			Header:    r.Header.Clone(),
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.InFlight++
		if mock.InFlight > mock.MaxInFlight {
			mock.MaxInFlight = mock.InFlight
		}
		mock.LastRequestHeader = req.Header
		mock.Requests = append(mock.Requests, req)
		handler, exists := mock.handlers[req.Operation]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.InFlight--
			mock.mu.Unlock()
		}()

		if !exists {
			WriteErrors(w, MockError{Type: "NOT_FOUND", Message: "no handler for " + req.Operation})
			return
		}
		handler(w, req)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGitHub) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGitHub) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockGitHub) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.MaxInFlight = 0
	m.LastRequestHeader = nil
	m.Requests = nil
}

// SetHandler sets a custom handler for an operation.
func (m *MockGitHub) SetHandler(operation string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[operation] = handler
}

// SetResponse configures a fixed response for an operation.
func (m *MockGitHub) SetResponse(operation string, resp MockResponse) {
	m.SetHandler(operation, func(w http.ResponseWriter, req MockRequest) {
		writeResponse(w, resp)
	})
}

// SetPages serves data bodies in order, keyed by the cursor variable: the
// first body answers a request without a cursor, body i answers cursor
// strconv.Itoa(i).
func (m *MockGitHub) SetPages(operation string, dataBodies ...string) {
	m.SetHandler(operation, func(w http.ResponseWriter, req MockRequest) {
		index := 0
		if c, ok := req.Variables[graphql.CursorVariable].(string); ok {
			index, _ = strconv.Atoi(c)
		}
		if index < 0 || index >= len(dataBodies) {
			WriteErrors(w, MockError{Type: "NOT_FOUND", Message: "page out of range"})
			return
		}
		WriteData(w, dataBodies[index])
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGitHub) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetMaxInFlight returns the highest number of concurrently served requests.
func (m *MockGitHub) GetMaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.MaxInFlight
}

// GetRequests returns a copy of the received requests in arrival order.
func (m *MockGitHub) GetRequests() []MockRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]MockRequest(nil), m.Requests...)
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockGitHub) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// MockError is one entry of a GraphQL errors array.
type MockError struct {
	Type    string   `json:"type,omitempty"`
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

// WriteData writes a 200 response with the given JSON as "data".
func WriteData(w http.ResponseWriter, data string) {
	writeResponse(w, NewDataResponse(data))
}

// WriteErrors writes a 200 response carrying GraphQL errors and null data.
func WriteErrors(w http.ResponseWriter, errs ...MockError) {
	body, _ := json.Marshal(map[string]any{"data": nil, "errors": errs})
	writeResponse(w, MockResponse{StatusCode: http.StatusOK, Body: string(body)})
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewDataResponse creates a 200 OK response wrapping data, with GitHub
// rate limit headers.
func NewDataResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data":` + data + `}`,
		Headers:    RateLimitHeaders(4990, 5000),
	}
}

// RateLimitHeaders returns GitHub GraphQL rate limit headers with a reset
// one hour from now.
func RateLimitHeaders(remaining, limit int) map[string]string {
	return map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(limit),
		"X-RateLimit-Remaining": strconv.Itoa(remaining),
		"X-RateLimit-Used":      strconv.Itoa(limit - remaining),
		"X-RateLimit-Reset":     strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
		"X-RateLimit-Resource":  "graphql",
	}
}

// NewStatusResponse creates a non-2xx response with a GitHub style message body.
func NewStatusResponse(status int, message string) MockResponse {
	body, _ := json.Marshal(map[string]string{
		"message":           message,
		"documentation_url": "https://docs.github.com/graphql",
	})
	return MockResponse{StatusCode: status, Body: string(body)}
}
