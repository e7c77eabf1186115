// Package testutil provides testing utilities for the catalog client and
// the poll loop.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// MockSort mirrors a sort entry of the sorts endpoint.
type MockSort struct {
	Token                  string `json:"token"`
	ContextCountryRegionID int    `json:"contextCountryRegionId"`
	Name                   string `json:"name"`
}

// MockGame mirrors a game entry of the list endpoint.
type MockGame struct {
	Name    string `json:"name"`
	PlaceID uint64 `json:"placeId"`
}

// MockCatalog is a configurable mock games catalog for testing.
type MockCatalog struct {
	server *httptest.Server
	mu     sync.Mutex

	sorts  []MockSort
	pageID string
	pages  [][]MockGame

	handlers map[string]http.HandlerFunc

	// Tracking
	sortsRequests int
	listQueries   []url.Values
	lastCookie    string
}

// NewMockCatalog creates a mock catalog serving the sorts and list endpoints.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		pageID:   "mock-page",
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.lastCookie = r.Header.Get("Cookie")
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/v1/games/sorts":
			mock.handleSorts(w, r)
		case "/v1/games/list":
			mock.handleList(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// SetSorts configures the sorts and page id returned by the sorts endpoint.
func (m *MockCatalog) SetSorts(pageID string, sorts ...MockSort) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageID = pageID
	m.sorts = sorts
}

// SetPages scripts the list endpoint. The n-th list request gets pages[n];
// once the script runs out the last page is repeated.
func (m *MockCatalog) SetPages(pages ...[]MockGame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = pages
}

// SetHandler overrides the handler for a specific path.
func (m *MockCatalog) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SortsRequestCount returns the number of sorts requests served.
func (m *MockCatalog) SortsRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortsRequests
}

// ListRequestCount returns the number of list requests served.
func (m *MockCatalog) ListRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listQueries)
}

// ListQueries returns the query parameters of every list request, in order.
func (m *MockCatalog) ListQueries() []url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]url.Values, len(m.listQueries))
	copy(out, m.listQueries)
	return out
}

// LastCookie returns the Cookie header of the most recent request.
func (m *MockCatalog) LastCookie() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCookie
}

func (m *MockCatalog) handleSorts(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.sortsRequests++
	sorts := m.sorts
	if sorts == nil {
		sorts = []MockSort{}
	}
	body := map[string]any{
		"sorts":       sorts,
		"pageContext": map[string]string{"pageId": m.pageID},
	}
	m.mu.Unlock()

	writeJSON(w, body)
}

func (m *MockCatalog) handleList(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	n := len(m.listQueries)
	m.listQueries = append(m.listQueries, r.URL.Query())
	games := []MockGame{}
	if len(m.pages) > 0 {
		if n >= len(m.pages) {
			n = len(m.pages) - 1
		}
		if m.pages[n] != nil {
			games = m.pages[n]
		}
	}
	m.mu.Unlock()

	writeJSON(w, map[string]any{"games": games})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusHandler returns a handler answering with the given status and body.
func StatusHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		if body != "" {
			w.Write([]byte(body))
		}
	}
}
