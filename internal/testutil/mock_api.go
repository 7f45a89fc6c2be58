// Package testutil provides test servers for the rbx client: a configurable
// mock API origin, a counting forward proxy and an unreachable proxy address.
package testutil

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock API origin.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount int
	pathCounts   map[string]int
	lastRequest  *http.Request
	lastBody     []byte
}

// NewMockAPI creates a new mock API origin. Unconfigured paths answer
// 404 with a JSON error body.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastRequest = r.Clone(r.Context())
		mock.lastBody = body
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"code":0,"message":"NotFound"}]}`))
	}))

	return mock
}

// URL returns the mock server base URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON configures a 200 response with the given JSON body.
func (m *MockAPI) SetJSON(path, body string) {
	m.SetResponse(path, MockResponse{StatusCode: http.StatusOK, Body: body})
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made to one path.
func (m *MockAPI) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastRequest returns a copy of the most recent request and its body.
func (m *MockAPI) LastRequest() (*http.Request, []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequest, m.lastBody
}

// MockProxy is a plain HTTP forward proxy that counts the requests it relays.
type MockProxy struct {
	server    *httptest.Server
	transport *http.Transport

	mu   sync.Mutex
	hits int
}

// NewMockProxy starts a forward proxy for http:// targets.
func NewMockProxy() *MockProxy {
	p := &MockProxy{transport: &http.Transport{Proxy: nil}}

	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.hits++
		p.mu.Unlock()

		if !r.URL.IsAbs() {
			http.Error(w, "not a proxy request", http.StatusBadRequest)
			return
		}

		out := r.Clone(r.Context())
		out.RequestURI = ""
		resp, err := p.transport.RoundTrip(out)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)
	}))

	return p
}

// URL returns the proxy URL, usable as an egress descriptor.
func (p *MockProxy) URL() string {
	return p.server.URL
}

// Hits returns the number of requests relayed.
func (p *MockProxy) Hits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits
}

// Close shuts down the proxy.
func (p *MockProxy) Close() {
	p.server.Close()
	p.transport.CloseIdleConnections()
}

// DeadProxyURL returns an http:// proxy URL on a local port nothing listens
// on. Connections to it are refused immediately.
func DeadProxyURL() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "http://127.0.0.1:1"
	}
	addr := l.Addr().String()
	_ = l.Close()
	return "http://" + addr
}
