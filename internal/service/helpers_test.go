package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/session"
)

// fakeBackend records every call and answers from per-route handlers keyed by
// "METHOD /path".
type fakeBackend struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
	bodies map[string][]map[string]any
	server *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{
		t:      t,
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string]int),
		bodies: make(map[string][]map[string]any),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBackend) handle(route string, handler http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = handler
}

func (f *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	f.mu.Lock()
	f.calls[route]++
	if body != nil {
		f.bodies[route] = append(f.bodies[route], body)
	}
	handler, ok := f.routes[route]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no route " + route})
		return
	}
	handler(w, r)
}

func (f *fakeBackend) callCount(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeBackend) lastBody(route string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodies := f.bodies[route]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

func (f *fakeBackend) client(sessions gateway.SessionProvider) *gateway.Client {
	f.t.Helper()
	client, err := gateway.NewClient(gateway.ClientConfig{BaseURL: f.server.URL, Sessions: sessions})
	if err != nil {
		f.t.Fatalf("NewClient: %v", err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, v)
	}
}

func ticketJSON(id int64, status domain.TicketStatus) map[string]any {
	return map[string]any{
		"id":              id,
		"title":           "Leaking tap",
		"description":     "Drips all night",
		"category":        "Plumbing",
		"block":           "B",
		"roomNo":          "214",
		"priority":        "MEDIUM",
		"status":          string(status),
		"createdByUserId": 7,
		"createdByName":   "Asha",
		"createdAt":       []int{2024, 3, 1, 9, 30},
	}
}

func loggedIn(t *testing.T, role domain.Role) *session.Store {
	t.Helper()
	store := session.NewStore(nil, nil)
	err := store.Save(context.Background(), domain.Session{UserID: 7, Name: "Asha", Email: "asha@hostel.edu", Role: role, Credential: "opaque-token"})
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	return store
}

func numberField(body map[string]any, key string) float64 {
	value, _ := body[key].(float64)
	return value
}
