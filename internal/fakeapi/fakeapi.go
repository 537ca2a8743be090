// Package fakeapi is an in-memory implementation of the items REST backend
// for tests. It follows the FastAPI service's routes, status codes and error
// bodies, records every call and can inject failures or hold responses.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/idilsaglam/itemdesk/internal/model"
)

// Call is one request the server received.
type Call struct {
	Method string
	Path   string
}

func (c Call) String() string { return c.Method + " " + c.Path }

type failure struct {
	status int
	detail string
}

// Server is a fake backend. The zero value is not usable; call New.
type Server struct {
	srv *httptest.Server
	now func() time.Time

	mu       sync.Mutex
	items    []model.Item
	nextID   int
	calls    []Call
	failures map[string][]failure
	holds    map[string][]*gate
	gates    []*gate
	health   string
}

type gate struct {
	ch   chan struct{}
	once sync.Once
}

func (g *gate) open() { g.once.Do(func() { close(g.ch) }) }

// New starts a server. Close it when done.
func New() *Server {
	s := &Server{
		now:      func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
		nextID:   1,
		failures: map[string][]failure{},
		holds:    map[string][]*gate{},
		health:   "healthy",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/items/{$}", s.handleList)
	mux.HandleFunc("POST /api/items/{$}", s.handleCreate)
	mux.HandleFunc("GET /api/items/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/items/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/items/{id}", s.handleDelete)
	s.srv = httptest.NewServer(s.intercept(mux))
	return s
}

// URL is the API root, including the /api prefix.
func (s *Server) URL() string { return s.srv.URL + "/api" }

// Close releases any held requests and shuts the server down.
func (s *Server) Close() {
	s.mu.Lock()
	gates := s.gates
	s.mu.Unlock()
	for _, g := range gates {
		g.open()
	}
	s.srv.Close()
}

// Seed replaces the stored items. IDs of zero are assigned.
func (s *Server) Seed(items ...model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	for _, it := range items {
		if it.ID == 0 {
			it.ID = s.nextID
		}
		if it.ID >= s.nextID {
			s.nextID = it.ID + 1
		}
		s.items = append(s.items, it)
	}
}

// LoadFixture seeds the server from a JSON array of items on disk.
func (s *Server) LoadFixture(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.Seed()
			return nil
		}
		return fmt.Errorf("read file: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	s.Seed(items...)
	return nil
}

// Items returns a copy of the stored items.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount is len(Calls()).
func (s *Server) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// SetHealth changes the status reported by /health.
func (s *Server) SetHealth(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = status
}

// FailNext makes the next request matching method and path (e.g.
// "DELETE", "/api/items/2") answer with status and a FastAPI style detail.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := method + " " + path
	s.failures[k] = append(s.failures[k], failure{status: status, detail: detail})
}

// Hold blocks the next request matching method and path until the returned
// release func is called. The request is recorded when it arrives, and the
// handler runs after release.
func (s *Server) Hold(method, path string) (release func()) {
	g := &gate{ch: make(chan struct{})}
	s.mu.Lock()
	k := method + " " + path
	s.holds[k] = append(s.holds[k], g)
	s.gates = append(s.gates, g)
	s.mu.Unlock()
	return g.open
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path})
		var hold *gate
		if q := s.holds[k]; len(q) > 0 {
			hold, s.holds[k] = q[0], q[1:]
		}
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold.ch:
			case <-r.Context().Done():
				return
			}
		}

		s.mu.Lock()
		var f *failure
		if q := s.failures[k]; len(q) > 0 {
			f = &q[0]
			s.failures[k] = q[1:]
		}
		s.mu.Unlock()
		if f != nil {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	status := s.health
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Items())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	i := model.IndexOf(s.items, id)
	var it model.Item
	if i >= 0 {
		it = s.items[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := readDraft(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	it := model.Item{
		ID:          s.nextID,
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   &model.Timestamp{Time: s.now()},
	}
	s.nextID++
	s.items = append(s.items, it)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, ok := readDraft(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	i := model.IndexOf(s.items, id)
	var it model.Item
	if i >= 0 {
		s.items[i].Title = d.Title
		s.items[i].Description = d.Description
		it = s.items[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	i := model.IndexOf(s.items, id)
	if i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.mu.Unlock()
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Item %d deleted successfully", id),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "item_id must be an integer")
		return 0, false
	}
	return id, true
}

func readDraft(w http.ResponseWriter, r *http.Request) (model.Draft, bool) {
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return d, false
	}
	if strings.TrimSpace(d.Title) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return d, false
	}
	return d, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
