// Package devserver implements an in-memory stand-in for the remote
// dispatch API, speaking the same PHP-endpoint contract the client
// expects. It exists for local development and end-to-end tests; nothing
// survives a restart. Handlers are methods on Server, split into
// domain-specific files (trip.go, lists.go, auth.go) but all share the
// same struct so they can access its state.
package devserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// maxActivityWindow is how long after the start event the server keeps
// accepting activities for a trip.
const maxActivityWindow = 14 * time.Hour

// account is one registered driver.
type account struct {
	name     string
	password string
}

// tripState is the server-side record of one trip.
type tripState struct {
	tripNumber string
	maxLimit   string
	start      wireEvent
	finish     *wireEvent
	activities []wireActivity
}

// Server holds the whole in-memory world behind a single mutex. The
// traffic is one developer clicking around; contention is not a concern.
type Server struct {
	log *slog.Logger
	now func() time.Time

	mu       sync.Mutex
	accounts map[string]account // by email
	keys     map[string]string  // apikey -> email
	trips    map[string]*tripState
	seq      int
}

// NewServer constructs a Server with an empty world.
func NewServer(log *slog.Logger) *Server {
	return &Server{
		log:      log,
		now:      time.Now,
		accounts: make(map[string]account),
		keys:     make(map[string]string),
		trips:    make(map[string]*tripState),
	}
}

// SetClock overrides the wall clock, for tests.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// Routes returns the router serving the full endpoint surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.handleLogin)
	r.Post("/register.php", s.handleRegister)
	r.Post("/validate_user.php", s.handleValidateUser)
	r.Post("/update_password.php", s.handleUpdatePassword)
	r.Post("/trip.php", s.handleTrip)
	r.Get("/tripactivitydropdown.php", s.handleActivityDropdowns)
	r.Get("/loadtypesdropdown.php", s.handleLoadTypes)
	r.Get("/equipmentlist.php", s.handleEquipment)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// authorized reports whether the request carries a known apikey.
// Callers answer with the "invalid" code when it does not; the contract
// keeps HTTP 200 either way.
func (s *Server) authorized(r *http.Request) bool {
	key := r.URL.Query().Get("apikey")
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// nextTripNumber assigns trip numbers in registration order: T001,
// T002, and so on. Callers must hold s.mu.
func (s *Server) nextTripNumber() string {
	s.seq++
	return fmt.Sprintf("T%03d", s.seq)
}

// writeJSON writes v as the 200 JSON body. The PHP contract signals
// every outcome inside the data envelope, never via HTTP status.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Too late for an error status; nothing useful to do.
		return
	}
}

// envelope wraps a data payload the way every endpoint responds.
type envelope struct {
	Data any `json:"data"`
}

func writeCode(w http.ResponseWriter, code, message string) {
	writeJSON(w, envelope{Data: map[string]string{"code": code, "message": message}})
}

func writeInvalid(w http.ResponseWriter) {
	writeCode(w, "invalid", "apikey rejected")
}
