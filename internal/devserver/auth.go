package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// registerBody is shared by register and update-password requests.
type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin exchanges email/password query parameters for a fresh
// apikey, matching the production contract's credentials-in-query quirk.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	password := r.URL.Query().Get("password")

	s.mu.Lock()
	acct, ok := s.accounts[email]
	valid := ok && acct.password == password
	var key string
	if valid {
		key = uuid.NewString()
		s.keys[key] = email
	}
	s.mu.Unlock()

	if !valid {
		writeCode(w, "invalid", "invalid email or password")
		return
	}

	s.log.Info("driver logged in", "email", email)
	writeJSON(w, envelope{Data: map[string]string{
		"code":   "success",
		"apikey": key,
	}})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeCode(w, "Failure", "unreadable request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeCode(w, "Failure", "email and password are required")
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[body.Email]
	if !exists {
		s.accounts[body.Email] = account{name: body.Name, password: body.Password}
	}
	s.mu.Unlock()

	if exists {
		writeCode(w, "Failure", "account already exists")
		return
	}
	s.log.Info("driver registered", "email", body.Email)
	writeCode(w, "success", "account created")
}

func (s *Server) handleValidateUser(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeInvalid(w)
		return
	}
	writeCode(w, "success", "")
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("apikey")

	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeCode(w, "Failure", "unreadable request body")
		return
	}
	if body.Password == "" {
		writeCode(w, "Failure", "password is required")
		return
	}

	s.mu.Lock()
	email, ok := s.keys[key]
	if ok {
		acct := s.accounts[email]
		acct.password = body.Password
		s.accounts[email] = acct
	}
	s.mu.Unlock()

	if !ok {
		writeInvalid(w)
		return
	}
	writeCode(w, "success", "password updated")
}
