package fakeapi

import (
	"log/slog"
	"net/http"
	"strings"

	"telegram-ai-agent/internal/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.writeError(w, r, errRegistrationRequired)
		return
	}

	user, err := s.store.CreateUser(strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info("user registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	writeJSON(w, http.StatusCreated, domain.AuthResponse{Message: "User registered successfully", User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		s.writeError(w, r, errCredentialsRequired)
		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setSessionCookie(w, r, s.store.CreateSession(user.ID))
	writeJSON(w, http.StatusOK, domain.AuthResponse{Message: "Login successful", User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		s.store.DeleteSession(cookie.Value)
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}
