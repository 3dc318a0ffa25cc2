// internal/httpserver/routes_auth.go
//
// Token endpoints:
//   - POST /auth/token    → exchange username/password for a token
//   - POST /auth/register → create a (non-admin) account and return its token
//   - GET  /auth/me       → identity carried by the caller's token

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayresjulia/jobly/internal/auth"
	"github.com/ayresjulia/jobly/internal/store"
)

type credentials struct {
	Username string `json:"username" validate:"required,min=1,max=25"`
	Password string `json:"password" validate:"required,min=1,max=20"`
}

type tokenRes struct {
	Token string `json:"token"`
}

func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/token", s.handleToken)
		r.Post("/register", s.handleRegister)
		r.With(s.require(auth.LoggedIn)).Get("/me", s.handleMe)
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.store.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeToken(w, r, http.StatusOK, u)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body store.NewUser
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	body.IsAdmin = false // self-registration never grants admin
	u, err := s.store.Register(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeToken(w, r, http.StatusCreated, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{"username": c.Username, "isAdmin": c.IsAdmin},
	})
}

func (s *Server) writeToken(w http.ResponseWriter, r *http.Request, status int, u store.User) {
	tok, err := s.codec.Issue(u.Username, u.IsAdmin)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, tokenRes{Token: tok})
}
