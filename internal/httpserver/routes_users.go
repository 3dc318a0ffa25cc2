package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/auth"
	"github.com/ayresjulia/jobly/internal/store"
)

// mountUserRoutes registers /users. Listing and creating accounts is for
// admins; everything under /users/{username} is for admins or that user.
func (s *Server) mountUserRoutes() {
	s.r.Route("/users", func(r chi.Router) {
		r.With(s.require(auth.Admin)).Post("/", s.handleCreateUser)
		r.With(s.require(auth.Admin)).Get("/", s.handleListUsers)

		r.Route("/{username}", func(r chi.Router) {
			r.Use(s.require(auth.AdminOrSelf("username")))
			r.Get("/", s.handleGetUser)
			r.Patch("/", s.handleUpdateUser)
			r.Delete("/", s.handleDeleteUser)
			r.Post("/jobs/{id:[0-9]+}", s.handleApply)
		})
	})
}

// handleCreateUser lets an admin create any account, including admins.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body store.NewUser
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.store.Register(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, err := s.codec.Issue(u.Username, u.IsAdmin)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": u, "token": tok})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.FindAllUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// handleUpdateUser applies a partial update. Only admins may change isAdmin.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var body store.UserPatch
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if c, _ := auth.ClaimsFrom(r.Context()); body.IsAdmin != nil && !c.IsAdmin {
		s.writeError(w, r, apperr.Forbidden("only admins may change isAdmin"))
		return
	}
	u, err := s.store.UpdateUser(r.Context(), chi.URLParam(r, "username"), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := s.store.RemoveUser(r.Context(), username); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": username})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Apply(r.Context(), chi.URLParam(r, "username"), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": id})
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, apperr.BadRequest("Invalid id: " + chi.URLParam(r, "id"))
	}
	return id, nil
}
