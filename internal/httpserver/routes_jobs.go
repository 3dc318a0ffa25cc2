package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/auth"
	"github.com/ayresjulia/jobly/internal/store"
)

func (s *Server) mountJobRoutes() {
	s.r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.handleListJobs)
		r.Get("/{id:[0-9]+}", s.handleGetJob)

		admin := r.With(s.require(auth.Admin))
		admin.Post("/", s.handleCreateJob)
		admin.Patch("/{id:[0-9]+}", s.handleUpdateJob)
		admin.Delete("/{id:[0-9]+}", s.handleDeleteJob)
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var body store.NewJob
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	j, err := s.store.CreateJob(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"job": j})
}

// handleListJobs accepts title, minSalary and hasEquity.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := onlyParams(q, "title", "minSalary", "hasEquity"); err != nil {
		s.writeError(w, r, err)
		return
	}
	f := store.JobFilter{Title: q.Get("title")}
	var err error
	if f.MinSalary, err = intParam(q, "minSalary"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := q.Get("hasEquity"); v != "" {
		if f.HasEquity, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, apperr.BadRequest("Invalid query", "hasEquity must be true or false"))
			return
		}
	}

	jobs, err := s.store.FindAllJobs(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	j, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": j})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body store.JobPatch
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	j, err := s.store.UpdateJob(r.Context(), id, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": j})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.RemoveJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
