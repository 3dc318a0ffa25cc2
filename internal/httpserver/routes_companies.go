package httpserver

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/auth"
	"github.com/ayresjulia/jobly/internal/store"
)

func (s *Server) mountCompanyRoutes() {
	s.r.Route("/companies", func(r chi.Router) {
		r.Get("/", s.handleListCompanies)
		r.Get("/{handle}", s.handleGetCompany)

		admin := r.With(s.require(auth.Admin))
		admin.Post("/", s.handleCreateCompany)
		admin.Patch("/{handle}", s.handleUpdateCompany)
		admin.Delete("/{handle}", s.handleDeleteCompany)
	})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var body store.NewCompany
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.store.CreateCompany(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"company": c})
}

// handleListCompanies accepts nameLike, minEmployees and maxEmployees.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := onlyParams(q, "nameLike", "minEmployees", "maxEmployees"); err != nil {
		s.writeError(w, r, err)
		return
	}
	var (
		f   = store.CompanyFilter{NameLike: q.Get("nameLike")}
		err error
	)
	if f.MinEmployees, err = intParam(q, "minEmployees"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.MaxEmployees, err = intParam(q, "maxEmployees"); err != nil {
		s.writeError(w, r, err)
		return
	}

	companies, err := s.store.FindAllCompanies(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCompany(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": c})
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var body store.CompanyPatch
	if err := s.decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.store.UpdateCompany(r.Context(), chi.URLParam(r, "handle"), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": c})
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if err := s.store.RemoveCompany(r.Context(), handle); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": handle})
}

// ----------------------------- query params --------------------------------

// onlyParams rejects query parameters outside allowed.
func onlyParams(q url.Values, allowed ...string) error {
	var bad []string
	for k := range q {
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			bad = append(bad, "unknown query parameter: "+k)
		}
	}
	if len(bad) > 0 {
		return apperr.BadRequest("Invalid query", bad...)
	}
	return nil
}

// intParam parses an optional non-negative integer parameter.
func intParam(q url.Values, name string) (*int, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, apperr.BadRequest("Invalid query", name+" must be a non-negative integer")
	}
	return &n, nil
}
