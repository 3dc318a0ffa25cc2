// internal/httpserver/server.go
//
// HTTP server wiring for the Jobly API.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery, timeouts,
//     JSON, CORS, metrics, token authentication).
//   - Public endpoints: "/health", "/metrics".
//   - Resource endpoints: mounted by routes_auth.go, routes_users.go,
//     routes_companies.go and routes_jobs.go.
//   - JSON request decoding/validation and JSON error responses.
//
// Notes:
//   - CORS is origin-aware for a single configured client origin.
//   - auth.Authenticate runs on every request and never rejects; routes
//     that need an identity add guards with s.require(...).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/auth"
	"github.com/ayresjulia/jobly/internal/store"
	"github.com/ayresjulia/jobly/internal/token"
)

// Options tunes the HTTP layer.
type Options struct {
	ClientOrigin   string        // allowed CORS origin
	RequestTimeout time.Duration // per-request handler budget; 0 means 10s
	Logger         *zerolog.Logger
}

// Server bundles the router with the store and token codec it serves.
type Server struct {
	r        *chi.Mux
	store    *store.Store
	codec    *token.Codec
	validate *validator.Validate
	metrics  *metrics
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options, st *store.Store, codec *token.Codec) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		codec:    codec,
		validate: newValidator(),
		metrics:  newMetrics(prometheus.NewRegistry()),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(logger))
	s.r.Use(requestIDLogger)
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))
	s.r.Use(s.metrics.instrument)
	s.r.Use(auth.Authenticate(codec))

	// --- diagnostics ---
	s.r.Get("/health", s.handleHealth)
	s.r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	// JSON 404/405, set before mounting so subrouters inherit them
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, apperr.NotFound("Not Found: %s", r.URL.Path))
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, apperr.New(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})

	s.mountAuthRoutes()
	s.mountUserRoutes()
	s.mountCompanyRoutes()
	s.mountJobRoutes()

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info().Str("addr", addr).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check")
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// require wraps a route with guards; rejections become JSON errors.
func (s *Server) require(guards ...auth.Guard) func(http.Handler) http.Handler {
	return auth.Require(s.writeError, guards...)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows a single origin to call the API with bearer tokens.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDLogger adds chi's request id to the request logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ responses ----------------------------------

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with err's status and message. Errors that are not
// *apperr.Error are logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		hlog.FromRequest(r).Error().Err(err).Msg("unhandled error")
		e = apperr.New(http.StatusInternalServerError, "Internal Server Error")
	} else if e.Status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("server error")
	}
	writeJSON(w, e.Status, errorBody{Error: errorPayload{
		Message: e.Message,
		Status:  e.Status,
		Details: e.Details,
	}})
}
