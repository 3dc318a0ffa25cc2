// internal/auth/middleware.go
//
// Authorization chain run in front of route handlers.
//
//   - Authenticate decorates the request with verified claims when a valid
//     bearer token is present. It never rejects: a missing or bad token just
//     leaves the request anonymous, so public routes stay reachable.
//   - Guards (LoggedIn, Admin, AdminOrSelf) each pass or reject a request
//     based only on those claims. Require composes them in a fixed order.
//
// Rejections come in two kinds: apperr.Unauthorized when there are no claims
// at all, apperr.Forbidden when the claims lack the needed privilege.

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/token"
)

// Verifier turns a raw token into claims.
type Verifier interface {
	Verify(tok string) (*token.Claims, error)
}

// Authenticate attaches the claims of a valid bearer token to the request context.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok, ok := bearerToken(r); ok {
				claims, err := v.Verify(tok)
				if err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				} else {
					hlog.FromRequest(r).Debug().Err(err).Msg("ignoring unverifiable token")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	a := r.Header.Get("Authorization")
	if len(a) < 7 || !strings.EqualFold(a[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(a[7:])
	return tok, tok != ""
}

// Guard passes a request (nil) or rejects it with an *apperr.Error.
type Guard func(r *http.Request) error

// LoggedIn requires an authenticated caller.
func LoggedIn(r *http.Request) error {
	if _, ok := ClaimsFrom(r.Context()); !ok {
		return apperr.Unauthorized("")
	}
	return nil
}

// Admin requires an authenticated admin.
func Admin(r *http.Request) error {
	c, ok := ClaimsFrom(r.Context())
	if !ok {
		return apperr.Unauthorized("")
	}
	if !c.IsAdmin {
		return apperr.Forbidden("admin privileges required")
	}
	return nil
}

// AdminOrSelf requires an admin, or a caller whose username equals the
// URL parameter param exactly.
func AdminOrSelf(param string) Guard {
	return func(r *http.Request) error {
		c, ok := ClaimsFrom(r.Context())
		if !ok {
			return apperr.Unauthorized("")
		}
		if c.IsAdmin || c.Username == chi.URLParam(r, param) {
			return nil
		}
		return apperr.Forbidden("admin or account owner required")
	}
}

// Require runs guards in order; the first rejection is handed to reject and
// ends the request.
func Require(reject func(http.ResponseWriter, *http.Request, error), guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, g := range guards {
				if err := g(r); err != nil {
					reject(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
