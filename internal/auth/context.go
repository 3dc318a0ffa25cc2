package auth

import (
	"context"

	"github.com/ayresjulia/jobly/internal/token"
)

// ctxUserKey is the context key for the verified claims of the caller.
type ctxUserKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, c)
}

// ClaimsFrom returns the caller's claims, if the request was authenticated.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, _ := ctx.Value(ctxUserKey{}).(*token.Claims)
	return c, c != nil
}
