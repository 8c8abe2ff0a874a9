/*Package access provides bearer-token verification and issuing for the
kumande backend.

Claims are decoded from a JWT bearer token by the middleware and added
to the request context with

  ctx = ContextWithClaims(ctx, claims)

and retrieved with

  claims := ClaimsFromContext(ctx)

Handlers for mutating routes require context claims as a precondition;
anonymous routes simply never look at them.
*/
package access

import (
	"context"
	"time"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

// the predefined context key
const (
	contextKeyClaims contextKey = "_claims_"
)

// Claims is the ephemeral record decoded from a bearer token. It exists
// only for the duration of a single authenticated request and is never
// persisted.
type Claims struct {
	// Subject is the id of the authenticated user
	Subject string
	// IssuedAt is the time the token was issued
	IssuedAt time.Time
	// ExpiresAt is the time the token expires
	ExpiresAt time.Time
}

// ContextWithClaims returns a new context with the claims added to it
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims, claims)
}

// ClaimsFromContext retrieves claims from the context
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(contextKeyClaims).(*Claims)
	if ok {
		return claims
	}
	return nil
}
