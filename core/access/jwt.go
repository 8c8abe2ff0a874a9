package access

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"github.com/relabs-tech/kumande/core/logger"
)

// ErrInvalidOrExpired is the one and only verification error. The
// verifier deliberately does not distinguish failure causes - bad
// signature, expired, malformed, wrong algorithm all look the same to
// the caller, so a rejected token leaks nothing about why.
var ErrInvalidOrExpired = errors.New("invalid or expired token")

// TokenValidity is the lifetime of issued bearer tokens.
const TokenValidity = time.Hour

// Verifier decodes and validates bearer credentials against a
// configured secret and HMAC signing algorithm. It is stateless; Verify
// is a pure function over (credential, secret, algorithm, now).
type Verifier struct {
	secret []byte
	method jwt.SigningMethod
}

// NewVerifier creates a verifier for the given secret and algorithm.
// Supported algorithms are HS256, HS384 and HS512. Both values come
// from process configuration and are resolved once at startup.
func NewVerifier(secret, algorithm string) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret must not be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	switch method {
	case jwt.SigningMethodHS256, jwt.SigningMethodHS384, jwt.SigningMethodHS512:
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &Verifier{secret: []byte(secret), method: method}, nil
}

// Issue signs a token for the given subject with issued-at now and
// expiry now+TokenValidity.
func (v *Verifier) Issue(subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
	}
	return jwt.NewWithClaims(v.method, claims).SignedString(v.secret)
}

// Verify decodes and validates the credential. On success it returns
// the decoded claims; on any failure it returns ErrInvalidOrExpired.
func (v *Verifier) Verify(credential string) (*Claims, error) {
	registered := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(credential, &registered, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != v.method.Alg() {
			return nil, ErrInvalidOrExpired
		}
		return v.secret, nil
	})
	if err != nil || token == nil || !token.Valid || registered.Subject == "" ||
		registered.IssuedAt == nil || registered.ExpiresAt == nil {
		return nil, ErrInvalidOrExpired
	}
	return &Claims{
		Subject:   registered.Subject,
		IssuedAt:  registered.IssuedAt.Time,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// NewJwtMiddleware returns a middleware handler to validate JWT bearer
// tokens.
//
// Tokens are accepted as "Authorization: Bearer" header. If a token is
// present and valid, the decoded claims are stored in the request
// context and the requester's identity is added to the context logger.
// If a token is present but invalid, the request is rejected right away
// with the uniform auth failure. Requests without a token pass through
// unauthenticated; routes that require authentication reject those via
// Required.
func NewJwtMiddleware(v *Verifier) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ClaimsFromContext(r.Context()) != nil { // already authenticated?
				h.ServeHTTP(w, r)
				return
			}

			tokenString := ""
			bearer := r.Header.Get("Authorization")
			if len(bearer) > 0 && bearer != "null" {
				if len(bearer) >= 8 && strings.ToLower(bearer[:7]) == "bearer " {
					tokenString = bearer[7:]
				} else {
					tokenString = bearer
				}
			}
			if len(tokenString) == 0 {
				h.ServeHTTP(w, r) // no token no auth, moving on
				return
			}

			claims, err := v.Verify(tokenString)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			// now that we have authenticated the requester, we store their
			// identity in the context
			ctx := ContextWithClaims(r.Context(), claims)
			ctx, _ = logger.ContextWithLoggerIdentity(ctx, claims.Subject)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Required wraps a handler for a mutating route. It rejects requests
// that did not authenticate with the same uniform failure the verifier
// uses, before the handler ever runs.
func Required(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ClaimsFromContext(r.Context()) == nil {
			writeUnauthorized(w)
			return
		}
		h(w, r)
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"detail":"` + ErrInvalidOrExpired.Error() + `"}`))
}
