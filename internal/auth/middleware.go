package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can read or write the
// identity stored in a request context.
type contextKey string

const identityKey contextKey = "identity"

// Denylist answers whether a token id has been revoked (logged out).
// Implemented by the sqlite token repository.
type Denylist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth enforces authentication on protected routes. It reads the
// bearer token from the Authorization header, validates it as an access
// token, rejects revoked jtis, and stores the identity in the request
// context. Failures end the chain with 401.
func RequireAuth(tokens *TokenService, revoked Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identityFromRequest(r, tokens, revoked)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"unauthenticated","message":"valid authentication required"}`)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the authenticated identity, or (nil, false)
// for anonymous requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// UserIDFromContext is a convenience accessor for handlers that only need
// the caller's user ID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", false
	}
	return id.UserID, true
}

// BearerToken extracts the raw token from an Authorization header.
// Returns "" if the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func identityFromRequest(r *http.Request, tokens *TokenService, revoked Denylist) (*Identity, error) {
	raw := BearerToken(r)
	if raw == "" {
		return nil, errMissingToken
	}
	id, err := tokens.Validate(raw, TokenUseAccess)
	if err != nil {
		return nil, err
	}
	if revoked != nil {
		gone, err := revoked.IsRevoked(r.Context(), id.JTI)
		if err != nil {
			return nil, err
		}
		if gone {
			return nil, errRevokedToken
		}
	}
	return id, nil
}

var (
	errMissingToken = &authError{"missing bearer token"}
	errRevokedToken = &authError{"token has been revoked"}
)

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }
