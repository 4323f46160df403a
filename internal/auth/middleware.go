package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
// Only this package can create a key of this type, so no other package
// can read or shadow the userID value.
type contextKey string

const userIDKey contextKey = "userID"

// TokenHeader is the response header login uses to hand the token to
// the client, and the request header clients present it back on.
const TokenHeader = "auth-token"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// The token is accepted from three places, checked in order:
//  1. the "auth-token" header (the API's native contract)
//  2. an "Authorization: Bearer <token>" header
//  3. the "token" HttpOnly cookie set by the OAuth callback
//
// A valid token puts the userID in the request context; anything else
// ends the request with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the
// request context. Returns ("", false) on an anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID locates the token on the request and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	tokenStr := r.Header.Get(TokenHeader)

	if tokenStr == "" {
		if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
			tokenStr = strings.TrimPrefix(bearer, "Bearer ")
		}
	}

	if tokenStr == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return "", errors.New("auth: no token on request")
		}
		tokenStr = cookie.Value
	}

	return tokens.Validate(tokenStr)
}
