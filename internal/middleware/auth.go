package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"relay-backend/internal/auth"
)

type contextKey string

const UsernameKey contextKey = "username"

// BasicAuth gates mutating routes behind the fixed-identity verifier and
// attaches the authenticated username to the request context.
type BasicAuth struct {
	verifier *auth.Verifier
}

func NewBasicAuth(verifier *auth.Verifier) *BasicAuth {
	return &BasicAuth{verifier: verifier}
}

func (a *BasicAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="chat"`)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing credentials", r)
			return
		}

		if !a.verifier.Verify(username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="chat"`)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials", r)
			return
		}

		ctx := context.WithValue(r.Context(), UsernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUsername extracts the authenticated username from the request context.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// JWTAuth mints the short-lived tokens the websocket feed authenticates
// with. The HTTP routes themselves stay on basic auth.
type JWTAuth struct {
	Secret []byte
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret)}
}

// GenerateAccessToken creates a JWT with 15 minute expiry.
func (j *JWTAuth) GenerateAccessToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(15 * time.Minute).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
