package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userIDKey contextKey = "userID"

var errInvalidClaims = errors.New("token has no user_id claim")

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id set by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// BlacklistKey is the Redis key marking a logged out token.
func BlacklistKey(token string) string {
	return "blacklist:" + token
}

// NewAuth verifies the bearer JWT of each request and stores its user_id in
// the request context. Tokens blacklisted in Redis are rejected; without a
// Redis client the blacklist is not consulted.
func NewAuth(secret string, rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				unauthorized(w, "Invalid authorization header format")
				return
			}
			token := parts[1]

			if rdb != nil {
				n, err := rdb.Exists(r.Context(), BlacklistKey(token)).Result()
				if err != nil {
					log.Printf("[AUTH] Blacklist lookup failed: %v", err)
				} else if n > 0 {
					unauthorized(w, "Token has been revoked")
					return
				}
			}

			userID, err := validateToken(token, secret)
			if err != nil {
				log.Printf("[AUTH] Invalid token from %s: %v", r.RemoteAddr, err)
				unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func validateToken(tokenString, secret string) (string, error) {
	userID, _, err := ParseToken(tokenString, secret)
	return userID, err
}

// ParseToken verifies an HS256 token signed with secret and returns its
// user_id and expiry.
func ParseToken(tokenString, secret string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", time.Time{}, err
	}
	if !token.Valid {
		return "", time.Time{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, errInvalidClaims
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", time.Time{}, errInvalidClaims
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, jwt.ErrTokenInvalidClaims
	}
	return userID, exp.Time, nil
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
