package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
)

// JWTMiddleware verifies the bearer token and injects user_id, username
// and is_admin into the request context.
func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			bearerToken := strings.Split(authHeader, " ")
			if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
				http.Error(w, "Invalid token format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(bearerToken[1], &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(*jwt.MapClaims)
			if !ok || !token.Valid {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			userID, ok := (*claims)["user_id"].(float64)
			if !ok {
				http.Error(w, "Invalid user ID in token", http.StatusUnauthorized)
				return
			}
			username, _ := (*claims)["username"].(string)
			isAdmin, _ := (*claims)["is_admin"].(bool)

			ctx := context.WithValue(r.Context(), "user_id", uint(userID))
			ctx = context.WithValue(ctx, "username", username)
			ctx = context.WithValue(ctx, "is_admin", isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnsureCorrectUserOrAdmin allows a request through only when the token's
// username matches the {username} route variable, or the token carries
// the admin flag.
func EnsureCorrectUserOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value("username").(string)
		isAdmin, _ := r.Context().Value("is_admin").(bool)

		target := mux.Vars(r)["username"]
		if !isAdmin && (username == "" || username != target) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EnsureAdmin allows only admin tokens through.
func EnsureAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin, _ := r.Context().Value("is_admin").(bool)
		if !isAdmin {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
