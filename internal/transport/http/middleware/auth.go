package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"logvault/internal/transport/http/api"
)

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth guards the admin surface with an HS256 bearer token carrying
// role=admin. Tokens are issued by the surrounding platform; an empty
// secret disables the guard for local development.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "bearer token required", GetRequestID(r.Context()))
				return
			}

			claims := &adminClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Role != "admin" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid token", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
