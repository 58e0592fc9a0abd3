package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/torneos-api/services"
	"github.com/go-chi/chi/v5"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RequireTournamentAdmin проверяет Bearer-токен и его привязку к турниру из
// URL-параметра {id}. Токен чужого турнира — 403, а не 401: подпись валидна,
// но область действия не та.
func RequireTournamentAdmin(creds services.CredentialService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			torneoID := chi.URLParam(r, "id")
			if torneoID == "" {
				writeAuthError(w, http.StatusBadRequest, "missing tournament id")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "authorization header is required")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				writeAuthError(w, http.StatusUnauthorized, "authorization header must be of the form 'Bearer <token>'")
				return
			}

			claims, err := creds.VerifyAdminToken(parts[1], torneoID)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrTokenExpired):
					writeAuthError(w, http.StatusUnauthorized, "token has expired")
				case errors.Is(err, services.ErrTokenWrongTournament):
					writeAuthError(w, http.StatusForbidden, "token is not valid for this tournament")
				default:
					writeAuthError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaimsFromContext достаёт проверенные claims из контекста запроса.
func AdminClaimsFromContext(ctx context.Context) (*services.AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(*services.AdminClaims)
	return claims, ok
}
