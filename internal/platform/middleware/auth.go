package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "circ/pkg/domain"
	"circ/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims are the claims the middleware needs to identify an actor.
type TokenClaims struct {
	UserID id.UserID
	Role   id.Role
}

// RequireRole rejects requests without a valid bearer token carrying the
// given role. The authenticated actor is placed in the request context so
// audit entries can attribute the action.
func RequireRole(validator TokenValidator, role id.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "unauthorized - missing token",
					"request_id", requestcontext.RequestID(ctx))
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx))
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if claims.Role != role {
				logger.WarnContext(ctx, "forbidden - insufficient role",
					"required", role.String(),
					"actual", claims.Role.String(),
					"request_id", requestcontext.RequestID(ctx))
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx = requestcontext.WithActor(ctx, claims.UserID)
			ctx = requestcontext.WithActorRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	return strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `"}`))
}
