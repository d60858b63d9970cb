package middleware

import (
	"net/http"

	"resort-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminToken guards staff routes with a shared token whose bcrypt hash is
// configured. An empty hash locks every admin route.
func AdminToken(tokenHash string, logger *zap.Logger) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			if token == "" {
				utils.ResponseUnauthorized(w, "Missing admin token")
				return
			}

			if len(hash) == 0 {
				logger.Error("Admin route called but no admin token hash is configured",
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access disabled")
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				logger.Warn("Admin check: invalid token",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseUnauthorized(w, "Invalid admin token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
