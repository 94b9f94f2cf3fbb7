package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/otti-labs/otti-workspace/internal/app"
	"github.com/otti-labs/otti-workspace/internal/domain"
	"github.com/otti-labs/otti-workspace/pkg/logger"
	"github.com/otti-labs/otti-workspace/pkg/metrics"
)

type contextKey string

const sessionKey contextKey = "session"

// Auth validates the bearer token and stores the session claims in the
// request context.
func Auth(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid authorization header format")
				return
			}

			claims := &app.SessionClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the authenticated session claims, if any.
func SessionFromContext(ctx context.Context) (*app.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionKey).(*app.SessionClaims)
	return claims, ok
}

// RequireTenantAccess blocks operators from routes outside their own tenant.
// Admins pass for any tenant.
func RequireTenantAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
			return
		}
		if claims.Role != domain.RoleAdmin {
			tenantID := chi.URLParam(r, "tenantID")
			if tenantID == "" || tenantID != claims.TenantID {
				writeError(w, http.StatusForbidden, codeForbidden, "tenant access denied")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs request details with latency and records request
// metrics. The route pattern, not the raw path, labels the metrics so
// per-customer URLs do not explode cardinality.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}

			metrics.RecordRequest(r.Method, pattern, strconv.Itoa(rec.status), duration.Seconds())
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", duration),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
