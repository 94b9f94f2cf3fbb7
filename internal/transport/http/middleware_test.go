package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/otti-labs/otti-workspace/internal/app"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

var testSecret = []byte("test-secret")

func signTestToken(t *testing.T, claims *app.SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func sessionClaims(role, tenantID string) *app.SessionClaims {
	return &app.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantID: tenantID,
		Role:     role,
	}
}

func TestAuth(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "t1", claims.TenantID)
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(testSecret)(next)

	t.Run("valid token passes claims through", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, sessionClaims(domain.RoleOperator, "t1")))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "token abc")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims(domain.RoleOperator, "t1")).
			SignedString([]byte("other-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		expired := sessionClaims(domain.RoleOperator, "t1")
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, expired))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireTenantAccess(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireTenantAccess(next)

	request := func(claims *app.SessionClaims, tenantID string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/tenants/"+tenantID+"/funnel", nil)
		req = withURLParams(req, map[string]string{"tenantID": tenantID})
		if claims != nil {
			req = req.WithContext(context.WithValue(req.Context(), sessionKey, claims))
		}
		return req
	}

	t.Run("operator reaches own tenant", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request(sessionClaims(domain.RoleOperator, "t1"), "t1"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("operator blocked from other tenant", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request(sessionClaims(domain.RoleOperator, "t1"), "t2"))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin reaches any tenant", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request(sessionClaims(domain.RoleAdmin, ""), "t2"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing session", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request(nil, "t1"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
