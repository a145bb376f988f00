package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userEcho(seen **domain.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = r.Context().Value(domain.UserContextKey).(*domain.User)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetSecret("test-secret")

	t.Run("bearer token puts claims in context", func(t *testing.T) {
		token, err := utils.GenerateJWT("u1", "nina@example.com", "customer", time.Hour)
		require.NoError(t, err)

		var seen *domain.User
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		AuthMiddleware(userEcho(&seen)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.ID)
		assert.Equal(t, "nina@example.com", seen.Email)
		assert.Equal(t, "customer", seen.Role)
	})

	t.Run("accessToken cookie is accepted", func(t *testing.T) {
		token, err := utils.GenerateJWT("u2", "sam@example.com", "customer", time.Hour)
		require.NoError(t, err)

		var seen *domain.User
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		AuthMiddleware(userEcho(&seen)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u2", seen.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		var seen *domain.User
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		AuthMiddleware(userEcho(&seen)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := utils.GenerateJWT("u1", "nina@example.com", "customer", -time.Minute)
		require.NoError(t, err)

		var seen *domain.User
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		AuthMiddleware(userEcho(&seen)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		utils.SetSecret("some-other-secret")
		token, err := utils.GenerateJWT("u1", "nina@example.com", "customer", time.Hour)
		require.NoError(t, err)
		utils.SetSecret("test-secret")

		var seen *domain.User
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		AuthMiddleware(userEcho(&seen)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminMiddleware(t *testing.T) {
	utils.SetSecret("test-secret")

	serve := func(role string) *httptest.ResponseRecorder {
		token, err := utils.GenerateJWT("u1", "nina@example.com", role, time.Hour)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/price-lists", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		AuthMiddleware(AdminMiddleware(next)).ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("admin").Code)
	assert.Equal(t, http.StatusForbidden, serve("customer").Code)

	t.Run("admin gate alone rejects anonymous requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/price-lists", nil)
		AdminMiddleware(http.NotFoundHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
