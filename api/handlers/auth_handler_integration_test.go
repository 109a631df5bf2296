// api/handlers/auth_handler_integration_test.go
package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/projecthub-backend/api/models"
	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/domain"
)

// TestAuthEndpoints performs integration tests on /auth/login and /auth/me.
func TestAuthEndpoints(t *testing.T) {
	server, store, cfg := setupTestServer(t)
	assert := assert.New(t)

	testPassword := "StrongPassword123!"
	user := seedUser(t, store, "Test User", "tester", "test.user@integration.com", testPassword, domain.RoleUser)

	t.Run("Login Success", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, server.URL+"/auth/login", "",
			models.LoginRequest{Email: user.Email, Password: testPassword})

		assert.Equal(http.StatusOK, status, "Expected status 200 OK")
		assert.Equal("Login successful", body["message"])
		token, _ := body["token"].(string)
		require.NotEmpty(t, token)

		claim, err := auth.NewVerifier(cfg.JWTSecret).Verify(token)
		require.NoError(t, err)
		assert.Equal(user.ID, claim.SubjectID)
		assert.Equal(domain.RoleUser, claim.Role)
		assert.Equal("Test User", claim.DisplayName)
		assert.WithinDuration(time.Now().Add(cfg.JWTExpiration), claim.ExpiresAt, 5*time.Second)

		userBody, ok := body["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(user.Email, userBody["email"])
		assert.NotContains(userBody, "passwordHash")
		assert.NotContains(userBody, "password_hash")
	})

	t.Run("Login Wrong Password", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, server.URL+"/auth/login", "",
			models.LoginRequest{Email: user.Email, Password: "wrong-password"})

		assert.Equal(http.StatusUnauthorized, status)
		assert.Equal("Invalid credentials", body["message"])
		assert.Equal("INVALID_CREDENTIALS", body["error"])
		assert.NotContains(body, "token")
	})

	t.Run("Login Unknown Email Looks The Same", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, server.URL+"/auth/login", "",
			models.LoginRequest{Email: "nobody@integration.com", Password: testPassword})

		assert.Equal(http.StatusUnauthorized, status)
		assert.Equal("Invalid credentials", body["message"])
		assert.NotContains(body, "token")
	})

	t.Run("Login Bad Request (Invalid Email Format)", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, server.URL+"/auth/login", "",
			models.LoginRequest{Email: "invalid-email-format", Password: testPassword})

		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("VALIDATION_ERROR", body["error"])
		assert.Contains(body["message"], "email")
	})

	t.Run("Login Bad Request (Malformed Body)", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/auth/login", nil)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		status, body := send(t, req)
		assert.Equal(http.StatusBadRequest, status)
		assert.Equal("VALIDATION_ERROR", body["error"])
	})

	t.Run("Login Deleted User", func(t *testing.T) {
		gone := seedUser(t, store, "Gone", "gone", "gone@integration.com", testPassword, domain.RoleUser)
		_, err := store.Users.SoftDelete(t.Context(), gone.ID)
		require.NoError(t, err)

		status, body := doJSON(t, http.MethodPost, server.URL+"/auth/login", "",
			models.LoginRequest{Email: gone.Email, Password: testPassword})
		assert.Equal(http.StatusUnauthorized, status)
		assert.Equal("Invalid credentials", body["message"])
	})

	t.Run("Me Without Token", func(t *testing.T) {
		status, body := doJSON(t, http.MethodGet, server.URL+"/auth/me", "", nil)
		assert.Equal(http.StatusUnauthorized, status)
		assert.Equal("MISSING_TOKEN", body["error"])
		assert.Equal("Access denied. No token provided.", body["message"])
	})

	t.Run("Me With Token", func(t *testing.T) {
		status, body := doJSON(t, http.MethodGet, server.URL+"/auth/me", tokenFor(t, cfg, user), nil)
		assert.Equal(http.StatusOK, status)
		claim, ok := body["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(float64(user.ID), claim["id"])
		assert.Equal("USER", claim["role"])
	})

	t.Run("Me With Expired Token", func(t *testing.T) {
		expired, err := auth.GenerateJWT(user, cfg.JWTSecret, -time.Minute)
		require.NoError(t, err)
		status, body := doJSON(t, http.MethodGet, server.URL+"/auth/me", expired, nil)
		assert.Equal(http.StatusUnauthorized, status)
		assert.Equal("INVALID_TOKEN", body["error"])
		assert.Equal("Invalid or expired token.", body["message"])
	})
}

func TestLoginRateLimit(t *testing.T) {
	store, cfg := testDBSetup(t)
	cfg.LoginRateLimit = 2
	server := startServer(t, store, cfg)

	login := models.LoginRequest{Email: "someone@integration.com", Password: "whatever-password"}
	for i := 0; i < 2; i++ {
		status, _ := doJSON(t, http.MethodPost, server.URL+"/auth/login", "", login)
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	status, body := doJSON(t, http.MethodPost, server.URL+"/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["error"])

	// other routes are not throttled
	status, _ = doJSON(t, http.MethodGet, server.URL+"/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
