// api/handlers/helpers_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/projecthub-backend/api"
	"github.com/Annany2002/projecthub-backend/config"
	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/domain"
	"github.com/Annany2002/projecthub-backend/internal/storage"
)

const testAuthHeader = "x-access-token"

// testDBSetup creates a temporary SQLite DB for testing and returns the store and config.
func testDBSetup(t *testing.T) (*storage.Store, *config.Config) {
	t.Helper()

	tempDir := t.TempDir()
	testCfg := &config.Config{
		ServerPort:         "0",
		JWTSecret:          "test_secret_key_for_integration_tests_1234567890",
		JWTExpiration:      time.Minute * 5,
		AuthHeader:         testAuthHeader,
		DBDriver:           config.DriverSQLite,
		DatabaseDir:        tempDir,
		DatabaseFile:       "test_projecthub.db",
		DBQueryTimeout:     5 * time.Second,
		UploadDir:          filepath.Join(tempDir, "uploads"),
		MaxUploadBytes:     1 << 20,
		LoginRateLimit:     100,
		LoginRateWindow:    time.Minute,
		CORSAllowedOrigins: []string{"*"},
	}

	store, err := storage.Open(context.Background(), testCfg)
	if err != nil {
		t.Fatalf("Failed to open test database in '%s': %v", tempDir, err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})
	return store, testCfg
}

// setupTestServer creates a test server instance with a test DB.
func setupTestServer(t *testing.T) (*httptest.Server, *storage.Store, *config.Config) {
	t.Helper()
	store, cfg := testDBSetup(t)
	return startServer(t, store, cfg), store, cfg
}

func startServer(t *testing.T, store *storage.Store, cfg *config.Config) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	server := httptest.NewServer(api.SetupRouter(store, cfg))
	t.Cleanup(server.Close)
	return server
}

// seedUser inserts an active user directly through storage.
func seedUser(t *testing.T, store *storage.Store, name, userName, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user, err := store.Users.Create(context.Background(), domain.NewUser{
		Name: name, UserName: userName, Email: email, PasswordHash: hash, Role: role,
	})
	require.NoError(t, err)
	return user
}

func tokenFor(t *testing.T, cfg *config.Config, user *domain.User) string {
	t.Helper()
	token, err := auth.GenerateJWT(user, cfg.JWTSecret, cfg.JWTExpiration)
	require.NoError(t, err)
	return token
}

// doJSON sends body as JSON (nil for none) with an optional access token and
// decodes the JSON response into a map.
func doJSON(t *testing.T, method, url, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(bodyBytes)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(testAuthHeader, token)
	}
	return send(t, req)
}

func send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var resBody map[string]interface{}
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &resBody), "response body: %s", raw)
	}
	return res.StatusCode, resBody
}
