package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arcade_finder/internal/config"
	"arcade_finder/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testSecret signs tokens in tests
const testSecret = "test-secret"

// setupTest builds the full router over an in-memory SQLite database and miniredis.
func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	err = db.AutoMigrate(&domain.User{}, &domain.Arcade{}, &domain.Comment{})
	require.NoError(t, err, "failed to migrate tables")

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := &config.Config{JWTSecret: testSecret, StaticDir: t.TempDir()}
	return SetupRouter(db, rdb, cfg), db
}

// doRequest runs one request through the router and returns the recorder.
func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf := &bytes.Buffer{}
	if body != nil {
		require.NoError(t, json.NewEncoder(buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorder body into dest.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), "failed to decode response body")
}

// registerUser registers a user through the API and returns a session token.
func registerUser(t *testing.T, r *gin.Engine, username, email string) string {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "registration failed: %s", w.Body.String())
	var resp AuthResponse
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token, "no token issued")
	return resp.Token
}

// createArcade creates an arcade through the API and returns its id.
func createArcade(t *testing.T, r *gin.Engine, token, name string) uint {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/arcades", token, gin.H{
		"name":               name,
		"address":            "1 Main St",
		"days_open":          "Mon-Sat",
		"hours_of_operation": "12pm-2am",
		"serves_alcohol":     true,
	})
	require.Equal(t, http.StatusOK, w.Code, "arcade creation failed: %s", w.Body.String())
	var resp struct {
		Arcade domain.Arcade `json:"arcade"`
	}
	decodeBody(t, w, &resp)
	require.NotZero(t, resp.Arcade.ID, "arcade ID is not set")
	return resp.Arcade.ID
}
