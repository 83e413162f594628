package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/config"
	"github.com/phrazzld/signup/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret-that-is-32-chars!"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeoutSeconds: 1},
		Database: config.DatabaseConfig{
			MaxOpenConns: 1,
		},
		Auth: config.AuthConfig{
			JWTSecret:                   testSecret,
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 120,
			BCryptCost:                  4,
		},
	}
}

func newTestApp(t *testing.T) *application {
	t.Helper()
	app, err := newApplication(context.Background(), testConfig(), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func TestRouter_RegistrationFlow(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestApp(t).setupRouter())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"email":"a@b.com","password":"Secret123!","accepted_terms":true}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	var registered struct {
		User struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
		Token            string `json:"token"`
		RefreshToken     string `json:"refresh_token"`
		PasswordStrength string `json:"password_strength"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	assert.Equal(t, "weak", registered.PasswordStrength)

	get := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/users/"+registered.User.ID.String(), nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		return res.StatusCode
	}

	assert.Equal(t, http.StatusOK, get(registered.Token))
	assert.Equal(t, http.StatusUnauthorized, get(""))
	assert.Equal(t, http.StatusUnauthorized, get("not-a-token"))

	refreshed, err := http.Post(srv.URL+"/api/auth/refresh", "application/json",
		strings.NewReader(`{"refresh_token":"`+registered.RefreshToken+`"}`))
	require.NoError(t, err)
	refreshed.Body.Close()
	assert.Equal(t, http.StatusOK, refreshed.StatusCode)

	dup, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"email":"A@B.com","password":"Secret123!","accepted_terms":true}`))
	require.NoError(t, err)
	dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newTestApp(t).setupRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestNewApplication_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	_, err := newApplication(context.Background(), cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("SIGNUP_AUTH_JWT_SECRET", testSecret)
	t.Setenv("SIGNUP_SERVER_LOG_LEVEL", "error")

	userID := uuid.New()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--user-id", userID.String()})
	require.NoError(t, root.Execute())

	jwtService, err := auth.NewJWTService(testConfig().Auth)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenCommand_InvalidUserID(t *testing.T) {
	t.Setenv("SIGNUP_AUTH_JWT_SECRET", testSecret)
	t.Setenv("SIGNUP_SERVER_LOG_LEVEL", "error")

	root := newRootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"token", "--user-id", "nope"})
	assert.Error(t, root.Execute())
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("SIGNUP_AUTH_JWT_SECRET", testSecret)
	t.Setenv("SIGNUP_SERVER_LOG_LEVEL", "error")
	t.Setenv("SIGNUP_DATABASE_URL", "")

	root := newRootCommand()
	root.SetArgs([]string{"migrate", "status"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}
