package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/api/middleware"
	"github.com/phrazzld/signup/internal/api/shared"
	"github.com/phrazzld/signup/internal/config"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/mocks"
	"github.com/phrazzld/signup/internal/platform/memory"
	"github.com/phrazzld/signup/internal/result"
	"github.com/phrazzld/signup/internal/service"
	"github.com/phrazzld/signup/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret-that-is-32-chars!"

type testServer struct {
	router http.Handler
	jwt    auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserStore()
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
	})
	require.NoError(t, err)

	userService := service.NewUserService(users, nil)
	authHandler := NewAuthHandler(service.NewRegistrationService(users, nil, nil), userService, jwtService)
	userHandler := NewUserHandler(userService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/refresh", authHandler.RefreshToken)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/api/users/{id}", userHandler.GetUser)
		r.Put("/api/users/{id}/email", userHandler.ChangeEmail)
		r.Put("/api/users/{id}/password", userHandler.ChangePassword)
	})

	return &testServer{router: r, jwt: jwtService}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.doAs(t, "", method, path, body)
}

// doAs sends the request with token as its bearer credential.
func (s *testServer) doAs(t *testing.T, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns the registration response.
func (s *testServer) register(t *testing.T, email string) RegisterResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"`+email+`","password":"Secret123!","accepted_terms":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[RegisterResponse](t, w)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
		wantError  string
	}{
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "missing email",
			body:       `{"password":"Secret123!","accepted_terms":true}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
			wantError:  "email is required",
		},
		{
			name:       "invalid email",
			body:       `{"email":"no-at-sign","password":"Secret123!","accepted_terms":true}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
			wantError:  "@",
		},
		{
			name:       "email without extension",
			body:       `{"email":"a@b","password":"Secret123!","accepted_terms":true}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
			wantError:  "domain extension",
		},
		{
			name:       "short password",
			body:       `{"email":"a@b.com","password":"short1!","accepted_terms":true}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "password",
			wantError:  "at least 8",
		},
		{
			name:       "terms not accepted",
			body:       `{"email":"a@b.com","password":"Secret123!","accepted_terms":false}`,
			wantStatus: http.StatusForbidden,
			wantError:  "Terms of service",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t)
			w := srv.do(t, http.MethodPost, "/api/auth/register", tc.body)

			assert.Equal(t, tc.wantStatus, w.Code)
			body := decodeBody[shared.ErrorResponse](t, w)
			assert.Contains(t, body.Error, tc.wantError)
			assert.Equal(t, tc.wantField, body.Field)
		})
	}
}

func TestRegister_SuccessThenConflict(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := `{"email":"USER@Example.com","password":"SuperSecret123!","accepted_terms":true}`

	w := srv.do(t, http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "SuperSecret123!")
	assert.NotContains(t, w.Body.String(), "password\":")

	resp := decodeBody[RegisterResponse](t, w)
	assert.Equal(t, "user@example.com", resp.User.Email)
	assert.True(t, resp.User.AcceptedTerms)
	assert.Equal(t, "medium", resp.PasswordStrength)
	assert.NotEmpty(t, resp.ExpiresAt)

	claims, err := srv.jwt.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	w = srv.do(t, http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists", decodeBody[shared.ErrorResponse](t, w).Error)

	w = srv.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"other@example.com","password":"SuperSecret123!","accepted_terms":true}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	reg := srv.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"a@b.com","password":"Secret123!","accepted_terms":true}`)
	require.Equal(t, http.StatusCreated, reg.Code)
	registered := decodeBody[RegisterResponse](t, reg)

	w := srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"Secret123!"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[AuthResponse](t, w)
	assert.Equal(t, registered.User.ID, resp.UserID)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	_, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	assert.NoError(t, err)

	w = srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"Wrong123!"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeBody[shared.ErrorResponse](t, w).Error)

	w = srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"nobody@b.com","password":"Secret123!"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	registered := srv.register(t, "a@b.com")
	path := "/api/users/" + registered.User.ID.String()

	w := srv.doAs(t, registered.Token, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody[UserResponse](t, w)
	assert.Equal(t, registered.User.ID, user.ID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = srv.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.doAs(t, registered.RefreshToken, http.MethodGet, path, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are not bearer credentials")

	w = srv.doAs(t, registered.Token, http.MethodGet, "/api/users/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decodeBody[shared.ErrorResponse](t, w).Field)
}

func TestGetUser_OtherUsersAreHidden(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	owner := srv.register(t, "owner@b.com")
	caller := srv.register(t, "caller@b.com")

	w := srv.doAs(t, caller.Token, http.MethodGet, "/api/users/"+owner.User.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "owner@b.com")

	w = srv.doAs(t, caller.Token, http.MethodGet, "/api/users/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.doAs(t, caller.Token, http.MethodPut, "/api/users/"+owner.User.ID.String()+"/email",
		`{"email":"stolen@b.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.doAs(t, owner.Token, http.MethodGet, "/api/users/"+owner.User.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner@b.com", decodeBody[UserResponse](t, w).Email)
}

func TestGetUser_DeletedAccount(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ghost := uuid.New()
	token, _, err := srv.jwt.GenerateToken(context.Background(), ghost)
	require.NoError(t, err)

	w := srv.doAs(t, token, http.MethodGet, "/api/users/"+ghost.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	registered := srv.register(t, "a@b.com")
	require.NotEmpty(t, registered.RefreshToken)
	_, err := time.Parse(time.RFC3339, registered.RefreshExpiresAt)
	require.NoError(t, err)

	w := srv.do(t, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"`+registered.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[AuthResponse](t, w)
	assert.Equal(t, registered.User.ID, resp.UserID)

	claims, err := srv.jwt.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	refreshed, err := srv.jwt.ValidateRefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.UserID)
}

func TestRefreshToken_Rejected(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	registered := srv.register(t, "a@b.com")
	orphan, _, err := srv.jwt.GenerateRefreshToken(context.Background(), uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "missing token", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "garbage token", body: `{"refresh_token":"garbage"}`, wantStatus: http.StatusUnauthorized},
		{name: "access token", body: `{"refresh_token":"` + registered.Token + `"}`, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", body: `{"refresh_token":"` + orphan + `"}`, wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/api/auth/refresh", tc.body)
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestChangeEmail(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	registered := srv.register(t, "a@b.com")
	srv.register(t, "taken@b.com")
	path := "/api/users/" + registered.User.ID.String() + "/email"

	w := srv.doAs(t, registered.Token, http.MethodPut, path, `{"email":"New@B.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "new@b.com", decodeBody[UserResponse](t, w).Email)

	w = srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"new@b.com","password":"Secret123!"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.doAs(t, registered.Token, http.MethodPut, path, `{"email":"taken@b.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.doAs(t, registered.Token, http.MethodPut, path, `{"email":"broken"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decodeBody[shared.ErrorResponse](t, w).Field)

	w = srv.do(t, http.MethodPut, path, `{"email":"anon@b.com"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	registered := srv.register(t, "a@b.com")
	path := "/api/users/" + registered.User.ID.String() + "/password"

	w := srv.doAs(t, registered.Token, http.MethodPut, path,
		`{"current_password":"Wrong123!","new_password":"Another456?"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.doAs(t, registered.Token, http.MethodPut, path,
		`{"current_password":"Secret123!","new_password":"weak"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password", decodeBody[shared.ErrorResponse](t, w).Field)

	w = srv.doAs(t, registered.Token, http.MethodPut, path,
		`{"current_password":"Secret123!","new_password":"Another456?"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Another456?")

	w = srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"Secret123!"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"Another456?"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

type failingRegistrar struct{ err error }

func (f failingRegistrar) Register(context.Context, service.RegisterCommand) (result.Result[*domain.User, error], error) {
	return result.Result[*domain.User, error]{}, f.err
}

func TestRegister_InfrastructureFailure(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(failingRegistrar{err: errors.New("connection refused")}, nil, &mocks.MockJWTService{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"Secret123!","accepted_terms":true}`))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody[shared.ErrorResponse](t, w)
	assert.Equal(t, "Failed to register user", body.Error)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRegister_TokenFailure(t *testing.T) {
	t.Parallel()

	users := memory.NewUserStore()
	jwtService := &mocks.MockJWTService{Err: errors.New("signing failed")}
	h := NewAuthHandler(service.NewRegistrationService(users, nil, nil), service.NewUserService(users, nil), jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"a@b.com","password":"Secret123!","accepted_terms":true}`))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{domain.ValidationError{Field: domain.FieldEmail, Reason: "bad"}, http.StatusBadRequest},
		{service.ErrEmailExists, http.StatusConflict},
		{service.ErrTermsNotAccepted, http.StatusForbidden},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{auth.ErrExpiredRefreshToken, http.StatusUnauthorized},
		{auth.ErrWrongTokenType, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err), tc.err.Error())
	}

	assert.Equal(t, "bad", GetSafeErrorMessage(domain.ValidationError{Field: "email", Reason: "bad"}))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("pq: secret detail")))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
