package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/api/shared"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/result"
	"github.com/phrazzld/signup/internal/service"
	"github.com/phrazzld/signup/internal/service/auth"
)

// Registrar registers new users.
type Registrar interface {
	Register(ctx context.Context, cmd service.RegisterCommand) (result.Result[*domain.User, error], error)
}

// UserReader looks users up and checks their credentials.
type UserReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (result.Result[*domain.User, error], error)
	Authenticate(ctx context.Context, email, password string) (result.Result[*domain.User, error], error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	registrar  Registrar
	users      UserReader
	jwtService auth.JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(registrar Registrar, users UserReader, jwtService auth.JWTService) *AuthHandler {
	return &AuthHandler{
		registrar:  registrar,
		users:      users,
		jwtService: jwtService,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.registrar.Register(r.Context(), service.RegisterCommand{
		Email:         req.Email,
		Password:      req.Password,
		AcceptedTerms: req.AcceptedTerms,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to register user", err)
		return
	}
	if res.IsError() {
		respondWithFailure(w, r, res.Err())
		return
	}

	user := res.Value()
	tokens, ok := h.issueTokens(w, r, user.ID)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		User:             newUserResponse(user),
		Token:            tokens.access,
		ExpiresAt:        formatExpiry(tokens.accessExpiresAt),
		RefreshToken:     tokens.refresh,
		RefreshExpiresAt: formatExpiry(tokens.refreshExpiresAt),
		PasswordStrength: string(user.Password.Strength()),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to authenticate user", err)
		return
	}
	if res.IsError() {
		respondWithFailure(w, r, res.Err())
		return
	}

	h.respondWithTokens(w, r, res.Value().ID)
}

// RefreshToken handles POST /api/auth/refresh. A valid refresh token for a
// user that still exists is exchanged for a new access and refresh token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithFailure(w, r, err)
		return
	}

	res, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to refresh token", err)
		return
	}
	if res.IsError() {
		// The account behind the token is gone.
		respondWithFailure(w, r, auth.ErrInvalidRefreshToken)
		return
	}

	h.respondWithTokens(w, r, claims.UserID)
}

// tokenPair is a freshly signed access and refresh token.
type tokenPair struct {
	access           string
	accessExpiresAt  time.Time
	refresh          string
	refreshExpiresAt time.Time
}

// issueTokens signs a token pair for userID. It writes a 500 response and
// returns false when signing fails.
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (tokenPair, bool) {
	var (
		pair tokenPair
		err  error
	)

	pair.access, pair.accessExpiresAt, err = h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return tokenPair{}, false
	}

	pair.refresh, pair.refreshExpiresAt, err = h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate refresh token", err)
		return tokenPair{}, false
	}

	return pair, true
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	tokens, ok := h.issueTokens(w, r, userID)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:           userID,
		Token:            tokens.access,
		ExpiresAt:        formatExpiry(tokens.accessExpiresAt),
		RefreshToken:     tokens.refresh,
		RefreshExpiresAt: formatExpiry(tokens.refreshExpiresAt),
	})
}

// decodeAndValidate parses the JSON body into req and checks its struct
// tags. It writes a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		var fieldErr *shared.FieldError
		if errors.As(err, &fieldErr) {
			shared.RespondWithError(w, r, http.StatusBadRequest, fieldErr.Message(),
				shared.WithField(fieldErr.Field))
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", err)
		return false
	}
	return true
}

// respondWithFailure writes the response for a business failure carried on
// a failed Result.
func respondWithFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	opts := []shared.ResponseOption{shared.WithField(errorField(err))}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
