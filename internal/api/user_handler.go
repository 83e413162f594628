package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/api/shared"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/result"
)

// AccountManager reads users and applies account changes.
type AccountManager interface {
	UserReader
	ChangeEmail(ctx context.Context, id uuid.UUID, email string) (result.Result[*domain.User, error], error)
	ChangePassword(
		ctx context.Context,
		id uuid.UUID,
		currentPassword, newPassword string,
	) (result.Result[*domain.User, error], error)
}

// UserHandler serves a user's own account. Every route is scoped to the
// authenticated user.
type UserHandler struct {
	users AccountManager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users AccountManager) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser handles GET /api/users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ownAccountID(w, r)
	if !ok {
		return
	}

	res, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to retrieve user", err)
		return
	}
	respondWithUser(w, r, res)
}

// ChangeEmail handles PUT /api/users/{id}/email.
func (h *UserHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := ownAccountID(w, r)
	if !ok {
		return
	}

	var req ChangeEmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.users.ChangeEmail(r.Context(), id, req.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to change email", err)
		return
	}
	respondWithUser(w, r, res)
}

// ChangePassword handles PUT /api/users/{id}/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := ownAccountID(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.users.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to change password", err)
		return
	}
	respondWithUser(w, r, res)
}

// ownAccountID parses the {id} route parameter and checks it names the
// authenticated user. Another user's id answers 404, the same as an id that
// does not exist.
func ownAccountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID", shared.WithField("id"))
		return uuid.Nil, false
	}

	callerID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}

	if callerID != id {
		shared.RespondWithError(w, r, http.StatusNotFound, "User not found",
			shared.WithElevatedLogLevel())
		return uuid.Nil, false
	}
	return id, true
}

func respondWithUser(w http.ResponseWriter, r *http.Request, res result.Result[*domain.User, error]) {
	if res.IsError() {
		respondWithFailure(w, r, res.Err())
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(res.Value()))
}
