package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/campus-events/internal/middleware"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/go-chi/chi/v5"
)

// UserService is the profile surface the user handler depends on.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error)
	ListPeople(ctx context.Context, callerID, search string) ([]model.User, error)
}

// UserHandler holds the HTTP handlers for profiles and people browsing.
type UserHandler struct {
	svc UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetMe handles GET /api/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	profile, err := h.svc.GetProfile(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeData(w, http.StatusOK, profile)
}

// UpdateMe handles PUT /api/users/me
// Only the authenticated user's own profile is ever writable.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req model.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeData(w, http.StatusOK, profile)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeData(w, http.StatusOK, profile)
}

// ListPeople handles GET /api/users?search=...
// Everyone except the caller; search narrows by name, bio, or interests.
func (h *UserHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	people, err := h.svc.ListPeople(r.Context(), user.ID, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list people")
		return
	}

	if people == nil {
		people = []model.User{}
	}
	writeData(w, http.StatusOK, people)
}
