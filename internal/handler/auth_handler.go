package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/middleware"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// AuthService is the identity surface the auth handler depends on.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (string, *model.User, error)
	SignInWithGoogle(ctx context.Context, idToken string) (string, *model.User, error)
	SignOut(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email, password string) error
	VerifyEmail(ctx context.Context, token string) error
}

// AuthHandler holds the HTTP handlers for the auth endpoints.
type AuthHandler struct {
	svc AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleSignInRequest struct {
	IDToken string `json:"id_token"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// authErrorMessage maps identity errors to their user-facing messages.
func authErrorMessage(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict, "User already exists. Please sign in."
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "Password is too weak. Please use a stronger password."
	case errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest, "Invalid email address."
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "User not found. Please check your email."
	case errors.Is(err, auth.ErrWrongPassword):
		return http.StatusUnauthorized, "Email or password is incorrect."
	case errors.Is(err, auth.ErrEmailNotVerified):
		return http.StatusForbidden, "Email not verified. Please check your email and verify your account."
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized, "Invalid or expired token."
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// SignUp handles POST /auth/signup
// Creates an unverified account; the caller must verify before signing in.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SignUp(r.Context(), req.Email, req.Password); err != nil {
		status, msg := authErrorMessage(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusCreated, map[string]bool{"needs_verification": true})
}

// SignIn handles POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, user, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := authErrorMessage(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// GoogleSignIn handles POST /auth/google
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, user, err := h.svc.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		status, msg := authErrorMessage(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// SignOut handles POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	if err := h.svc.SignOut(r.Context(), token); err != nil {
		status, msg := authErrorMessage(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusOK, nil)
}

// ResendVerification handles POST /auth/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.ResendVerification(r.Context(), req.Email, req.Password); err != nil {
		status, msg := authErrorMessage(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusOK, nil)
}

// VerifyEmail handles GET /auth/verify?token=...
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		status, msg := authErrorMessage(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"verified": true})
}

// Me handles GET /auth/me
// Runs behind the Authenticator, which has already resolved the session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeData(w, http.StatusOK, user)
}
