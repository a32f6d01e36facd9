package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// mockAuthService implements AuthService with function fields.
type mockAuthService struct {
	signUpFn             func(ctx context.Context, email, password string) error
	signInFn             func(ctx context.Context, email, password string) (string, *model.User, error)
	signInWithGoogleFn   func(ctx context.Context, idToken string) (string, *model.User, error)
	signOutFn            func(ctx context.Context, token string) error
	resendVerificationFn func(ctx context.Context, email, password string) error
	verifyEmailFn        func(ctx context.Context, token string) error
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string) error {
	return m.signUpFn(ctx, email, password)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (string, *model.User, error) {
	return m.signInFn(ctx, email, password)
}

func (m *mockAuthService) SignInWithGoogle(ctx context.Context, idToken string) (string, *model.User, error) {
	return m.signInWithGoogleFn(ctx, idToken)
}

func (m *mockAuthService) SignOut(ctx context.Context, token string) error {
	return m.signOutFn(ctx, token)
}

func (m *mockAuthService) ResendVerification(ctx context.Context, email, password string) error {
	return m.resendVerificationFn(ctx, email, password)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	return m.verifyEmailFn(ctx, token)
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignUpEndpoint(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		signUpFn: func(_ context.Context, email, password string) error {
			if email != "alice@campus.edu" || password != "hunter22" {
				t.Errorf("sign up called with (%q, %q)", email, password)
			}
			return nil
		},
	})

	rec := postJSON(t, h.SignUp, "/auth/signup", `{"email":"alice@campus.edu","password":"hunter22"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"needs_verification":true`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestSignUpErrorMessages(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{auth.ErrEmailInUse, http.StatusConflict, "User already exists. Please sign in."},
		{auth.ErrWeakPassword, http.StatusBadRequest, "Password is too weak. Please use a stronger password."},
		{auth.ErrInvalidEmail, http.StatusBadRequest, "Invalid email address."},
	}
	for _, tc := range cases {
		h := NewAuthHandler(&mockAuthService{
			signUpFn: func(context.Context, string, string) error { return tc.err },
		})

		rec := postJSON(t, h.SignUp, "/auth/signup", `{"email":"a@b.c","password":"pw"}`)
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var resp model.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if resp.Error != tc.message {
			t.Errorf("%v: message = %q, want %q", tc.err, resp.Error, tc.message)
		}
	}
}

func TestSignInEndpoint(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		signInFn: func(context.Context, string, string) (string, *model.User, error) {
			return "jwt-token", &model.User{ID: "u1", Email: "alice@campus.edu"}, nil
		},
	})

	rec := postJSON(t, h.SignIn, "/auth/signin", `{"email":"alice@campus.edu","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string     `json:"token"`
			User  model.User `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Token != "jwt-token" || resp.Data.User.ID != "u1" {
		t.Errorf("response = %+v", resp)
	}
}

func TestSignInErrorMessages(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{auth.ErrUserNotFound, http.StatusNotFound, "User not found. Please check your email."},
		{auth.ErrWrongPassword, http.StatusUnauthorized, "Email or password is incorrect."},
		{auth.ErrEmailNotVerified, http.StatusForbidden, "Email not verified. Please check your email and verify your account."},
	}
	for _, tc := range cases {
		h := NewAuthHandler(&mockAuthService{
			signInFn: func(context.Context, string, string) (string, *model.User, error) {
				return "", nil, tc.err
			},
		})

		rec := postJSON(t, h.SignIn, "/auth/signin", `{"email":"a@b.c","password":"pw"}`)
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var resp model.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if resp.Error != tc.message {
			t.Errorf("%v: message = %q, want %q", tc.err, resp.Error, tc.message)
		}
	}
}

func TestSignInRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	rec := postJSON(t, h.SignIn, "/auth/signin", `{"email": `)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSignOutEndpoint(t *testing.T) {
	var revoked string
	h := NewAuthHandler(&mockAuthService{
		signOutFn: func(_ context.Context, token string) error {
			revoked = token
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer jwt-token")
	rec := httptest.NewRecorder()
	h.SignOut(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if revoked != "jwt-token" {
		t.Errorf("revoked token = %q", revoked)
	}
}

func TestSignOutWithoutToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	rec := httptest.NewRecorder()
	h.SignOut(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestVerifyEmailEndpoint(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		verifyEmailFn: func(_ context.Context, token string) error {
			if token != "tok-123" {
				t.Errorf("verify called with %q", token)
			}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/verify?token=tok-123", nil)
	rec := httptest.NewRecorder()
	h.VerifyEmail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Missing token is rejected before reaching the service.
	rec = httptest.NewRecorder()
	h.VerifyEmail(rec, httptest.NewRequest(http.MethodGet, "/auth/verify", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
