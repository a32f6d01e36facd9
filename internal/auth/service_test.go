package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// In-memory repositories backing the auth flows under test.

type memUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*model.User{}, byEmail: map[string]*model.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) Update(_ context.Context, u *model.User) error {
	stored, ok := m.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	*stored = *u
	return nil
}

func (m *memUserRepo) List(_ context.Context, excludeID string) ([]model.User, error) {
	var out []model.User
	for id, u := range m.byID {
		if id != excludeID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUserRepo) MarkVerified(_ context.Context, id string) error {
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

type memSessionRepo struct {
	sessions map[string]*model.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*model.Session{}}
}

func (m *memSessionRepo) Create(_ context.Context, s *model.Session) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type memTokenRepo struct {
	tokens map[string]*model.VerificationToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]*model.VerificationToken{}}
}

func (m *memTokenRepo) Create(_ context.Context, t *model.VerificationToken) error {
	cp := *t
	m.tokens[t.Token] = &cp
	return nil
}

func (m *memTokenRepo) Get(_ context.Context, token string) (*model.VerificationToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokenRepo) Delete(_ context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

type authFixture struct {
	svc      *Service
	users    *memUserRepo
	sessions *memSessionRepo
	tokens   *memTokenRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	tokens := newMemTokenRepo()
	svc := NewService(users, sessions, tokens, Config{
		JWTSecret:      "test-secret",
		SessionTTL:     time.Hour,
		VerifyTokenTTL: time.Hour,
		BaseURL:        "http://localhost:8080",
	})
	return &authFixture{svc: svc, users: users, sessions: sessions, tokens: tokens}
}

// signUpAndVerify walks an account through signup and email verification.
func (f *authFixture) signUpAndVerify(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()
	if err := f.svc.SignUp(ctx, email, password); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	for token := range f.tokens.tokens {
		if err := f.svc.VerifyEmail(ctx, token); err != nil {
			t.Fatalf("VerifyEmail: %v", err)
		}
		return
	}
	t.Fatal("no verification token issued")
}

func TestSignUp(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.SignUp(ctx, "Alice@Campus.EDU ", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	user, err := f.users.GetByEmail(ctx, "alice@campus.edu")
	if err != nil {
		t.Fatalf("user not created under normalized email: %v", err)
	}
	if user.EmailVerified {
		t.Error("new account must start unverified")
	}
	if user.DisplayName != "alice" {
		t.Errorf("display name = %q, want %q", user.DisplayName, "alice")
	}
	if user.Provider != "password" {
		t.Errorf("provider = %q", user.Provider)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")); err != nil {
		t.Error("stored hash does not match password")
	}
	if len(f.tokens.tokens) != 1 {
		t.Errorf("verification tokens = %d, want 1", len(f.tokens.tokens))
	}
}

func TestSignUpRejectsBadInput(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.SignUp(ctx, "not-an-email", "hunter22"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("invalid email: err = %v, want ErrInvalidEmail", err)
	}
	if err := f.svc.SignUp(ctx, "alice@campus.edu", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password: err = %v, want ErrWeakPassword", err)
	}

	if err := f.svc.SignUp(ctx, "alice@campus.edu", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := f.svc.SignUp(ctx, "alice@campus.edu", "hunter22"); !errors.Is(err, ErrEmailInUse) {
		t.Errorf("duplicate email: err = %v, want ErrEmailInUse", err)
	}
}

func TestSignInRequiresVerifiedEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.SignUp(ctx, "alice@campus.edu", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, _, err := f.svc.SignIn(ctx, "alice@campus.edu", "hunter22"); !errors.Is(err, ErrEmailNotVerified) {
		t.Errorf("unverified sign-in: err = %v, want ErrEmailNotVerified", err)
	}
}

func TestSignInFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUpAndVerify(t, "alice@campus.edu", "hunter22")

	token, user, err := f.svc.SignIn(ctx, "alice@campus.edu", "hunter22")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if token == "" {
		t.Fatal("no session token issued")
	}
	if user.Email != "alice@campus.edu" {
		t.Errorf("user = %+v", user)
	}

	// The token round-trips through session resolution.
	current, err := f.svc.CurrentUser(ctx, token)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if current.ID != user.ID {
		t.Errorf("current user = %q, want %q", current.ID, user.ID)
	}
}

func TestSignInWrongCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUpAndVerify(t, "alice@campus.edu", "hunter22")

	if _, _, err := f.svc.SignIn(ctx, "alice@campus.edu", "wrong-pass"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong password: err = %v, want ErrWrongPassword", err)
	}
	if _, _, err := f.svc.SignIn(ctx, "nobody@campus.edu", "hunter22"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown email: err = %v, want ErrUserNotFound", err)
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUpAndVerify(t, "alice@campus.edu", "hunter22")

	token, _, err := f.svc.SignIn(ctx, "alice@campus.edu", "hunter22")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := f.svc.SignOut(ctx, token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	// Token still parses but its session is gone.
	if _, err := f.svc.CurrentUser(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("after sign-out: err = %v, want ErrInvalidSession", err)
	}
}

func TestCurrentUserExpiredSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUpAndVerify(t, "alice@campus.edu", "hunter22")

	token, _, err := f.svc.SignIn(ctx, "alice@campus.edu", "hunter22")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	// Move the clock past the session expiry.
	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := f.svc.CurrentUser(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired session: err = %v, want ErrInvalidSession", err)
	}
	if len(f.sessions.sessions) != 0 {
		t.Error("expired session row not cleaned up")
	}
}

func TestCurrentUserRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.svc.CurrentUser(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("garbage token: err = %v, want ErrInvalidSession", err)
	}
}

func TestVerifyEmailTokenIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.SignUp(ctx, "alice@campus.edu", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	var token string
	for tok := range f.tokens.tokens {
		token = tok
	}

	if err := f.svc.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if err := f.svc.VerifyEmail(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused token: err = %v, want ErrInvalidToken", err)
	}

	user, _ := f.users.GetByEmail(ctx, "alice@campus.edu")
	if !user.EmailVerified {
		t.Error("account not marked verified")
	}
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.SignUp(ctx, "alice@campus.edu", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	var token string
	for tok := range f.tokens.tokens {
		token = tok
	}

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := f.svc.VerifyEmail(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
	if _, ok := f.tokens.tokens[token]; ok {
		t.Error("expired token not deleted")
	}
}

func TestResendVerification(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.SignUp(ctx, "alice@campus.edu", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := f.svc.ResendVerification(ctx, "alice@campus.edu", "hunter22"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if len(f.tokens.tokens) != 2 {
		t.Errorf("tokens = %d, want 2", len(f.tokens.tokens))
	}

	// Wrong password cannot mint tokens.
	if err := f.svc.ResendVerification(ctx, "alice@campus.edu", "nope-nope"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("err = %v, want ErrWrongPassword", err)
	}
}

func TestResendVerificationVerifiedAccountNoop(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUpAndVerify(t, "alice@campus.edu", "hunter22")

	if err := f.svc.ResendVerification(ctx, "alice@campus.edu", "hunter22"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if len(f.tokens.tokens) != 0 {
		t.Errorf("tokens = %d, want 0 for verified account", len(f.tokens.tokens))
	}
}
