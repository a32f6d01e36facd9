// Package auth implements the identity provider: email+password accounts
// with mandatory email verification, Google federated sign-in, and revocable
// JWT sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

// Identity errors, each mapped to a distinct user-facing message by the
// HTTP layer.
var (
	ErrEmailInUse       = errors.New("user already exists")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrWeakPassword     = errors.New("password is too weak")
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("email or password is incorrect")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidSession   = errors.New("invalid session")
)

const minPasswordLength = 6

// Config holds the auth service settings.
type Config struct {
	JWTSecret      string
	SessionTTL     time.Duration
	VerifyTokenTTL time.Duration
	BaseURL        string
	GoogleClientID string
}

// Service provides sign-up, sign-in, federated sign-in, sign-out and email
// verification. It is the only issuer of sessions.
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   repository.VerificationTokenRepository
	config   Config
	now      func() time.Time
}

// NewService constructs an auth Service.
func NewService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens repository.VerificationTokenRepository,
	config Config,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		config:   config,
		now:      time.Now,
	}
}

// SignUp creates an unverified email+password account and issues a
// verification token. The account cannot sign in until verified.
func (s *Service) SignUp(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	displayName, _, _ := strings.Cut(email, "@")
	user := &model.User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: displayName,
		Provider:    "password",
	}
	user.PasswordHash = string(hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailInUse
		}
		return fmt.Errorf("create user: %w", err)
	}

	return s.issueVerification(ctx, user)
}

// SignIn authenticates an email+password account. Unverified accounts are
// rejected with ErrEmailNotVerified.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if !user.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SignInWithGoogle verifies a Google ID token and signs the holder in,
// creating the profile on first sign-in. Google accounts are considered
// verified.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (string, *model.User, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{s.config.GoogleClientID}); err != nil {
		return "", nil, ErrInvalidToken
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return "", nil, fmt.Errorf("decode id token: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.Sub)
	if errors.Is(err, repository.ErrNotFound) {
		user = &model.User{
			ID:            claims.Sub,
			Email:         normalizeEmail(claims.Email),
			DisplayName:   claims.Name,
			PhotoURL:      claims.Picture,
			Provider:      "google",
			EmailVerified: true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return "", nil, fmt.Errorf("create user: %w", err)
		}
		user, err = s.users.GetByID(ctx, claims.Sub)
		if err != nil {
			return "", nil, err
		}
	} else if err != nil {
		return "", nil, fmt.Errorf("look up user: %w", err)
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SignOut revokes the session carried by the token. Revoking an unknown
// session is a no-op.
func (s *Service) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// ResendVerification re-authenticates the account and issues a fresh
// verification token. Already-verified accounts get no new token.
func (s *Service) ResendVerification(ctx context.Context, email, password string) error {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.issueVerification(ctx, user)
}

// VerifyEmail redeems a verification token, marking the account verified.
// Tokens are single-use.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	vt, err := s.tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("look up verification token: %w", err)
	}
	if s.now().After(vt.ExpiresAt) {
		_ = s.tokens.Delete(ctx, token)
		return ErrInvalidToken
	}

	if err := s.users.MarkVerified(ctx, vt.UserID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return s.tokens.Delete(ctx, token)
}

// CurrentUser resolves a bearer token to its user, checking both the token
// signature and the backing session row. This is the "current session
// observation" surface consumed by the middleware.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, ErrInvalidSession
	}

	session, err := s.sessions.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("look up session: %w", err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("look up email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return user, nil
}

// issueSession creates a session row and signs a JWT whose jti is the
// session id, so deleting the row revokes the token.
func (s *Service) issueSession(ctx context.Context, user *model.User) (string, error) {
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.config.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Service) parseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// issueVerification stores a fresh token and logs the verification link.
// There is no mail integration; delivery is an operational concern handled
// outside this service.
func (s *Service) issueVerification(ctx context.Context, user *model.User) error {
	vt := &model.VerificationToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.config.VerifyTokenTTL),
	}
	if err := s.tokens.Create(ctx, vt); err != nil {
		return fmt.Errorf("create verification token: %w", err)
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("link", s.config.BaseURL+"/auth/verify?token="+vt.Token).
		Msg("verification link issued")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail does a basic structural check (no external deps).
func validEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	return local != "" && strings.Contains(domain, ".")
}
