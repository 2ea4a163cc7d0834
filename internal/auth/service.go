package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

// Password and username validation bounds.
const (
	minUsernameLen = 3
	maxUsernameLen = 100
	minPasswordLen = 6
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Metrics is the subset of metrics collection the auth flows report to.
type Metrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordSignup()
	RecordResetTokenIssued()
	RecordResetTokenConsumed()
}

// ServiceConfig configures the auth orchestrator.
type ServiceConfig struct {
	ResetTokenTTL time.Duration
}

// Service orchestrates login, registration and the password flows.
// It holds no mutable state; all state lives in the repositories.
type Service struct {
	userRepo  repository.UserRepository
	resetRepo repository.ResetTokenRepository
	hasher    Hasher
	tokens    *TokenManager
	metrics   Metrics
	config    ServiceConfig
	now       func() time.Time
}

// NewService creates the auth Service. metrics may be nil.
func NewService(
	userRepo repository.UserRepository,
	resetRepo repository.ResetTokenRepository,
	hasher Hasher,
	tokens *TokenManager,
	metrics Metrics,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		hasher:    hasher,
		tokens:    tokens,
		metrics:   metrics,
		config:    config,
		now:       time.Now,
	}
}

// Session is the successful outcome of login and signup: a signed token
// and the authenticated user.
type Session struct {
	Token string
	User  *model.User
}

// NormalizeEmail trims whitespace and lowercases an email address.
// Every email lookup and every stored email goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates email/password credentials and issues a session
// token. "no such account" and "wrong password" produce the identical
// generic error so responses do not reveal which half failed.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	var verrs model.ValidationErrors
	if strings.TrimSpace(email) == "" {
		verrs = verrs.Add("email", "email is required")
	}
	if password == "" {
		verrs = verrs.Add("password", "password is required")
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		s.recordLoginFailure()
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordLoginFailure()
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return &Session{Token: token, User: user}, nil
}

// SignUpInput is the registration request.
type SignUpInput struct {
	Username       string
	Email          string
	Password       string
	RepeatPassword string
}

// SignUp registers a new account and issues a session token.
// Validation errors are collected, not fail-fast, so the caller receives
// the complete set at once. Email uniqueness is checked before username
// uniqueness; the first conflict wins. The database unique indexes remain
// the authoritative guard against concurrent duplicates.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	username := strings.TrimSpace(input.Username)
	email := NormalizeEmail(input.Email)

	var verrs model.ValidationErrors
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		verrs = verrs.Add("username", fmt.Sprintf("username must be between %d and %d characters", minUsernameLen, maxUsernameLen))
	}
	if !emailPattern.MatchString(email) {
		verrs = verrs.Add("email", "email address is not valid")
	}
	if len(input.Password) < minPasswordLen {
		verrs = verrs.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if input.Password != input.RepeatPassword {
		verrs = verrs.Add("repeat_password", "passwords do not match")
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	// Advisory pre-checks for fast failure; the unique indexes decide races.
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	existing, err = s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError()
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the advisory checks;
		// the unique index reports it here.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError()
		}
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSignup()
	}
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &Session{Token: token, User: user}, nil
}

// ForgotPassword starts a reset flow. Whether or not the email belongs to
// an account, the caller sees the same outcome; a token is issued only for
// existing accounts. Issuing a new token invalidates prior outstanding
// tokens for the user. The plaintext token is returned for delivery
// (mail dispatch is a separate concern) and is never persisted or logged.
func (s *Service) ForgotPassword(ctx context.Context, email string, captchaPassed bool) (string, error) {
	var verrs model.ValidationErrors
	if !captchaPassed {
		verrs = verrs.Add("captcha", "captcha verification is required")
	}
	if strings.TrimSpace(email) == "" {
		verrs = verrs.Add("email", "email is required")
	}
	if len(verrs) > 0 {
		return "", verrs
	}

	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		// Indistinguishable from the success path to the caller.
		return "", nil
	}

	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return "", fmt.Errorf("failed to invalidate prior reset tokens: %w", err)
	}

	token, tokenHash, err := GenerateResetToken()
	if err != nil {
		return "", err
	}

	record := &model.PasswordResetToken{
		TokenHash: tokenHash,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.config.ResetTokenTTL),
		CreatedAt: s.now(),
	}
	if err := s.resetRepo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordResetTokenIssued()
	}
	slog.Info("password reset token issued", slog.String("user_id", user.ID))

	return token, nil
}

// ChangePassword changes the password of an authenticated user after
// verifying the current one. The new password must differ from the old.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	var verrs model.ValidationErrors
	if oldPassword == "" {
		verrs = verrs.Add("old_password", "current password is required")
	}
	if newPassword == "" {
		verrs = verrs.Add("new_password", "new password is required")
	} else if len(newPassword) < minPasswordLen {
		verrs = verrs.Add("new_password", fmt.Sprintf("new password must be at least %d characters", minPasswordLen))
	}
	if len(verrs) > 0 {
		return verrs
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return model.NewPasswordMismatchError()
	}

	if newPassword == oldPassword {
		return model.ValidationErrors{}.Add("new_password", "new password must be different from the current password")
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword completes a reset flow: resolves the opaque token, sets the
// new password and consumes the token so it cannot be used again.
// "not found", "expired" and "already consumed" all produce the same
// generic error.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	var verrs model.ValidationErrors
	if token == "" {
		verrs = verrs.Add("reset_token", "reset token is required")
	}
	if newPassword == "" {
		verrs = verrs.Add("new_password", "new password is required")
	} else if len(newPassword) < minPasswordLen {
		verrs = verrs.Add("new_password", fmt.Sprintf("new password must be at least %d characters", minPasswordLen))
	}
	if len(verrs) > 0 {
		return verrs
	}

	record, err := s.resetRepo.FindByHash(ctx, HashResetToken(token))
	if err != nil {
		return fmt.Errorf("failed to resolve reset token: %w", err)
	}
	if record == nil || record.Expired(s.now()) {
		return model.NewResetTokenInvalidError()
	}

	user, err := s.userRepo.FindByID(ctx, record.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetRepo.DeleteByHash(ctx, record.TokenHash); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordResetTokenConsumed()
	}
	slog.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// CurrentUser returns the account behind a validated session token.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func (s *Service) recordLoginFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}
