package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ResetTokenExpiry is how long a password reset link stays valid.
const ResetTokenExpiry = time.Hour

const resetTokenBytes = 20

// Mailer delivers account emails. Implementations build the links from
// the bare tokens.
type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Service implements the account lifecycle: signup, email verification,
// signin and password reset.
type Service struct {
	DB     *sqlx.DB
	Secret string
	Mailer Mailer

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SigninResult is returned by a successful Signin.
type SigninResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Signup registers an unverified user and mails a verification link.
func (s *Service) Signup(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		return nil, fmt.Errorf("%w: username, password and email are required", ErrInvalid)
	}

	existing, err := store.FindUserByUsernameOrEmail(ctx, s.DB, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	if !model.ValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalid)
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := store.CreateUser(ctx, s.DB, username, email, hash, model.RoleUser)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	token, err := GenerateVerificationToken(s.Secret, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Mailer.SendVerification(ctx, user.Email, token); err != nil {
		slog.Error("sending verification email", "user_id", user.ID, "error", err)
	}

	slog.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// VerifyEmail redeems a verification token. It reports whether the user
// was already verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (alreadyVerified bool, err error) {
	if token == "" {
		return false, fmt.Errorf("%w: token is required", ErrInvalid)
	}

	claims, err := ValidateVerificationToken(s.Secret, token)
	if err != nil {
		slog.Warn("verification token rejected", "error", err)
		return false, fmt.Errorf("%w: invalid or expired token", ErrInvalid)
	}

	user, err := store.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("%w: invalid or expired token", ErrInvalid)
	}
	if user.IsVerified {
		return true, nil
	}

	if err := store.MarkUserVerified(ctx, s.DB, user.ID); err != nil {
		return false, err
	}
	slog.Info("email verified", "user_id", user.ID)
	return false, nil
}

// Signin checks credentials and issues a session token.
func (s *Service) Signin(ctx context.Context, username, password string) (*SigninResult, error) {
	username = strings.TrimSpace(username)
	user, err := store.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		slog.Warn("signin failed", "username", username, "reason", "unknown user")
		return nil, ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("signin failed", "username", username, "reason", "invalid password")
		return nil, ErrUnauthorized
	}

	if !user.IsVerified {
		return nil, ErrForbidden
	}

	token, err := GenerateToken(s.Secret, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	slog.Info("user signed in", "user_id", user.ID, "username", user.Username)
	return &SigninResult{Token: token, Username: user.Username, Role: user.Role}, nil
}

// ForgotPassword stores a fresh reset token for the user with the given
// email and mails the reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalid)
	}

	user, err := store.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	if err := store.SetResetToken(ctx, s.DB, user.ID, token, s.now().Add(ResetTokenExpiry)); err != nil {
		return err
	}

	if err := s.Mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		slog.Error("sending password reset email", "user_id", user.ID, "error", err)
	}

	slog.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword replaces the password of the user holding a valid reset
// token and clears the token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return fmt.Errorf("%w: invalid or expired token", ErrInvalid)
	}

	user, err := store.GetUserByResetToken(ctx, s.DB, token)
	if err != nil {
		return err
	}
	if user == nil || user.ResetPasswordExpires == nil || !user.ResetPasswordExpires.After(s.now()) {
		return fmt.Errorf("%w: invalid or expired token", ErrInvalid)
	}

	if newPassword == "" {
		return fmt.Errorf("%w: password is required", ErrInvalid)
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := store.UpdateUserPassword(ctx, s.DB, user.ID, hash); err != nil {
		return err
	}

	slog.Info("password reset", "user_id", user.ID)
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
