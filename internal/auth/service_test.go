package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type fakeMailer struct {
	mu     sync.Mutex
	verify map[string]string
	reset  map[string]string
	err    error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{verify: map[string]string{}, reset: map[string]string{}}
}

func (m *fakeMailer) SendVerification(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify[to] = token
	return m.err
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = token
	return m.err
}

func newTestService(t *testing.T) (*Service, *fakeMailer) {
	t.Helper()
	mailer := newFakeMailer()
	return &Service{DB: db.NewTestDB(t), Secret: "test-secret", Mailer: mailer}, mailer
}

func TestSignupVerifySignin(t *testing.T) {
	s, mailer := newTestService(t)
	ctx := context.Background()

	user, err := s.Signup(ctx, "abebe", "password123", "abebe@example.com")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.IsVerified || user.Role != model.RoleUser {
		t.Errorf("unexpected new user state: verified=%v role=%q", user.IsVerified, user.Role)
	}

	if _, err := s.Signin(ctx, "abebe", "password123"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden before verification, got %v", err)
	}

	token := mailer.verify["abebe@example.com"]
	if token == "" {
		t.Fatal("expected verification email")
	}

	already, err := s.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if already {
		t.Error("first verification should not report already verified")
	}

	already, err = s.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("second VerifyEmail: %v", err)
	}
	if !already {
		t.Error("second verification should report already verified")
	}

	res, err := s.Signin(ctx, "abebe", "password123")
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if res.Username != "abebe" || res.Role != model.RoleUser {
		t.Errorf("unexpected signin result: %+v", res)
	}

	claims, err := ValidateToken(s.Secret, res.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected userId %d, got %d", user.ID, claims.UserID)
	}
}

func TestSignupConflict(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Signup(ctx, "abebe", "password123", "abebe@example.com"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	tests := []struct {
		name, username, email string
	}{
		{"same username", "abebe", "other@example.com"},
		{"same email", "other", "abebe@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The password is deliberately too short: conflict wins.
			_, err := s.Signup(ctx, tt.username, "short", tt.email)
			if !errors.Is(err, ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestSignupInvalid(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name, username, password, email string
	}{
		{"missing username", "", "password123", "a@example.com"},
		{"missing password", "a", "", "a@example.com"},
		{"missing email", "a", "password123", ""},
		{"bad email", "a", "password123", "not-an-email"},
		{"short password", "a", "short", "a@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Signup(ctx, tt.username, tt.password, tt.email)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSignupMailFailureIsSwallowed(t *testing.T) {
	s, mailer := newTestService(t)
	mailer.err = errors.New("smtp down")

	if _, err := s.Signup(context.Background(), "abebe", "password123", "abebe@example.com"); err != nil {
		t.Fatalf("Signup should succeed when mail fails: %v", err)
	}
}

func TestSignin(t *testing.T) {
	s, mailer := newTestService(t)
	ctx := context.Background()

	if _, err := s.Signup(ctx, "abebe", "password123", "abebe@example.com"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	// A wrong password is unauthorized whether or not the user is verified.
	if _, err := s.Signin(ctx, "abebe", "wrongpassword"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for unverified user, got %v", err)
	}

	if _, err := s.VerifyEmail(ctx, mailer.verify["abebe@example.com"]); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	if _, err := s.Signin(ctx, "abebe", "wrongpassword"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := s.Signin(ctx, "nobody", "password123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Usernames are trimmed on signin the same way as on signup.
	res, err := s.Signin(ctx, "  abebe\t", "password123")
	if err != nil {
		t.Fatalf("Signin with padded username: %v", err)
	}
	if res.Username != "abebe" {
		t.Errorf("expected username abebe, got %q", res.Username)
	}
}

func TestVerifyEmailInvalid(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	session, _ := GenerateToken(s.Secret, 1, model.RoleUser)
	missingUser, _ := GenerateVerificationToken(s.Secret, 999)
	otherSecret, _ := GenerateVerificationToken("other-secret", 1)

	tests := []struct {
		name, token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"session token", session},
		{"missing user", missingUser},
		{"wrong secret", otherSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.VerifyEmail(ctx, tt.token); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestPasswordReset(t *testing.T) {
	s, mailer := newTestService(t)
	ctx := context.Background()

	if _, err := s.Signup(ctx, "abebe", "password123", "abebe@example.com"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := s.VerifyEmail(ctx, mailer.verify["abebe@example.com"]); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	if err := s.ForgotPassword(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.ForgotPassword(ctx, "abebe@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := mailer.reset["abebe@example.com"]
	if len(token) != 2*resetTokenBytes {
		t.Fatalf("expected %d hex chars, got %q", 2*resetTokenBytes, token)
	}

	if err := s.ResetPassword(ctx, token, "short"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for short password, got %v", err)
	}
	if err := s.ResetPassword(ctx, "wrong-token", "newpassword1"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for wrong token, got %v", err)
	}

	if err := s.ResetPassword(ctx, token, "newpassword1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	// The token is single use.
	if err := s.ResetPassword(ctx, token, "anotherpass1"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for reused token, got %v", err)
	}

	if _, err := s.Signin(ctx, "abebe", "password123"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("old password should be rejected, got %v", err)
	}
	if _, err := s.Signin(ctx, "abebe", "newpassword1"); err != nil {
		t.Errorf("Signin with new password: %v", err)
	}
}

func TestResetPasswordExpired(t *testing.T) {
	s, mailer := newTestService(t)
	ctx := context.Background()

	user, err := s.Signup(ctx, "abebe", "password123", "abebe@example.com")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if err := s.ForgotPassword(ctx, "abebe@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := mailer.reset["abebe@example.com"]

	s.Now = func() time.Time { return time.Now().Add(ResetTokenExpiry + time.Minute) }

	if err := s.ResetPassword(ctx, token, "newpassword1"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for expired token, got %v", err)
	}

	// The stored password is unchanged.
	stored, err := store.GetUser(ctx, s.DB, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if stored.PasswordHash != user.PasswordHash {
		t.Error("password hash changed after expired reset")
	}
}
