package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "testuser", "test@example.com", "hash123", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", user.Username)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", user.Role)
	}
	if user.IsVerified {
		t.Error("expected new user to be unverified")
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "test@example.com" {
		t.Errorf("expected email 'test@example.com', got %q", got.Email)
	}

	missing, err := GetUser(ctx, database, user.ID+100)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "alice", "alice@example.com", "hash", model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := CreateUser(ctx, database, "alice", "other@example.com", "hash", model.RoleUser)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for reused username, got %v", err)
	}

	_, err = CreateUser(ctx, database, "bob", "alice@example.com", "hash", model.RoleUser)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for reused email, got %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func TestFindUserByUsernameOrEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice", "alice@example.com", "hash", model.RoleUser)

	byName, _ := FindUserByUsernameOrEmail(ctx, database, "alice", "nobody@example.com")
	if byName == nil {
		t.Error("expected match on username")
	}
	byEmail, _ := FindUserByUsernameOrEmail(ctx, database, "nobody", "alice@example.com")
	if byEmail == nil {
		t.Error("expected match on email")
	}
	none, err := FindUserByUsernameOrEmail(ctx, database, "nobody", "nobody@example.com")
	if err != nil {
		t.Fatalf("FindUserByUsernameOrEmail: %v", err)
	}
	if none != nil {
		t.Error("expected no match")
	}
}

func TestMarkUserVerified(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "v", "v@example.com", "hash", model.RoleUser)
	if err := MarkUserVerified(ctx, database, user.ID); err != nil {
		t.Fatalf("MarkUserVerified: %v", err)
	}

	got, _ := GetUserByUsername(ctx, database, "v")
	if !got.IsVerified {
		t.Error("expected user to be verified")
	}
}

func TestResetTokenLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "r", "r@example.com", "oldhash", model.RoleUser)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := SetResetToken(ctx, database, user.ID, "abc123", expires); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}

	got, err := GetUserByResetToken(ctx, database, "abc123")
	if err != nil {
		t.Fatalf("GetUserByResetToken: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user %d, got %+v", user.ID, got)
	}
	if got.ResetPasswordExpires == nil || !got.ResetPasswordExpires.Equal(expires) {
		t.Errorf("expected expiry %v, got %v", expires, got.ResetPasswordExpires)
	}

	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ = GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
	if got.ResetPasswordToken != nil || got.ResetPasswordExpires != nil {
		t.Error("expected reset token and expiry to be cleared")
	}

	stale, _ := GetUserByResetToken(ctx, database, "abc123")
	if stale != nil {
		t.Error("expected cleared token to no longer match")
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "deleteme", "d@example.com", "hash", model.RoleUser)
	item := newTestItem(user.ID, "Umbrella", "Accessories", time.Now())
	if _, err := CreateItem(ctx, database, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	deleted, err := DeleteUser(ctx, database, user.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteUser = %v, %v", deleted, err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 0 {
		t.Errorf("expected 0 users after delete, got %d", len(users))
	}

	// Reports outlive their owner.
	items, _ := ListItemsByUser(ctx, database, user.ID)
	if len(items) != 1 {
		t.Errorf("expected owner's item to survive, got %d items", len(items))
	}

	deleted, err = DeleteUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted {
		t.Error("expected second delete to report not found")
	}
}
