package database

import (
	"testing"
	"time"

	"famtrack-backend/internal/models"
)

func TestSessionRepo_CreateAndValidate(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepo(db)
	user := createUser(t, db, models.RoleGuardian, "Alex")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, session, err := repo.Create(user.ID, time.Hour, now)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}
	if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expires_at = %v, want %v", session.ExpiresAt, now.Add(time.Hour))
	}

	got, err := repo.Validate(token, time.Hour, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("user_id = %d, want %d", got.UserID, user.ID)
	}
	// Validation slides the expiry forward
	if want := now.Add(30*time.Minute + time.Hour); !got.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, want)
	}
}

func TestSessionRepo_ExpiredIsNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepo(db)
	user := createUser(t, db, models.RoleGuardian, "Alex")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, _, err := repo.Create(user.ID, time.Hour, now)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.GetByToken(token, now.Add(time.Hour+time.Second)); err != ErrSessionNotFound {
		t.Errorf("expired lookup err = %v, want ErrSessionNotFound", err)
	}
	if _, err := repo.Validate(token, time.Hour, now.Add(time.Hour+time.Second)); err != ErrSessionNotFound {
		t.Errorf("expired validate err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepo_FindByTokenIgnoresExpiry(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepo(db)
	user := createUser(t, db, models.RoleGuardian, "Alex")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, _, err := repo.Create(user.ID, time.Hour, now)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.FindByToken(token)
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("user_id = %d, want %d", got.UserID, user.ID)
	}

	// Still resolves after expiry, unlike GetByToken
	if _, err := repo.GetByToken(token, now.Add(2*time.Hour)); err != ErrSessionNotFound {
		t.Fatalf("GetByToken past expiry err = %v, want ErrSessionNotFound", err)
	}
	if _, err := repo.FindByToken(token); err != nil {
		t.Errorf("FindByToken past expiry err = %v, want nil", err)
	}

	if _, err := repo.FindByToken("no-such-token"); err != ErrSessionNotFound {
		t.Errorf("unknown token err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepo_DeleteByToken(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepo(db)
	user := createUser(t, db, models.RoleGuardian, "Alex")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, _, err := repo.Create(user.ID, time.Hour, now)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.DeleteByToken(token); err != nil {
		t.Fatalf("DeleteByToken failed: %v", err)
	}
	if err := repo.DeleteByToken(token); err != ErrSessionNotFound {
		t.Errorf("second delete err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepo_DeleteExpired(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepo(db)
	user := createUser(t, db, models.RoleGuardian, "Alex")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, _, err := repo.Create(user.ID, time.Hour, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	live, _, err := repo.Create(user.ID, time.Hour, now)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := repo.DeleteExpired(now)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := repo.GetByToken(live, now); err != nil {
		t.Errorf("live session swept: %v", err)
	}
}
