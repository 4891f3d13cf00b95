package gorm

import (
	"context"
	"errors"
	"testing"

	"github.com/todoevo/backend/usersvc"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) usersvc.UserRepository {
	t.Helper()

	db, err := libgorm.Open(sqlite.Open("file::memory:"), &libgorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&usersvc.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewUserRepository(db)
}

func TestCreateAndLookup(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user := usersvc.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "hash"}
	if err := repo.Create(ctx, &user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("no id assigned")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatal("timestamps not populated")
	}

	byEmail, err := repo.ByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("ByEmail returned id %d, want %d", byEmail.ID, user.ID)
	}

	if _, err := repo.ByEmail(ctx, "nobody@example.com"); !errors.Is(err, usersvc.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &usersvc.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create(ctx, &usersvc.User{Email: "alice@example.com", Name: "Other", PasswordHash: "h"})
	if !errors.Is(err, usersvc.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestIsExists(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user := usersvc.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "h"}
	if err := repo.Create(ctx, &user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := repo.IsExists(ctx, user.ID)
	if err != nil || !ok {
		t.Fatalf("IsExists = %v, %v", ok, err)
	}
	ok, err = repo.IsExists(ctx, user.ID+1)
	if err != nil || ok {
		t.Fatalf("IsExists = %v, %v", ok, err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user := usersvc.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "h"}
	if err := repo.Create(ctx, &user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	user.Name = "Alice Smith"
	user.PasswordHash = "new-hash"
	if err := repo.Update(ctx, &user); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stored, err := repo.Find(ctx, user.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if stored.Name != "Alice Smith" || stored.PasswordHash != "new-hash" {
		t.Fatalf("update not applied: %#v", stored)
	}

	missing := usersvc.User{ID: 9999, Name: "Ghost"}
	if err := repo.Update(ctx, &missing); !errors.Is(err, usersvc.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
