package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymhub/internal/adapters/storage/storagetest"
	domain "gymhub/internal/domain/account"
)

func newAccount(id, email, name, role string) domain.Account {
	return domain.Account{
		ID:          id,
		Email:       email,
		DisplayName: name,
		Role:        role,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// TestSQLiteStore_SaveAndGet verifies round-tripping by id and by email.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	acct := newAccount("a1", "Ana@Example.com", "Ana", domain.RoleMember)
	if err := store.Save(ctx, acct); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DisplayName != "Ana" || got.Email != "ana@example.com" {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(acct.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, acct.CreatedAt)
	}

	byEmail, err := store.GetByEmail(ctx, " ANA@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != "a1" {
		t.Errorf("GetByEmail id = %q, want a1", byEmail.ID)
	}
}

// TestSQLiteStore_NotFound verifies lookups of unknown accounts wrap ErrNotFound.
func TestSQLiteStore_NotFound(t *testing.T) {
	store := NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail err = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_DuplicateEmail verifies a second account cannot claim an email.
func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	store := NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	if err := store.Save(ctx, newAccount("a1", "same@example.com", "One", domain.RoleMember)); err != nil {
		t.Fatalf("Save a1: %v", err)
	}
	err := store.Save(ctx, newAccount("a2", "same@example.com", "Two", domain.RoleMember))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Save a2 err = %v, want ErrDuplicateEmail", err)
	}

	updated := newAccount("a1", "same@example.com", "Renamed", domain.RoleTrainer)
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("update a1: %v", err)
	}
	got, _ := store.GetByID(ctx, "a1")
	if got.DisplayName != "Renamed" || got.Role != domain.RoleTrainer {
		t.Errorf("after update got %+v", got)
	}
}

// TestSQLiteStore_ListAndCount verifies role filtering and ordering.
func TestSQLiteStore_ListAndCount(t *testing.T) {
	store := NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	for _, a := range []domain.Account{
		newAccount("m2", "zoe@example.com", "Zoe", domain.RoleMember),
		newAccount("t1", "tom@example.com", "Tom", domain.RoleTrainer),
		newAccount("m1", "amy@example.com", "Amy", domain.RoleMember),
	} {
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("Save %s: %v", a.ID, err)
		}
	}

	members, err := store.List(ctx, ListFilter{Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(members) != 2 || members[0].DisplayName != "Amy" || members[1].DisplayName != "Zoe" {
		t.Errorf("members = %+v", members)
	}

	page, err := store.List(ctx, ListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 1 || page[0].DisplayName != "Tom" {
		t.Errorf("page = %+v", page)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}
}
