package gormstore

import (
	"context"
	"errors"
	"testing"

	targetDomain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/target"
)

func TestTarget_InsertPatchRemove(t *testing.T) {
	db := openTestDB(t)
	repo := NewTargetRepository(db)
	ctx := context.Background()

	rowID, err := repo.Insert(ctx, "notes", map[string]any{"title": "first", "content": "body"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(rowID) != 32 {
		t.Fatalf("generated id = %q, want 32 chars", rowID)
	}

	var n targetDomain.Note
	if err := db.First(&n, "id = ?", rowID).Error; err != nil {
		t.Fatalf("load note: %v", err)
	}
	if n.Title != "first" || n.Content != "body" || n.CreatedAt.IsZero() {
		t.Fatalf("unexpected note: %+v", n)
	}

	if err := repo.Patch(ctx, "notes", rowID, map[string]any{"title": "second"}); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if err := db.First(&n, "id = ?", rowID).Error; err != nil {
		t.Fatalf("reload note: %v", err)
	}
	if n.Title != "second" || n.Content != "body" {
		t.Fatalf("patch not applied: %+v", n)
	}

	if err := repo.Remove(ctx, "notes", rowID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	var count int64
	db.Model(&targetDomain.Note{}).Where("id = ?", rowID).Count(&count)
	if count != 0 {
		t.Fatalf("row still present after Remove")
	}
}

func TestTarget_InsertKeepsExplicitID(t *testing.T) {
	db := openTestDB(t)
	repo := NewTargetRepository(db)

	got, err := repo.Insert(context.Background(), "customers", map[string]any{"id": "cust-1", "name": "Ada"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got != "cust-1" {
		t.Fatalf("id = %q, want cust-1", got)
	}
}

func TestTarget_MissingRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewTargetRepository(db)
	ctx := context.Background()

	if err := repo.Patch(ctx, "customers", "nope", map[string]any{"name": "x"}); !errors.Is(err, targetDomain.ErrRowNotFound) {
		t.Fatalf("Patch missing row: want ErrRowNotFound, got %v", err)
	}
	if err := repo.Remove(ctx, "subscriptions", "nope"); !errors.Is(err, targetDomain.ErrRowNotFound) {
		t.Fatalf("Remove missing row: want ErrRowNotFound, got %v", err)
	}
}

func TestTarget_RejectsTablesOffTheList(t *testing.T) {
	db := openTestDB(t)
	repo := NewTargetRepository(db)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, "user_roles", map[string]any{"user_id": "x", "role": "admin"}); !errors.Is(err, targetDomain.ErrTableNotAllowed) {
		t.Fatalf("Insert: want ErrTableNotAllowed, got %v", err)
	}
	if err := repo.Remove(ctx, "pending_changes", "x"); !errors.Is(err, targetDomain.ErrTableNotAllowed) {
		t.Fatalf("Remove: want ErrTableNotAllowed, got %v", err)
	}
}

func TestTarget_ConstraintErrorSurfaces(t *testing.T) {
	db := openTestDB(t)
	repo := NewTargetRepository(db)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, "customers", map[string]any{"id": "dup", "name": "a"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := repo.Insert(ctx, "customers", map[string]any{"id": "dup", "name": "b"}); err == nil {
		t.Fatalf("expected primary key violation")
	}
}

func TestTarget_InsertRejectsNonStringID(t *testing.T) {
	db := openTestDB(t)
	repo := NewTargetRepository(db)
	ctx := context.Background()

	for _, id := range []any{float64(5), 5, true} {
		if _, err := repo.Insert(ctx, "notes", map[string]any{"id": id, "title": "x"}); !errors.Is(err, targetDomain.ErrInvalidRowID) {
			t.Fatalf("Insert id=%v: want ErrInvalidRowID, got %v", id, err)
		}
	}
	var n int64
	if err := db.Table("notes").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows inserted: %d", n)
	}
}
