// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/oblog-go/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "store-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, q *Queries, email string) model.User {
	t.Helper()

	now := time.Now()
	user, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         model.RoleAuthor,
		Name:         "Test",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func createPost(t *testing.T, q *Queries, authorID int64, slug, status string) model.Post {
	t.Helper()

	now := time.Now()
	post, err := q.CreatePost(context.Background(), CreatePostParams{
		Title:     "Title for " + slug,
		Slug:      slug,
		Body:      "Body",
		Images:    "[]",
		Status:    status,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return post
}

func TestMigrate(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "posts", "events", "sessions"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing after migration: %v", table, err)
		}
	}
}

func TestEmailUniqueCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	q := New(db)

	createUser(t, q, "alice@example.com")

	_, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        "ALICE@Example.COM",
		PasswordHash: "x",
		Role:         model.RoleAuthor,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	if err == nil {
		t.Fatal("expected unique violation for same email in different case")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestGetUserByEmailCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	q := New(db)

	user := createUser(t, q, "alice@example.com")

	got, err := q.GetUserByEmail(context.Background(), "ALICE@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("got user %d, want %d", got.ID, user.ID)
	}
}

func TestSlugUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	q := New(db)

	user := createUser(t, q, "author@example.com")
	createPost(t, q, user.ID, "hello-world", model.PostStatusDraft)

	now := time.Now()
	_, err := q.CreatePost(context.Background(), CreatePostParams{
		Title:     "Another",
		Slug:      "hello-world",
		Body:      "Body",
		Images:    "[]",
		Status:    model.PostStatusDraft,
		AuthorID:  user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected unique violation for duplicate slug")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestIsUniqueViolationOtherErrors(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Error("IsUniqueViolation(nil) = true")
	}
	if IsUniqueViolation(sql.ErrNoRows) {
		t.Error("IsUniqueViolation(sql.ErrNoRows) = true")
	}
	if IsUniqueViolation(errors.New("some other error")) {
		t.Error("IsUniqueViolation(other) = true")
	}
}

func TestGetPostForOwnerScope(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	owner := createUser(t, q, "owner@example.com")
	other := createUser(t, q, "other@example.com")
	post := createPost(t, q, owner.ID, "mine", model.PostStatusDraft)

	if _, err := q.GetPostForOwner(ctx, GetPostForOwnerParams{ID: post.ID, AuthorID: owner.ID}); err != nil {
		t.Fatalf("GetPostForOwner as owner: %v", err)
	}

	_, err := q.GetPostForOwner(ctx, GetPostForOwnerParams{ID: post.ID, AuthorID: other.ID})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPostForOwner as stranger = %v, want sql.ErrNoRows", err)
	}
}

func TestPostSlugExists(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	user := createUser(t, q, "author@example.com")
	post := createPost(t, q, user.ID, "taken", model.PostStatusDraft)

	exists, err := q.PostSlugExists(ctx, PostSlugExistsParams{Slug: "taken"})
	if err != nil {
		t.Fatalf("PostSlugExists: %v", err)
	}
	if !exists {
		t.Error("PostSlugExists(taken) = false, want true")
	}

	exists, err = q.PostSlugExists(ctx, PostSlugExistsParams{Slug: "free"})
	if err != nil {
		t.Fatalf("PostSlugExists: %v", err)
	}
	if exists {
		t.Error("PostSlugExists(free) = true, want false")
	}

	// A post must not collide with its own slug during update.
	exists, err = q.PostSlugExists(ctx, PostSlugExistsParams{Slug: "taken", ExcludeID: post.ID})
	if err != nil {
		t.Fatalf("PostSlugExists: %v", err)
	}
	if exists {
		t.Error("PostSlugExists(taken, exclude self) = true, want false")
	}
}

func TestUpdatePostScope(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	owner := createUser(t, q, "owner@example.com")
	other := createUser(t, q, "other@example.com")
	post := createPost(t, q, owner.ID, "mine", model.PostStatusDraft)

	params := UpdatePostParams{
		Title:     "Renamed",
		Slug:      post.Slug,
		Body:      post.Body,
		Images:    post.Images,
		Status:    post.Status,
		UpdatedAt: time.Now(),
		ID:        post.ID,
		AuthorID:  other.ID,
	}
	if err := q.UpdatePost(ctx, params); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdatePost as stranger = %v, want sql.ErrNoRows", err)
	}

	params.AuthorID = owner.ID
	if err := q.UpdatePost(ctx, params); err != nil {
		t.Fatalf("UpdatePost as owner: %v", err)
	}

	got, err := q.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", got.Title)
	}
}

func TestDeletePostScope(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	owner := createUser(t, q, "owner@example.com")
	other := createUser(t, q, "other@example.com")
	post := createPost(t, q, owner.ID, "doomed", model.PostStatusDraft)

	err := q.DeletePost(ctx, DeletePostParams{ID: post.ID, AuthorID: other.ID})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("DeletePost as stranger = %v, want sql.ErrNoRows", err)
	}

	if err := q.DeletePost(ctx, DeletePostParams{ID: post.ID, AuthorID: owner.ID}); err != nil {
		t.Fatalf("DeletePost as owner: %v", err)
	}
}

func TestPublishedLookups(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	user := createUser(t, q, "author@example.com")
	draft := createPost(t, q, user.ID, "draft-post", model.PostStatusDraft)
	live := createPost(t, q, user.ID, "live-post", model.PostStatusPublished)

	if _, err := q.GetPublishedPostBySlug(ctx, "live-post"); err != nil {
		t.Errorf("GetPublishedPostBySlug(live): %v", err)
	}
	if _, err := q.GetPublishedPostBySlug(ctx, "draft-post"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPublishedPostBySlug(draft) = %v, want sql.ErrNoRows", err)
	}

	if _, err := q.GetPublishedPostByID(ctx, live.ID); err != nil {
		t.Errorf("GetPublishedPostByID(live): %v", err)
	}
	if _, err := q.GetPublishedPostByID(ctx, draft.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPublishedPostByID(draft) = %v, want sql.ErrNoRows", err)
	}

	posts, err := q.ListPublishedPosts(ctx)
	if err != nil {
		t.Fatalf("ListPublishedPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("ListPublishedPosts len = %d, want 1", len(posts))
	}
}
