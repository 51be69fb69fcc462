// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/oblog-go/internal/model"
)

const postColumns = "id, title, slug, body, excerpt, images, status, author_id, created_at, updated_at, published_at"

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.Images,
		&p.Status, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	return p, err
}

func collectPosts(rows *sql.Rows) ([]model.Post, error) {
	defer func() { _ = rows.Close() }()
	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePostParams holds the fields for creating a post.
type CreatePostParams struct {
	Title       string
	Slug        string
	Body        string
	Excerpt     string
	Images      string
	Status      string
	AuthorID    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt sql.NullTime
}

// CreatePost inserts a new post and returns it. A slug collision surfaces
// as a UNIQUE constraint error; see IsUniqueViolation.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO posts (title, slug, body, excerpt, images, status, author_id, created_at, updated_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Body, arg.Excerpt, arg.Images, arg.Status,
		arg.AuthorID, arg.CreatedAt, arg.UpdatedAt, arg.PublishedAt)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return model.Post{
		ID:          id,
		Title:       arg.Title,
		Slug:        arg.Slug,
		Body:        arg.Body,
		Excerpt:     arg.Excerpt,
		Images:      arg.Images,
		Status:      arg.Status,
		AuthorID:    arg.AuthorID,
		CreatedAt:   arg.CreatedAt,
		UpdatedAt:   arg.UpdatedAt,
		PublishedAt: arg.PublishedAt,
	}, nil
}

// GetPostByID fetches a post by primary key regardless of owner or status.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	return scanPost(row)
}

// GetPostForOwnerParams identifies a post within an owner's scope.
type GetPostForOwnerParams struct {
	ID       int64
	AuthorID int64
}

// GetPostForOwner fetches a post only if it belongs to the given author.
// A post owned by someone else yields sql.ErrNoRows, indistinguishable
// from a post that does not exist.
func (q *Queries) GetPostForOwner(ctx context.Context, arg GetPostForOwnerParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ? AND author_id = ?",
		arg.ID, arg.AuthorID)
	return scanPost(row)
}

// ListPostsByAuthor returns all posts owned by the given author, newest first.
func (q *Queries) ListPostsByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE author_id = ? ORDER BY created_at DESC, id DESC",
		authorID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// ListPublishedPosts returns all published posts, newest publication first.
func (q *Queries) ListPublishedPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE status = ? ORDER BY published_at DESC, id DESC",
		model.PostStatusPublished)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// GetPublishedPostBySlug fetches a published post by its slug.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE slug = ? AND status = ?",
		slug, model.PostStatusPublished)
	return scanPost(row)
}

// GetPublishedPostByID fetches a published post by its numeric id. Used as
// the legacy-link fallback when a slug lookup misses.
func (q *Queries) GetPublishedPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ? AND status = ?",
		id, model.PostStatusPublished)
	return scanPost(row)
}

// PostSlugExistsParams holds the arguments for a slug existence check.
type PostSlugExistsParams struct {
	Slug string
	// ExcludeID skips one post when checking, so an update does not
	// collide with the post's own slug. Zero excludes nothing.
	ExcludeID int64
}

// PostSlugExists reports whether any other post already uses the slug.
func (q *Queries) PostSlugExists(ctx context.Context, arg PostSlugExistsParams) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM posts WHERE slug = ? AND id != ?",
		arg.Slug, arg.ExcludeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdatePostParams holds the fields for a full post update. AuthorID is the
// scope of the update, not an updatable field; ownership never changes.
type UpdatePostParams struct {
	Title       string
	Slug        string
	Body        string
	Excerpt     string
	Images      string
	Status      string
	UpdatedAt   time.Time
	PublishedAt sql.NullTime
	ID          int64
	AuthorID    int64
}

// UpdatePost rewrites a post's mutable fields within the owner's scope.
// Returns sql.ErrNoRows if the post does not exist or belongs to another
// author.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, slug = ?, body = ?, excerpt = ?, images = ?,
		 status = ?, updated_at = ?, published_at = ?
		 WHERE id = ? AND author_id = ?`,
		arg.Title, arg.Slug, arg.Body, arg.Excerpt, arg.Images,
		arg.Status, arg.UpdatedAt, arg.PublishedAt, arg.ID, arg.AuthorID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePostParams identifies a post within an owner's scope for deletion.
type DeletePostParams struct {
	ID       int64
	AuthorID int64
}

// DeletePost removes a post within the owner's scope. Returns
// sql.ErrNoRows if nothing was deleted.
func (q *Queries) DeletePost(ctx context.Context, arg DeletePostParams) error {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM posts WHERE id = ? AND author_id = ?", arg.ID, arg.AuthorID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
