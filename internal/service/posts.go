// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/cache"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
	"github.com/olegiv/oblog-go/internal/util"
)

// maxSlugAttempts bounds the insert retry loop that absorbs slug races.
// The pre-insert uniqueness check makes a collision rare; hitting the bound
// repeatedly means something adversarial is going on, and the failure
// surfaces as a ValidationError.
const maxSlugAttempts = 3

// CacheKeyPublishedList is the cache key for the published post listing.
const CacheKeyPublishedList = "posts:published"

// PostCacheKey returns the cache key for a single public post lookup.
func PostCacheKey(ref string) string {
	return "post:" + ref
}

// PostService manages the post lifecycle. All mutating operations are
// scoped to the owning account of the supplied principal.
type PostService struct {
	queries *store.Queries
	cache   cache.Cache
}

// NewPostService creates a new PostService. The cache may be nil; it is
// used only to invalidate public lookups on mutation.
func NewPostService(db *sql.DB, c cache.Cache) *PostService {
	return &PostService{queries: store.New(db), cache: c}
}

// PostInput is the accepted write shape for a post. Owner, id, and
// timestamps are never part of it; ownership always comes from the
// principal.
type PostInput struct {
	Title     string
	Body      string
	Excerpt   string
	Slug      string
	Published *bool
	Images    model.ImagesInput
}

// validate checks field-level constraints and returns the derived slug.
func (in PostInput) validate() (slug string, fields map[string]string) {
	fields = make(map[string]string)

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		fields["title"] = "Title is required"
	case len(title) > model.MaxTitleLength:
		fields["title"] = fmt.Sprintf("Title must be at most %d characters", model.MaxTitleLength)
	}

	if strings.TrimSpace(in.Body) == "" {
		fields["content"] = "Content is required"
	}

	if len(in.Excerpt) > model.MaxExcerptLength {
		fields["excerpt"] = fmt.Sprintf("Excerpt must be at most %d characters", model.MaxExcerptLength)
	}

	slug = strings.TrimSpace(in.Slug)
	if slug != "" {
		if !util.IsValidSlug(slug) {
			fields["slug"] = "Invalid slug format (use lowercase letters, numbers, and hyphens)"
		}
	} else if title != "" {
		slug = util.Slugify(title)
		if slug == "" {
			fields["slug"] = "Slug could not be derived from title"
		}
	}

	return slug, fields
}

// Create creates a post owned by the principal's account.
func (s *PostService) Create(ctx context.Context, principal auth.Principal, input PostInput) (model.Post, error) {
	if !principal.IsAuthenticated() {
		return model.Post{}, ErrNotFound
	}

	baseSlug, fields := input.validate()
	if len(fields) > 0 {
		return model.Post{}, &ValidationError{Fields: fields}
	}

	status := model.PostStatusDraft
	var publishedAt sql.NullTime
	now := time.Now()
	if input.Published != nil && *input.Published {
		status = model.PostStatusPublished
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}

	images := input.Images.Normalize()

	var post model.Post
	err := s.withSlugRetry(ctx, baseSlug, 0, func(slug string) error {
		var err error
		post, err = s.queries.CreatePost(ctx, store.CreatePostParams{
			Title:       strings.TrimSpace(input.Title),
			Slug:        slug,
			Body:        input.Body,
			Excerpt:     input.Excerpt,
			Images:      images,
			Status:      status,
			AuthorID:    principal.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
			PublishedAt: publishedAt,
		})
		return err
	})
	if err != nil {
		return model.Post{}, err
	}

	s.invalidate(ctx, post)
	slog.Info("post created", "post_id", post.ID, "slug", post.Slug, "author_id", principal.UserID)
	return post, nil
}

// Get fetches a post within the principal's ownership scope. Posts owned
// by other accounts yield ErrNotFound.
func (s *PostService) Get(ctx context.Context, principal auth.Principal, id int64) (model.Post, error) {
	if !principal.IsAuthenticated() {
		return model.Post{}, ErrNotFound
	}
	post, err := s.queries.GetPostForOwner(ctx, store.GetPostForOwnerParams{
		ID:       id,
		AuthorID: principal.UserID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, ErrNotFound
		}
		return model.Post{}, fmt.Errorf("getting post: %w", err)
	}
	return post, nil
}

// List returns the posts owned by the principal's account, newest first.
func (s *PostService) List(ctx context.Context, principal auth.Principal) ([]model.Post, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotFound
	}
	posts, err := s.queries.ListPostsByAuthor(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Update rewrites a post's mutable fields. A blank slug is re-derived from
// the (possibly new) title; the publish timestamp is set on the first
// transition to published and preserved across unpublish/republish cycles.
func (s *PostService) Update(ctx context.Context, principal auth.Principal, id int64, input PostInput) (model.Post, error) {
	current, err := s.Get(ctx, principal, id)
	if err != nil {
		return model.Post{}, err
	}

	baseSlug, fields := input.validate()
	if len(fields) > 0 {
		return model.Post{}, &ValidationError{Fields: fields}
	}

	now := time.Now()
	status := current.Status
	publishedAt := current.PublishedAt
	if input.Published != nil {
		if *input.Published {
			status = model.PostStatusPublished
			if !publishedAt.Valid {
				publishedAt = sql.NullTime{Time: now, Valid: true}
			}
		} else {
			status = model.PostStatusDraft
		}
	}

	images := current.Images
	if input.Images.IsSet() {
		images = input.Images.Normalize()
	}

	updated := current
	err = s.withSlugRetry(ctx, baseSlug, current.ID, func(slug string) error {
		params := store.UpdatePostParams{
			Title:       strings.TrimSpace(input.Title),
			Slug:        slug,
			Body:        input.Body,
			Excerpt:     input.Excerpt,
			Images:      images,
			Status:      status,
			UpdatedAt:   now,
			PublishedAt: publishedAt,
			ID:          current.ID,
			AuthorID:    principal.UserID,
		}
		if err := s.queries.UpdatePost(ctx, params); err != nil {
			return err
		}
		updated.Title = params.Title
		updated.Slug = params.Slug
		updated.Body = params.Body
		updated.Excerpt = params.Excerpt
		updated.Images = params.Images
		updated.Status = params.Status
		updated.UpdatedAt = params.UpdatedAt
		updated.PublishedAt = params.PublishedAt
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, ErrNotFound
		}
		return model.Post{}, err
	}

	s.invalidate(ctx, current)
	s.invalidate(ctx, updated)
	slog.Info("post updated", "post_id", updated.ID, "slug", updated.Slug, "author_id", principal.UserID)
	return updated, nil
}

// Delete removes a post within the principal's ownership scope.
func (s *PostService) Delete(ctx context.Context, principal auth.Principal, id int64) error {
	if !principal.IsAuthenticated() {
		return ErrNotFound
	}
	post, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.queries.DeletePost(ctx, store.DeletePostParams{
		ID:       id,
		AuthorID: principal.UserID,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting post: %w", err)
	}
	s.invalidate(ctx, post)
	slog.Info("post deleted", "post_id", id, "author_id", principal.UserID)
	return nil
}

// Publish transitions a post to published. The publish timestamp is set
// only on the first publish.
func (s *PostService) Publish(ctx context.Context, principal auth.Principal, id int64) (model.Post, error) {
	return s.setPublished(ctx, principal, id, true)
}

// Unpublish transitions a post back to draft. The original publish
// timestamp is preserved.
func (s *PostService) Unpublish(ctx context.Context, principal auth.Principal, id int64) (model.Post, error) {
	return s.setPublished(ctx, principal, id, false)
}

func (s *PostService) setPublished(ctx context.Context, principal auth.Principal, id int64, published bool) (model.Post, error) {
	post, err := s.Get(ctx, principal, id)
	if err != nil {
		return model.Post{}, err
	}

	now := time.Now()
	if published {
		post.Status = model.PostStatusPublished
		if !post.PublishedAt.Valid {
			post.PublishedAt = sql.NullTime{Time: now, Valid: true}
		}
	} else {
		post.Status = model.PostStatusDraft
	}
	post.UpdatedAt = now

	if err := s.queries.UpdatePost(ctx, store.UpdatePostParams{
		Title:       post.Title,
		Slug:        post.Slug,
		Body:        post.Body,
		Excerpt:     post.Excerpt,
		Images:      post.Images,
		Status:      post.Status,
		UpdatedAt:   post.UpdatedAt,
		PublishedAt: post.PublishedAt,
		ID:          post.ID,
		AuthorID:    principal.UserID,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, ErrNotFound
		}
		return model.Post{}, fmt.Errorf("updating post status: %w", err)
	}

	s.invalidate(ctx, post)
	slog.Info("post status changed", "post_id", post.ID, "status", post.Status, "author_id", principal.UserID)
	return post, nil
}

// ResolvePublished resolves a public path segment to a published post.
// Slugs are the canonical reference; a numeric id is accepted as a
// fallback so legacy id-based links keep working.
func (s *PostService) ResolvePublished(ctx context.Context, ref string) (model.Post, error) {
	post, err := s.queries.GetPublishedPostBySlug(ctx, ref)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, fmt.Errorf("resolving post: %w", err)
	}

	id, parseErr := strconv.ParseInt(ref, 10, 64)
	if parseErr != nil {
		return model.Post{}, ErrNotFound
	}
	post, err = s.queries.GetPublishedPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, ErrNotFound
		}
		return model.Post{}, fmt.Errorf("resolving post by id: %w", err)
	}
	return post, nil
}

// ListPublished returns all published posts, newest publication first.
func (s *PostService) ListPublished(ctx context.Context) ([]model.Post, error) {
	posts, err := s.queries.ListPublishedPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}
	return posts, nil
}

// withSlugRetry runs write with a uniquified slug, re-deriving and retrying
// when the database reports a UNIQUE violation. The pre-check and the write
// are not atomic, so a concurrent writer can still take the candidate; the
// constraint is the authoritative backstop.
func (s *PostService) withSlugRetry(ctx context.Context, baseSlug string, excludeID int64, write func(slug string) error) error {
	exists := func(ctx context.Context, slug string) (bool, error) {
		return s.queries.PostSlugExists(ctx, store.PostSlugExistsParams{
			Slug:      slug,
			ExcludeID: excludeID,
		})
	}

	var lastErr error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := util.UniqueSlug(ctx, baseSlug, exists)
		if err != nil {
			return err
		}
		err = write(slug)
		if err == nil {
			return nil
		}
		if !store.IsUniqueViolation(err) {
			return err
		}
		lastErr = err
		slog.Warn("slug collision on write, retrying", "slug", slug, "attempt", attempt+1)
	}

	slog.Error("slug retries exhausted", "slug", baseSlug, "error", lastErr)
	return &ValidationError{Fields: map[string]string{
		"slug": "Could not allocate a unique slug, please choose one explicitly",
	}}
}

// invalidate drops cached public views of a post after a mutation.
func (s *PostService) invalidate(ctx context.Context, post model.Post) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, CacheKeyPublishedList)
	_ = s.cache.Delete(ctx, PostCacheKey(post.Slug))
	_ = s.cache.Delete(ctx, PostCacheKey(strconv.FormatInt(post.ID, 10)))
}
