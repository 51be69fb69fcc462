// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/cache"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
)

// FrontendHandler serves the public read-only API.
type FrontendHandler struct {
	posts    *service.PostService
	cache    cache.Cache
	markdown *render.Markdown
	cacheTTL time.Duration
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, c cache.Cache, cacheTTL time.Duration) *FrontendHandler {
	return &FrontendHandler{
		posts:    service.NewPostService(db, c),
		cache:    c,
		markdown: render.NewMarkdown(),
		cacheTTL: cacheTTL,
	}
}

// postSummary is a published post in listing responses.
type postSummary struct {
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Excerpt     string       `json:"excerpt,omitempty"`
	Hero        *model.Image `json:"hero,omitempty"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
}

// postView is a single published post with its rendered body and the
// position-indexed images ready for display.
type postView struct {
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	HTML        string          `json:"html"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Hero        *model.Image    `json:"hero,omitempty"`
	Images      model.ImageList `json:"images"`
	ImageCount  int             `json:"image_count"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// serveCached writes a previously cached JSON payload if present.
func (h *FrontendHandler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.cache == nil {
		return false
	}
	payload, err := h.cache.Get(r.Context(), key)
	if err != nil {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
	return true
}

// storeCached serializes the response, caches it, and writes it out.
func (h *FrontendHandler) storeCached(w http.ResponseWriter, r *http.Request, key string, data any) {
	payload, err := json.Marshal(Response{Data: data})
	if err != nil {
		WriteInternalError(w, "encoding response", "error", err)
		return
	}
	if h.cache != nil {
		_ = h.cache.Set(r.Context(), key, payload, h.cacheTTL)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

// List handles GET /api/posts - all published posts, newest first.
func (h *FrontendHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.serveCached(w, r, service.CacheKeyPublishedList) {
		return
	}

	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		WriteInternalError(w, "failed to list published posts", "error", err)
		return
	}

	summaries := make([]postSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, summarize(p))
	}

	h.storeCached(w, r, service.CacheKeyPublishedList, summaries)
}

// Show handles GET /api/posts/{ref}. The ref is a slug; a numeric id is
// accepted as a fallback so legacy links keep resolving.
func (h *FrontendHandler) Show(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		WriteNotFound(w)
		return
	}

	key := service.PostCacheKey(ref)
	if h.serveCached(w, r, key) {
		return
	}

	post, err := h.posts.ResolvePublished(r.Context(), ref)
	if err != nil {
		writeServiceError(w, err, "failed to resolve post")
		return
	}

	html, err := h.markdown.Render(post.Body)
	if err != nil {
		WriteInternalError(w, "failed to render post body", "error", err, "post_id", post.ID)
		return
	}

	images := post.ImageList()
	view := postView{
		Title:      post.Title,
		Slug:       post.Slug,
		HTML:       html,
		Excerpt:    post.Excerpt,
		Images:     images.Indexed(),
		ImageCount: images.Count(),
	}
	if hero, ok := images.Hero(); ok {
		view.Hero = &hero
	}
	if post.PublishedAt.Valid {
		view.PublishedAt = &post.PublishedAt.Time
	}

	h.storeCached(w, r, key, view)
}

func summarize(p model.Post) postSummary {
	s := postSummary{
		Title:   p.Title,
		Slug:    p.Slug,
		Excerpt: p.Excerpt,
	}
	if hero, ok := p.ImageList().Hero(); ok {
		s.Hero = &hero
	}
	if p.PublishedAt.Valid {
		s.PublishedAt = &p.PublishedAt.Time
	}
	return s
}
