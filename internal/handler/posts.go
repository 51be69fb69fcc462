// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/cache"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
)

// PostsHandler handles the session-authenticated post management API.
type PostsHandler struct {
	posts  *service.PostService
	events *service.EventService
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(db *sql.DB, c cache.Cache) *PostsHandler {
	return &PostsHandler{
		posts:  service.NewPostService(db, c),
		events: service.NewEventService(db),
	}
}

// postRequest is the accepted write shape. Owner, id, and timestamps are
// never part of it. The images value may be an array of descriptors or a
// pre-encoded JSON string; both normalize to the same stored form.
type postRequest struct {
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Excerpt   string          `json:"excerpt"`
	Slug      string          `json:"slug"`
	Published *bool           `json:"published"`
	Images    json.RawMessage `json:"images"`
}

func (req postRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:     req.Title,
		Body:      req.Content,
		Excerpt:   req.Excerpt,
		Slug:      req.Slug,
		Published: req.Published,
		Images:    model.ImagesFromJSON(req.Images),
	}
}

// postResponse represents a post in API responses.
type postResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Content     string          `json:"content"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Status      string          `json:"status"`
	AuthorID    int64           `json:"author_id"`
	Images      model.ImageList `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

func postToResponse(p model.Post) postResponse {
	resp := postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Body,
		Excerpt:   p.Excerpt,
		Status:    p.Status,
		AuthorID:  p.AuthorID,
		Images:    p.ImageList(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	return resp
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// List handles GET /admin/api/posts - lists the caller's own posts.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, err, "failed to list posts")
		return
	}

	responses := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, postToResponse(p))
	}
	WriteSuccess(w, responses)
}

// Get handles GET /admin/api/posts/{id}.
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		WriteNotFound(w)
		return
	}

	post, err := h.posts.Get(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		writeServiceError(w, err, "failed to get post")
		return
	}
	WriteSuccess(w, postToResponse(post))
}

// Create handles POST /admin/api/posts.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.posts.Create(r.Context(), middleware.GetPrincipal(r), req.toInput())
	if err != nil {
		writeServiceError(w, err, "failed to create post")
		return
	}

	h.events.LogPostEvent(r.Context(), model.EventLevelInfo, "Post created",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"post_id": post.ID, "slug": post.Slug})
	WriteCreated(w, postToResponse(post))
}

// Update handles PUT /admin/api/posts/{id}.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		WriteNotFound(w)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.posts.Update(r.Context(), middleware.GetPrincipal(r), id, req.toInput())
	if err != nil {
		writeServiceError(w, err, "failed to update post")
		return
	}

	h.events.LogPostEvent(r.Context(), model.EventLevelInfo, "Post updated",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"post_id": post.ID, "slug": post.Slug})
	WriteSuccess(w, postToResponse(post))
}

// Delete handles DELETE /admin/api/posts/{id}.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		WriteNotFound(w)
		return
	}

	if err := h.posts.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		writeServiceError(w, err, "failed to delete post")
		return
	}

	h.events.LogPostEvent(r.Context(), model.EventLevelInfo, "Post deleted",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"post_id": id})
	WriteSuccess(w, map[string]string{"status": "deleted"})
}

// Publish handles POST /admin/api/posts/{id}/publish.
func (h *PostsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// Unpublish handles POST /admin/api/posts/{id}/unpublish.
func (h *PostsHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *PostsHandler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, ok := urlID(r)
	if !ok {
		WriteNotFound(w)
		return
	}

	var post model.Post
	var err error
	if published {
		post, err = h.posts.Publish(r.Context(), middleware.GetPrincipal(r), id)
	} else {
		post, err = h.posts.Unpublish(r.Context(), middleware.GetPrincipal(r), id)
	}
	if err != nil {
		writeServiceError(w, err, "failed to change post status")
		return
	}

	h.events.LogPostEvent(r.Context(), model.EventLevelInfo, "Post status changed",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"post_id": post.ID, "status": post.Status})
	WriteSuccess(w, postToResponse(post))
}
