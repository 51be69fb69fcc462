// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Field length limits enforced on the write path.
const (
	MaxTitleLength   = 255
	MaxExcerptLength = 500
)

// Post represents a blog post. Ownership (AuthorID) is set from the
// authenticated principal at creation time and never changes afterwards.
type Post struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Body        string       `json:"body"`
	Excerpt     string       `json:"excerpt,omitempty"`
	Images      string       `json:"-"` // Encoded image list, see DecodeImages
	Status      string       `json:"status"`
	AuthorID    int64        `json:"author_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	PublishedAt sql.NullTime `json:"published_at,omitempty"`
}

// IsPublished returns true if the post is published.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsDraft returns true if the post is a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// ImageList decodes the persisted image field. Malformed stored data
// degrades to an empty list rather than blocking access to the post.
func (p *Post) ImageList() ImageList {
	return DecodeImages(p.Images)
}
