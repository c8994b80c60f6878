// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publication state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusScheduled ArticleStatus = "scheduled"
)

// Valid reports whether s is one of the known publication states.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPublished, ArticleStatusScheduled:
		return true
	}
	return false
}

// Article represents a blog article. PublishedAt is null for drafts,
// the intended publish time for scheduled articles, and the actual
// publish instant for published ones.
type Article struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Excerpt     *string       `json:"excerpt,omitempty"`
	Content     string        `json:"content"`
	CoverImage  *string       `json:"cover_image,omitempty"`
	CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
	AuthorID    uuid.UUID     `json:"author_id"`
	Featured    bool          `json:"featured"`
	ViewCount   int           `json:"view_count"`
	Status      ArticleStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// ArticleDetails is an Article enriched with its author, optional category,
// tag list, and rendered HTML body. Returned by detail endpoints.
type ArticleDetails struct {
	Article
	ContentHTML string          `json:"content_html,omitempty"`
	Category    *CategoryBrief  `json:"category,omitempty"`
	Author      AuthorSummary   `json:"author"`
	Tags        []string        `json:"tags"`
}

// CategoryBrief is the category projection embedded in article responses.
type CategoryBrief struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthorSummary is the public projection of a user embedded in article
// and comment responses. Never carries credentials.
type AuthorSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   *string   `json:"avatar,omitempty"`
}
