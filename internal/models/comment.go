// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a single comment on an article. A nil ParentID marks
// a top-level comment; otherwise the comment is a reply to another comment
// on the same article.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	ArticleID uuid.UUID  `json:"article_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Content   string     `json:"content"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CommentNode is a comment with its author projection and nested replies,
// as returned by the thread endpoint. Replies is never nil — leaf nodes
// carry an empty slice so the JSON shape stays stable.
type CommentNode struct {
	Comment
	Author  AuthorSummary  `json:"author"`
	Replies []*CommentNode `json:"replies"`
}
