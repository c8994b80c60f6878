// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/store"
)

// Comments groups the comment API endpoints.
type Comments struct {
	comments *store.CommentStore
	articles *store.ArticleStore
	cache    *cache.ResponseCache
}

// NewComments creates the comment handler group. cache may be nil when
// Valkey is not configured.
func NewComments(comments *store.CommentStore, articles *store.ArticleStore, respCache *cache.ResponseCache) *Comments {
	return &Comments{comments: comments, articles: articles, cache: respCache}
}

// GetThread serves an article's comments as a nested tree, newest
// top-level comments first, replies oldest first.
func (h *Comments) GetThread(w http.ResponseWriter, r *http.Request) {
	articleSlug := chi.URLParam(r, "slug")

	if h.cache != nil {
		if payload, ok := h.cache.GetThread(r.Context(), articleSlug); ok {
			writeRawJSON(w, http.StatusOK, payload)
			return
		}
	}

	article, err := h.articles.FindBySlug(articleSlug)
	if err != nil {
		storeError(w, err, "article")
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	thread, err := h.comments.GetThread(article.ID)
	if err != nil {
		storeError(w, err, "comments")
		return
	}

	payload, err := json.Marshal(map[string]any{"comments": thread})
	if err != nil {
		slog.Error("marshal comments failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.cache != nil {
		h.cache.SetThread(r.Context(), articleSlug, payload)
	}
	writeRawJSON(w, http.StatusOK, payload)
}

type createCommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// Create posts a comment (or a reply) on a published article. Any
// authenticated user may comment; markup is stripped from the content.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	articleSlug := chi.URLParam(r, "slug")

	article, err := h.articles.FindBySlug(articleSlug)
	if err != nil {
		storeError(w, err, "article")
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	var req createCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	content := strings.TrimSpace(markdown.Sanitize(req.Content))
	if msg := validateComment(content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ident := middleware.IdentityFromCtx(r.Context())

	comment, err := h.comments.Create(article.ID, ident.UserID, content, req.ParentID)
	if err != nil {
		storeError(w, err, "comment")
		return
	}

	h.invalidateThread(r, articleSlug)
	writeJSON(w, http.StatusCreated, comment)
}

// Delete removes a comment (and, by cascade, its replies). Only the
// comment's author or an admin may delete it.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	comment, err := h.comments.FindByID(id)
	if err != nil {
		storeError(w, err, "comment")
		return
	}
	if comment == nil {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}

	ident := middleware.IdentityFromCtx(r.Context())
	if comment.AuthorID != ident.UserID && !ident.IsAdmin() {
		writeError(w, http.StatusForbidden, "You can only delete your own comments")
		return
	}

	deleted, err := h.comments.Delete(id)
	if err != nil {
		storeError(w, err, "comment")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}

	// The thread cache is keyed by slug; look the article up to drop it.
	if article, err := h.articles.FindByID(comment.ArticleID); err == nil && article != nil {
		h.invalidateThread(r, article.Slug)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

func (h *Comments) invalidateThread(r *http.Request, articleSlug string) {
	if h.cache != nil {
		h.cache.InvalidateArticle(r.Context(), articleSlug)
	}
}
