// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Articles groups the article API endpoints. The public detail endpoint
// checks the Valkey response cache before hitting Postgres.
type Articles struct {
	articles *store.ArticleStore
	cache    *cache.ResponseCache
}

// NewArticles creates the article handler group. cache may be nil when
// Valkey is not configured.
func NewArticles(articles *store.ArticleStore, respCache *cache.ResponseCache) *Articles {
	return &Articles{articles: articles, cache: respCache}
}

// List serves the public article listing: published articles only, with
// optional category, featured, and pagination filters.
func (h *Articles) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListAll serves the admin listing across every status. An explicit
// status query parameter narrows it back down to one state.
func (h *Articles) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Articles) list(w http.ResponseWriter, r *http.Request, allStatuses bool) {
	q := r.URL.Query()

	opts := store.ListOptions{
		CategorySlug: q.Get("category"),
		Featured:     q.Get("featured") == "true",
		AllStatuses:  allStatuses,
	}
	if v := q.Get("status"); v != "" {
		status := models.ArticleStatus(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		opts.Status = status
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}

	items, err := h.articles.List(opts)
	if err != nil {
		storeError(w, err, "articles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articles": items,
		"count":    len(items),
	})
}

// GetBySlug serves the public article detail, rendering the Markdown body
// to HTML. Every read counts as a view, cached or not.
func (h *Articles) GetBySlug(w http.ResponseWriter, r *http.Request) {
	articleSlug := chi.URLParam(r, "slug")

	if h.cache != nil {
		if payload, ok := h.cache.GetArticle(r.Context(), articleSlug); ok {
			if err := h.articles.IncrementViewCountBySlug(articleSlug); err != nil {
				slog.Warn("increment view count failed", "slug", articleSlug, "error", err)
			}
			writeRawJSON(w, http.StatusOK, payload)
			return
		}
	}

	details, err := h.articles.FindBySlug(articleSlug)
	if err != nil {
		storeError(w, err, "article")
		return
	}
	if details == nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	if err := h.articles.IncrementViewCount(details.ID); err != nil {
		slog.Warn("increment view count failed", "slug", articleSlug, "error", err)
	}

	if details.ContentHTML, err = markdown.ToHTML(details.Content); err != nil {
		slog.Error("markdown render failed", "slug", articleSlug, "error", err)
	}

	payload, err := json.Marshal(details)
	if err != nil {
		slog.Error("marshal article failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.cache != nil {
		h.cache.SetArticle(r.Context(), articleSlug, payload)
	}
	writeRawJSON(w, http.StatusOK, payload)
}

// GetByID serves the admin article detail, used by the editor. The body
// is returned as raw Markdown.
func (h *Articles) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	details, err := h.articles.FindDetailsByID(id)
	if err != nil {
		storeError(w, err, "article")
		return
	}
	if details == nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

type createArticleRequest struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  *string    `json:"cover_image"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Featured    bool       `json:"featured"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	Tags        []string   `json:"tags"`
}

// Create inserts a new article authored by the authenticated admin.
func (h *Articles) Create(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if msg := validateArticle(req.Title, req.Slug, req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	status := models.ArticleStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	ident := middleware.IdentityFromCtx(r.Context())

	article, err := h.articles.Create(ident.UserID, store.NewArticle{
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		CategoryID:  req.CategoryID,
		Featured:    req.Featured,
		Status:      status,
		PublishedAt: req.PublishedAt,
		Tags:        req.Tags,
	})
	if err != nil {
		storeError(w, err, "article")
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

type updateArticleRequest struct {
	Title       *string    `json:"title"`
	Slug        *string    `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     *string    `json:"content"`
	CoverImage  *string    `json:"cover_image"`
	CategoryID  *uuid.UUID `json:"category_id"` // zero UUID clears the category
	Featured    *bool      `json:"featured"`
	Status      *string    `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	Tags        []string   `json:"tags"`
}

// Update applies a partial update; absent fields are left untouched.
func (h *Articles) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	var req updateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := store.ArticleUpdate{
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		CategoryID:  req.CategoryID,
		Featured:    req.Featured,
		PublishedAt: req.PublishedAt,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		status := models.ArticleStatus(*req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		upd.Status = &status
	}

	// Remember the current slug so a slug change invalidates both cache keys.
	prev, err := h.articles.FindByID(id)
	if err != nil {
		storeError(w, err, "article")
		return
	}
	if prev == nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	article, err := h.articles.Update(id, upd)
	if err != nil {
		storeError(w, err, "article")
		return
	}

	h.invalidate(r, prev.Slug)
	if article.Slug != prev.Slug {
		h.invalidate(r, article.Slug)
	}

	writeJSON(w, http.StatusOK, article)
}

// Delete removes an article and everything hanging off it.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	prev, err := h.articles.FindByID(id)
	if err != nil {
		storeError(w, err, "article")
		return
	}
	if prev == nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	deleted, err := h.articles.Delete(id)
	if err != nil {
		storeError(w, err, "article")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	h.invalidate(r, prev.Slug)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Article deleted successfully"})
}

func (h *Articles) invalidate(r *http.Request, articleSlug string) {
	if h.cache != nil {
		h.cache.InvalidateArticle(r.Context(), articleSlug)
	}
}
