// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/ai"
	"inkwell/internal/store"
)

// AI groups the article-generation endpoints. All of them are
// admin-only.
type AI struct {
	generator  *ai.Generator
	registry   *ai.Registry
	categories *store.CategoryStore
	model      string
}

// NewAI creates the AI handler group.
func NewAI(generator *ai.Generator, registry *ai.Registry, categories *store.CategoryStore, model string) *AI {
	return &AI{generator: generator, registry: registry, categories: categories, model: model}
}

// GenerateArticle produces a full article draft from a topic. Unknown
// style and length values fall back to the defaults rather than failing.
func (h *AI) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	var opts ai.GenerateOptions
	if !decodeJSON(w, r, &opts) {
		return
	}

	if strings.TrimSpace(opts.Topic) == "" {
		writeError(w, http.StatusBadRequest, "A topic is required")
		return
	}
	opts.Style = normalizeChoice(opts.Style, "technical", "formal", "casual", "technical")
	opts.Length = normalizeChoice(opts.Length, "medium", "short", "medium", "long")
	opts.Keywords = cleanKeywords(opts.Keywords)

	categories, err := h.categories.List()
	if err != nil {
		storeError(w, err, "categories")
		return
	}

	article, err := h.generator.GenerateArticle(r.Context(), opts, categories)
	if err != nil {
		slog.Error("article generation failed", "topic", opts.Topic, "error", err)
		writeError(w, http.StatusInternalServerError, "Article generation failed, please try again later")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    article,
	})
}

// Status reports whether generation is available and which provider
// backs it.
func (h *AI) Status(w http.ResponseWriter, r *http.Request) {
	_, err := h.registry.Active()
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":  err == nil,
		"provider": h.registry.ActiveName(),
		"model":    h.model,
	})
}

// normalizeChoice returns value when it is one of the allowed options,
// otherwise the fallback.
func normalizeChoice(value, fallback string, allowed ...string) string {
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return fallback
}

// cleanKeywords drops empty and whitespace-only keywords.
func cleanKeywords(keywords []string) []string {
	out := keywords[:0]
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
