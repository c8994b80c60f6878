// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/store"
)

// Categories groups the category API endpoints.
type Categories struct {
	categories *store.CategoryStore
}

// NewCategories creates the category handler group.
func NewCategories(categories *store.CategoryStore) *Categories {
	return &Categories{categories: categories}
}

// List serves all categories with their published-article counts.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.List()
	if err != nil {
		storeError(w, err, "categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": items})
}

type categoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Create adds a category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCategory(req.Name, req.Slug); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	category, err := h.categories.Create(req.Name, req.Slug)
	if err != nil {
		storeError(w, err, "category")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// Update renames a category or changes its slug.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCategory(req.Name, req.Slug); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	category, err := h.categories.Update(id, req.Name, req.Slug)
	if err != nil {
		storeError(w, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Delete removes a category. Articles keep existing with their category
// cleared by the foreign key's SET NULL.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	deleted, err := h.categories.Delete(id)
	if err != nil {
		storeError(w, err, "category")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}
