package api

import (
	"net/http"

	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/validation"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	fields := validation.FieldErrors{}
	page := queryPage(r, fields)
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	categories, total, err := h.blog.ListCategories(r.Context(), viewerFrom(r.Context()), page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	setTotal(w, total)
	writeJSON(w, http.StatusOK, toCategoryDTOs(categories))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in blog.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	c, err := h.blog.CreateCategory(r.Context(), viewerFrom(r.Context()), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(*c))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}

	c, err := h.blog.GetCategory(r.Context(), viewerFrom(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(*c))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	h.updateCategory(w, r, false)
}

func (h *Handler) PartialUpdateCategory(w http.ResponseWriter, r *http.Request) {
	h.updateCategory(w, r, true)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}
	var in blog.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	c, err := h.blog.UpdateCategory(r.Context(), viewerFrom(r.Context()), id, in, partial)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(*c))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}

	if err := h.blog.DeleteCategory(r.Context(), viewerFrom(r.Context()), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
