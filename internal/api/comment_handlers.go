package api

import (
	"net/http"

	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/validation"
)

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	fields := validation.FieldErrors{}
	filter := blog.CommentFilter{
		PostID: queryInt64(r, "post", fields),
		Page:   queryPage(r, fields),
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	comments, total, err := h.blog.ListComments(r.Context(), viewerFrom(r.Context()), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	setTotal(w, total)
	writeJSON(w, http.StatusOK, toCommentDTOs(comments))
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in blog.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	c, err := h.blog.CreateComment(r.Context(), viewerFrom(r.Context()), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentDTO(*c))
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}

	c, err := h.blog.GetComment(r.Context(), viewerFrom(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentDTO(*c))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	h.updateComment(w, r, false)
}

func (h *Handler) PartialUpdateComment(w http.ResponseWriter, r *http.Request) {
	h.updateComment(w, r, true)
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}
	var in blog.CommentUpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	c, err := h.blog.UpdateComment(r.Context(), viewerFrom(r.Context()), id, in, partial)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentDTO(*c))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}

	if err := h.blog.DeleteComment(r.Context(), viewerFrom(r.Context()), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	h.moderateComment(w, r, true)
}

func (h *Handler) UnapproveComment(w http.ResponseWriter, r *http.Request) {
	h.moderateComment(w, r, false)
}

func (h *Handler) moderateComment(w http.ResponseWriter, r *http.Request, approved bool) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}

	c, err := h.blog.SetApproval(r.Context(), viewerFrom(r.Context()), id, approved)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentDTO(*c))
}
