package api

import (
	"net/http"

	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/validation"
)

// ListPosts supports ?search= (title, case-insensitive), ?category=, ?limit= and ?offset=.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	fields := validation.FieldErrors{}
	filter := blog.PostFilter{
		Search:     r.URL.Query().Get("search"),
		CategoryID: queryInt64(r, "category", fields),
		Page:       queryPage(r, fields),
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	posts, total, err := h.blog.ListPosts(r.Context(), viewerFrom(r.Context()), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	setTotal(w, total)
	writeJSON(w, http.StatusOK, toPostListDTOs(posts))
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in blog.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	p, err := h.blog.CreatePost(r.Context(), viewerFrom(r.Context()), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostDetailDTO(*p))
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}

	p, err := h.blog.GetPost(r.Context(), viewerFrom(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDetailDTO(*p))
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	h.updatePost(w, r, false)
}

func (h *Handler) PartialUpdatePost(w http.ResponseWriter, r *http.Request) {
	h.updatePost(w, r, true)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}
	var in blog.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	p, err := h.blog.UpdatePost(r.Context(), viewerFrom(r.Context()), id, in, partial)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDetailDTO(*p))
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}

	if err := h.blog.DeletePost(r.Context(), viewerFrom(r.Context()), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment submits a comment on the post in the path.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeServiceError(w, r, blog.ErrNotFound)
		return
	}
	var body blog.CommentBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	c, err := h.blog.AddComment(r.Context(), viewerFrom(r.Context()), id, body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentDTO(*c))
}
