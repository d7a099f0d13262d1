package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vdblog/vdblog-backend/internal/auth"
	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/session"
)

type contextKey string

const userContextKey contextKey = "user"

func withUser(ctx context.Context, u *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// userFrom returns the signed in user, or nil for anonymous requests.
func userFrom(ctx context.Context) *entities.User {
	u, _ := ctx.Value(userContextKey).(*entities.User)
	return u
}

func viewerFrom(ctx context.Context) blog.Viewer {
	u := userFrom(ctx)
	if u == nil {
		return blog.Viewer{}
	}
	return blog.Viewer{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}

// Authenticate resolves the session cookie to a user. Requests without a
// usable session continue as anonymous.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		data, err := h.sessions.Lookup(ctx, r)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				h.logger.Warnw("Session lookup failed",
					"request_id", middleware.GetReqID(ctx),
					"error", err,
				)
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.auth.ActiveUser(ctx, data.UserID)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				h.logger.Warnw("Session user lookup failed",
					"request_id", middleware.GetReqID(ctx),
					"user_id", data.UserID,
					"error", err,
				)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(ctx, user)))
	})
}

// Login checks credentials and starts a session. Unknown users and wrong
// passwords get the same answer.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.metrics.RecordLogin(r.Context(), "failure")
		writeJSON(w, http.StatusUnauthorized, LoginResponse{
			Success: false,
			Error:   localize(r, msgInvalidCredentials),
		})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.sessions.Start(r.Context(), w, r, user.ID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.metrics.RecordLogin(r.Context(), "success")
	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		User:    toUserProfileDTO(user),
	})
}

// Logout always succeeds, whether or not a session existed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.Warnw("Logout could not destroy session",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	if u := userFrom(r.Context()); u != nil {
		h.logger.Infow("Logout", "user_id", u.ID, "username", u.Username)
	}
	writeJSON(w, http.StatusOK, LogoutResponse{Success: true})
}

func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	if u == nil {
		writeJSON(w, http.StatusOK, AuthCheckResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, AuthCheckResponse{
		Authenticated: true,
		User:          toUserProfileDTO(u),
	})
}
