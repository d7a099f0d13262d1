package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/vdblog/vdblog-backend/internal/auth"
	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/session"
	"github.com/vdblog/vdblog-backend/internal/validation"
)

const maxBodyBytes = 1 << 20

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
	RecordLogin(ctx context.Context, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordHTTPRequest(context.Context, string, string, int, time.Duration) {}
func (nopMetrics) RecordLogin(context.Context, string)                                   {}

type Handler struct {
	blog     *blog.Service
	auth     *auth.Authenticator
	sessions *session.Manager
	db       interfaces.Database
	logger   *zap.SugaredLogger
	metrics  MetricsInterface
}

func NewHandler(
	blogSvc *blog.Service,
	authenticator *auth.Authenticator,
	sessions *session.Manager,
	db interfaces.Database,
	logger *zap.SugaredLogger,
	metrics MetricsInterface,
) *Handler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Handler{
		blog:     blogSvc,
		auth:     authenticator,
		sessions: sessions,
		db:       db,
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz reports whether the database answers.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if !h.db.IsHealthy(r.Context()) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IndexDTO{
		Message: localize(r, msgServiceRunning),
		Endpoints: map[string]string{
			"home_stats": "/api/home/stats/",
			"featured":   "/api/home/featured/",
			"categories": "/api/categories/",
			"posts":      "/api/posts/",
			"comments":   "/api/comments/",
			"login":      "/api/auth/login/",
			"logout":     "/api/auth/logout/",
			"auth_check": "/api/auth/check/",
		},
	})
}

// Home endpoints

func (h *Handler) HomeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blog.HomeStats(r.Context(), viewerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHomeStatsDTO(stats))
}

func (h *Handler) FeaturedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.Featured(r.Context(), viewerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostListDTOs(posts))
}

// Utility methods

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Error: message})
}

// writeServiceError translates service errors into responses. Anything
// unrecognized becomes a 500 carrying the error text.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *blog.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, blog.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", err.Error())
	case errors.Is(err, blog.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	case errors.Is(err, blog.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", blog.ErrNotFound.Error())
	default:
		h.logger.Errorw("Request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// decodeJSON reads a JSON object from the request body into the struct dst
// points to. An empty body decodes as an empty object. Members are decoded
// one at a time so a value of the wrong type is reported under its JSON name.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var members map[string]json.RawMessage
	if err := dec.Decode(&members); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &badRequestError{err: errExpectedObject}
		}
		return &badRequestError{err: err}
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return &badRequestError{err: errTrailingData}
	}

	return decodeMembers(members, dst)
}

var (
	errExpectedObject = errors.New("expected a JSON object")
	errTrailingData   = errors.New("unexpected data after the JSON object")
)

func decodeMembers(members map[string]json.RawMessage, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode into %T: not a struct pointer", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()

	fields := validation.FieldErrors{}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := validation.JSONName(f)
		raw, ok := members[name]
		if !ok || name == "" || !f.IsExported() {
			continue
		}
		if err := json.Unmarshal(raw, rv.Field(i).Addr().Interface()); err != nil {
			fields.Add(name, typeMessage(f.Type))
		}
	}
	if len(fields) > 0 {
		return &blog.ValidationError{Fields: fields}
	}
	return nil
}

// typeMessage describes the value a field of type t accepts.
func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "Not a valid string."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	default:
		return "Incorrect type."
	}
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return "JSON parse error - " + e.err.Error()
}

// writeDecodeError answers a request whose body could not be decoded.
func (h *Handler) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var bad *badRequestError
	if errors.As(err, &bad) {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", bad.Error())
		return
	}
	h.writeServiceError(w, r, err)
}

// pathID parses the {id} URL parameter. Malformed IDs match no record.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional integer query parameter. Empty values are
// treated as absent.
func queryInt64(r *http.Request, name string, fields validation.FieldErrors) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fields.Add(name, "A valid integer is required.")
		return nil
	}
	return &v
}

// queryPage reads limit and offset.
func queryPage(r *http.Request, fields validation.FieldErrors) interfaces.Page {
	var page interfaces.Page
	if limit := queryInt64(r, "limit", fields); limit != nil {
		if *limit < 0 {
			fields.Add("limit", "Ensure this value is greater than or equal to 0.")
		} else {
			page.Limit = int(*limit)
		}
	}
	if offset := queryInt64(r, "offset", fields); offset != nil {
		if *offset < 0 {
			fields.Add("offset", "Ensure this value is greater than or equal to 0.")
		} else {
			page.Offset = int(*offset)
		}
	}
	return page
}

func setTotal(w http.ResponseWriter, total int64) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
}
