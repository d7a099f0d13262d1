package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vdblog/vdblog-backend/internal/auth"
	"github.com/vdblog/vdblog-backend/internal/authz"
	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/db"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/session"
	"github.com/vdblog/vdblog-backend/pkg/kv/memory"
)

const testPassword = "correct horse battery staple"

func TestMain(m *testing.M) {
	auth.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testServer struct {
	router   http.Handler
	db       interfaces.Database
	writer   *entities.User
	admin    *entities.User
	category *entities.Category
}

func newTestServer(t *testing.T, opts RouterOptions) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop().Sugar()

	database := db.NewInMemoryDatabase()
	require.NoError(t, db.ConnectAndMigrate(ctx, database))
	t.Cleanup(func() { database.Disconnect(ctx) })

	enforcer, err := authz.NewEnforcer(authz.Config{})
	require.NoError(t, err)

	authenticator := auth.NewAuthenticator(database.Users(), logger)
	writer := &entities.User{Username: "writer", Email: "writer@example.com", FirstName: "Wendy", LastName: "Writer", IsActive: true}
	require.NoError(t, authenticator.CreateUser(ctx, writer, testPassword))
	admin := &entities.User{Username: "admin", Email: "admin@example.com", IsActive: true, IsStaff: true}
	require.NoError(t, authenticator.CreateUser(ctx, admin, testPassword))

	category := &entities.Category{Name: "Tech"}
	require.NoError(t, database.Categories().Create(ctx, category))

	store := memory.New(0)
	t.Cleanup(func() { store.Close() })
	sessions := session.NewManager(store, session.Options{
		Secret: strings.Repeat("s", 32),
		TTL:    time.Hour,
	}, logger)

	svc := blog.NewService(database, enforcer, nil, logger)
	h := NewHandler(svc, authenticator, sessions, database, logger, nil)
	if opts.LoginRateLimit == 0 {
		opts.LoginRateLimit = 1000
	}

	return &testServer{
		router:   h.Routes(NewMiddleware(logger, nil), opts),
		db:       database,
		writer:   writer,
		admin:    admin,
		category: category,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login/", LoginRequest{Username: username, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func (s *testServer) post(t *testing.T, title string, published bool) *entities.Post {
	t.Helper()
	p := &entities.Post{
		Title:       title,
		Content:     "body of " + title,
		Excerpt:     "about " + title,
		CategoryID:  s.category.ID,
		AuthorID:    s.writer.ID,
		IsPublished: published,
	}
	require.NoError(t, s.db.Posts().Create(context.Background(), p))
	return p
}

func (s *testServer) comment(t *testing.T, postID int64, approved bool) *entities.Comment {
	t.Helper()
	c := &entities.Comment{PostID: postID, AuthorName: "reader", Content: "nice", IsApproved: approved}
	require.NoError(t, s.db.Comments().Create(context.Background(), c))
	return c
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", session.CookieName)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t, RouterOptions{MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})})

	for path, want := range map[string]string{
		"/healthz": "OK",
		"/readyz":  "READY",
		"/ping":    ".",
		"/metrics": "# metrics",
	} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestReadyzReportsDatabaseOutage(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	require.NoError(t, s.db.Disconnect(context.Background()))

	rec := s.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	rec := s.do(t, http.MethodGet, "/api/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[IndexDTO](t, rec)
	assert.Equal(t, "VD Blog API is running", body.Message)
	assert.Equal(t, "/api/posts/", body.Endpoints["posts"])

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "VD Blog API 服务正在运行", decode[IndexDTO](t, rec).Message)
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	rec := s.do(t, http.MethodGet, "/api/auth/check/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login/", LoginRequest{Username: "writer", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[LoginResponse](t, rec)
	assert.True(t, login.Success)
	require.NotNil(t, login.User)
	assert.Equal(t, UserProfileDTO{
		ID:        s.writer.ID,
		Username:  "writer",
		Email:     "writer@example.com",
		FirstName: "Wendy",
		LastName:  "Writer",
	}, *login.User)

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	rec = s.do(t, http.MethodGet, "/api/auth/check/", nil, cookie)
	check := decode[AuthCheckResponse](t, rec)
	assert.True(t, check.Authenticated)
	require.NotNil(t, check.User)
	assert.Equal(t, "writer", check.User.Username)

	rec = s.do(t, http.MethodPost, "/api/auth/logout/", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Less(t, sessionCookie(t, rec).MaxAge, 0)

	rec = s.do(t, http.MethodGet, "/api/auth/check/", nil, cookie)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestLoginFailuresAreUniform(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	wrongPassword := s.do(t, http.MethodPost, "/api/auth/login/", LoginRequest{Username: "writer", Password: "nope"})
	unknownUser := s.do(t, http.MethodPost, "/api/auth/login/", LoginRequest{Username: "ghost", Password: testPassword})
	empty := s.do(t, http.MethodPost, "/api/auth/login/", nil)

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser, empty} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid username or password."}`, rec.Body.String())
		assert.Empty(t, rec.Result().Cookies())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login/", strings.NewReader(`{"username":"ghost","password":"x"}`))
	req.Header.Set("Accept-Language", "zh-Hans")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "用户名或密码错误", decode[LoginResponse](t, rec).Error)
}

func TestLogoutWithoutSession(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/auth/logout/", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	}
}

func TestSessionOfDeactivatedUserIsAnonymous(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	cookie := s.login(t, "writer")

	require.NoError(t, s.db.Users().Delete(context.Background(), s.writer.ID))

	rec := s.do(t, http.MethodGet, "/api/auth/check/", nil, cookie)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, RouterOptions{LoginRateLimit: 2})

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/auth/login/", LoginRequest{Username: "writer", Password: "bad"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/auth/login/", LoginRequest{Username: "writer", Password: testPassword})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[ErrorResponse](t, rec).Code)
}

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	rec := s.do(t, http.MethodPost, "/api/categories/", map[string]any{"name": "Life"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[CategoryDTO](t, rec)
	assert.Equal(t, "Life", created.Name)

	rec = s.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))
	assert.Len(t, decode[[]CategoryDTO](t, rec), 2)

	path := fmt.Sprintf("/api/categories/%d/", created.ID)
	rec = s.do(t, http.MethodPatch, path, map[string]any{"name": "Living"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Living", decode[CategoryDTO](t, rec).Name)

	rec = s.do(t, http.MethodPut, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"name":["This field is required."]}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/categories/abc/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryDeleteCascades(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	p := s.post(t, "Doomed", true)
	c := s.comment(t, p.ID, true)

	rec := s.do(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d/", s.category.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/", p.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, err := s.db.Comments().Get(context.Background(), c.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestPostListVisibilityAndFilters(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	ctx := context.Background()

	other := &entities.Category{Name: "Other"}
	require.NoError(t, s.db.Categories().Create(ctx, other))

	older := s.post(t, "Django basics", true)
	s.post(t, "Go tips", true)
	newer := s.post(t, "Advanced DJANGO", true)
	draft := s.post(t, "Django draft", false)
	offTopic := &entities.Post{Title: "django elsewhere", Content: "x", CategoryID: other.ID, AuthorID: s.writer.ID, IsPublished: true}
	require.NoError(t, s.db.Posts().Create(ctx, offTopic))

	path := fmt.Sprintf("/api/posts/?search=django&category=%d", s.category.ID)
	rec := s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]map[string]any](t, rec)
	require.Len(t, posts, 2)
	assert.EqualValues(t, newer.ID, posts[0]["id"])
	assert.EqualValues(t, older.ID, posts[1]["id"])
	assert.NotContains(t, posts[0], "content", "list shape omits content")
	assert.Equal(t, "writer", posts[0]["author_name"])
	assert.Equal(t, "Tech", posts[0]["category_name"])

	rec = s.do(t, http.MethodGet, path, nil, s.login(t, "admin"))
	assert.Len(t, decode[[]PostListDTO](t, rec), 3)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/", draft.ID), nil, s.login(t, "writer"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/posts/?category=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"category":["A valid integer is required."]}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/posts/?limit=1&offset=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-Total-Count"))
	assert.Len(t, decode[[]PostListDTO](t, rec), 1)
}

func TestPostDetail(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	p := s.post(t, "Counted", true)
	s.comment(t, p.ID, true)
	s.comment(t, p.ID, false)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[PostDetailDTO](t, rec)
	assert.Equal(t, p.Content, detail.Content)
	assert.Equal(t, s.category.ID, detail.Category)
	assert.Equal(t, s.writer.ID, detail.Author)
	assert.Equal(t, int64(1), detail.CommentCount)
}

func TestCreatePost(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	payload := map[string]any{
		"title":    "Hello",
		"content":  "World",
		"category": s.category.ID,
		"author":   s.admin.ID,
	}

	rec := s.do(t, http.MethodPost, "/api/posts/", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NOT_AUTHENTICATED", decode[ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/posts/", payload, s.login(t, "writer"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PostDetailDTO](t, rec)
	assert.Equal(t, s.writer.ID, created.Author, "author comes from the session")
	assert.Equal(t, "writer", created.AuthorName)
	assert.False(t, created.IsPublished)
	assert.Equal(t, "", created.Excerpt)
}

func TestCreatePostValidation(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	cookie := s.login(t, "writer")

	rec := s.do(t, http.MethodPost, "/api/posts/", map[string]any{"title": "", "category": 999}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"This field may not be blank."}, fields["title"])
	assert.Equal(t, []string{"This field is required."}, fields["content"])
	assert.Equal(t, []string{`Invalid pk "999" - object does not exist.`}, fields["category"])

	rec = s.do(t, http.MethodPost, "/api/posts/", `{"title":`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decode[ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/posts/", `{"title":"t","content":"c","category":"abc"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"category":["A valid integer is required."]}`, rec.Body.String())
}

func TestMistypedFields(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	cookie := s.login(t, "writer")
	category := s.category.ID

	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{"string field", "/api/posts/", fmt.Sprintf(`{"title":5,"content":"c","category":%d}`, category), `{"title":["Not a valid string."]}`},
		{"integer field", "/api/posts/", `{"title":"t","content":"c","category":"one"}`, `{"category":["A valid integer is required."]}`},
		{"boolean field", "/api/posts/", fmt.Sprintf(`{"title":"t","content":"c","category":%d,"is_published":"yes"}`, category), `{"is_published":["Must be a valid boolean."]}`},
		{"several fields", "/api/posts/", `{"title":[],"content":{},"category":1.5}`, `{"title":["Not a valid string."],"content":["Not a valid string."],"category":["A valid integer is required."]}`},
		{"category name", "/api/categories/", `{"name":7}`, `{"name":["Not a valid string."]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.body, cookie)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestMalformedBodies(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	for _, body := range []string{
		`{"name":"a"} {"name":"b"}`,
		`{"name":"a"}x`,
		`["a"]`,
		`"a"`,
	} {
		rec := s.do(t, http.MethodPost, "/api/categories/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "INVALID_JSON", decode[ErrorResponse](t, rec).Code, body)
	}

	rec := s.do(t, http.MethodGet, "/api/categories/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]CategoryDTO](t, rec), 1, "nothing was created")

	rec = s.do(t, http.MethodPost, "/api/categories/", "{\"name\":\"Travel\"}\n")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestUpdateAndDeletePost(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	p := s.post(t, "Original", true)
	path := fmt.Sprintf("/api/posts/%d/", p.ID)

	rec := s.do(t, http.MethodPatch, path, map[string]any{"title": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := s.login(t, "writer")
	rec = s.do(t, http.MethodPatch, path, map[string]any{"title": "Renamed"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[PostDetailDTO](t, rec)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, p.Content, updated.Content)

	rec = s.do(t, http.MethodPut, path, map[string]any{"title": "Only title"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, path, map[string]any{
		"title":        "Full",
		"content":      "Replaced",
		"category":     s.category.ID,
		"is_published": true,
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Replaced", decode[PostDetailDTO](t, rec).Content)

	rec = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, path, nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddComment(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	p := s.post(t, "Commentable", true)
	other := s.post(t, "Other", true)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/add_comment/", p.ID), map[string]any{
		"author_name": "Alice",
		"content":     "hi",
		"is_approved": true,
		"post":        other.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[CommentDTO](t, rec)
	assert.Equal(t, p.ID, c.Post)
	assert.Equal(t, "Alice", c.AuthorName)
	assert.Equal(t, "hi", c.Content)
	assert.False(t, c.IsApproved)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/add_comment/", p.ID),
		`{"author_name":"Alice","content":"hi","post":"abc"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, p.ID, decode[CommentDTO](t, rec).Post)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/add_comment/", p.ID), map[string]any{"content": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"author_name":["This field is required."]}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/posts/9999/add_comment/", map[string]any{"author_name": "a", "content": "b"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentEndpoints(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	p := s.post(t, "Post", true)
	other := s.post(t, "Other", true)
	approved := s.comment(t, p.ID, true)
	pending := s.comment(t, p.ID, false)
	s.comment(t, other.ID, true)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/comments/?post=%d", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decode[[]CommentDTO](t, rec)
	require.Len(t, comments, 1)
	assert.Equal(t, approved.ID, comments[0].ID)

	admin := s.login(t, "admin")
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/comments/?post=%d", p.ID), nil, admin)
	assert.Len(t, decode[[]CommentDTO](t, rec), 2)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/comments/%d/", pending.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/comments/", map[string]any{
		"post": p.ID, "author_name": "Bob", "content": "hey", "is_approved": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, decode[CommentDTO](t, rec).IsApproved)

	rec = s.do(t, http.MethodPost, "/api/comments/", map[string]any{"author_name": "Bob", "content": "hey"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"post":["This field is required."]}`, rec.Body.String())

	writer := s.login(t, "writer")
	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/comments/%d/", approved.ID), map[string]any{"content": "edited"}, writer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode[CommentDTO](t, rec).Content)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d/", approved.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d/", approved.ID), nil, writer)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestModerationUpdatesCommentCount(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	p := s.post(t, "Moderated", true)
	pending := s.comment(t, p.ID, false)
	approvePath := fmt.Sprintf("/api/comments/%d/approve/", pending.ID)

	rec := s.do(t, http.MethodPost, approvePath, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, approvePath, nil, s.login(t, "writer"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PERMISSION_DENIED", decode[ErrorResponse](t, rec).Code)

	admin := s.login(t, "admin")
	rec = s.do(t, http.MethodPost, approvePath, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[CommentDTO](t, rec).IsApproved)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/", p.ID), nil)
	assert.Equal(t, int64(1), decode[PostDetailDTO](t, rec).CommentCount)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/comments/%d/unapprove/", pending.ID), nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/", p.ID), nil)
	assert.Equal(t, int64(0), decode[PostDetailDTO](t, rec).CommentCount)
}

func TestHomeEndpoints(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	var ids []int64
	for i := 0; i < 10; i++ {
		ids = append(ids, s.post(t, fmt.Sprintf("post %d", i), true).ID)
	}
	s.post(t, "hidden", false)
	s.comment(t, ids[0], true)
	s.comment(t, ids[0], false)

	rec := s.do(t, http.MethodGet, "/api/home/featured/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	featured := decode[[]PostListDTO](t, rec)
	require.Len(t, featured, 3)
	assert.Equal(t, []int64{ids[9], ids[8], ids[7]}, []int64{featured[0].ID, featured[1].ID, featured[2].ID})

	rec = s.do(t, http.MethodGet, "/api/home/stats/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[HomeStatsDTO](t, rec)
	assert.Equal(t, int64(10), stats.TotalPosts)
	assert.Equal(t, int64(1), stats.TotalCategories)
	assert.Equal(t, int64(1), stats.TotalComments)
	assert.Len(t, stats.RecentPosts, 5)
}

func TestStoreFailureIsInternalError(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	require.NoError(t, s.db.Disconnect(context.Background()))

	rec := s.do(t, http.MethodGet, "/api/home/stats/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.Contains(t, body.Error, "database not connected")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, RouterOptions{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/posts/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
