// Package dbtest provides conformance tests for interfaces.Database implementations
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

// DatabaseFactory creates a fresh, connected and migrated Database for testing
type DatabaseFactory func(t *testing.T) interfaces.Database

// RunConformanceTests runs all conformance tests against a Database implementation
func RunConformanceTests(t *testing.T, factory DatabaseFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, db interfaces.Database)
	}{
		{"UserCRUD", testUserCRUD},
		{"UniqueUsername", testUniqueUsername},
		{"CategoryCRUD", testCategoryCRUD},
		{"PostCRUD", testPostCRUD},
		{"PostForeignKeys", testPostForeignKeys},
		{"PostFilters", testPostFilters},
		{"PostOrderingAndPaging", testPostOrderingAndPaging},
		{"CommentCount", testCommentCount},
		{"CommentFilters", testCommentFilters},
		{"CascadeCategory", testCascadeCategory},
		{"CascadePost", testCascadePost},
		{"CascadeUser", testCascadeUser},
		{"NotFound", testNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := factory(t)
			t.Cleanup(func() { db.Disconnect(context.Background()) })
			tt.test(t, db)
		})
	}
}

// Fixture bundles the rows most tests need.
type Fixture struct {
	Author   *entities.User
	Category *entities.Category
}

// NewFixture creates one author and one category.
func NewFixture(t *testing.T, db interfaces.Database) Fixture {
	t.Helper()
	ctx := context.Background()

	u := &entities.User{Username: "author", Email: "author@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Users().Create(ctx, u))

	c := &entities.Category{Name: "Tech"}
	require.NoError(t, db.Categories().Create(ctx, c))

	return Fixture{Author: u, Category: c}
}

func createPost(t *testing.T, db interfaces.Database, f Fixture, title string, published bool) *entities.Post {
	t.Helper()
	p := &entities.Post{
		Title:       title,
		Content:     "content of " + title,
		CategoryID:  f.Category.ID,
		AuthorID:    f.Author.ID,
		IsPublished: published,
	}
	require.NoError(t, db.Posts().Create(context.Background(), p))
	return p
}

func createComment(t *testing.T, db interfaces.Database, postID int64, approved bool) *entities.Comment {
	t.Helper()
	c := &entities.Comment{PostID: postID, AuthorName: "reader", Content: "nice", IsApproved: approved}
	require.NoError(t, db.Comments().Create(context.Background(), c))
	return c
}

func testUserCRUD(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	u := &entities.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FirstName:    "Alice",
		LastName:     "Liddell",
		PasswordHash: "hash",
		IsStaff:      true,
		IsActive:     true,
	}
	require.NoError(t, db.Users().Create(ctx, u))
	assert.NotZero(t, u.ID)
	assert.False(t, u.DateJoined.IsZero())

	got, err := db.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, got.IsStaff)
	assert.True(t, got.IsActive)

	byName, err := db.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	require.NoError(t, db.Users().Delete(ctx, u.ID))
	_, err = db.Users().GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func testUniqueUsername(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	require.NoError(t, db.Users().Create(ctx, &entities.User{Username: "bob", PasswordHash: "x"}))

	err := db.Users().Create(ctx, &entities.User{Username: "bob", PasswordHash: "y"})
	assert.ErrorIs(t, err, interfaces.ErrUniqueConstraint)
}

func testCategoryCRUD(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	repo := db.Categories()

	c := &entities.Category{Name: "Go"}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	// Names are not unique.
	require.NoError(t, repo.Create(ctx, &entities.Category{Name: "Go"}))

	c.Name = "Golang"
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Golang", got.Name)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

	list, total, err := repo.List(ctx, interfaces.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.Get(ctx, c.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func testPostCRUD(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)

	p := &entities.Post{
		Title:       "Hello",
		Content:     "World",
		Excerpt:     "Hi",
		CategoryID:  f.Category.ID,
		AuthorID:    f.Author.ID,
		IsPublished: true,
	}
	require.NoError(t, db.Posts().Create(ctx, p))
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.True(t, p.CreatedAt.Equal(p.UpdatedAt))

	v, err := db.Posts().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", v.Title)
	assert.Equal(t, "Hi", v.Excerpt)
	assert.Equal(t, "Tech", v.CategoryName)
	assert.Equal(t, "author", v.AuthorName)
	assert.Zero(t, v.CommentCount)

	created := p.CreatedAt
	p.Title = "Hello again"
	p.IsPublished = false
	p.AuthorID = 0
	require.NoError(t, db.Posts().Update(ctx, p))
	assert.Equal(t, f.Author.ID, p.AuthorID, "author is not writable")
	assert.True(t, p.CreatedAt.Equal(created))
	assert.False(t, p.UpdatedAt.Before(created))

	v, err = db.Posts().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", v.Title)
	assert.False(t, v.IsPublished)
	assert.Equal(t, f.Author.ID, v.AuthorID)

	require.NoError(t, db.Posts().Delete(ctx, p.ID))
	_, err = db.Posts().Get(ctx, p.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func testPostForeignKeys(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)

	err := db.Posts().Create(ctx, &entities.Post{Title: "x", Content: "y", CategoryID: 999, AuthorID: f.Author.ID})
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)

	err = db.Posts().Create(ctx, &entities.Post{Title: "x", Content: "y", CategoryID: f.Category.ID, AuthorID: 999})
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)

	err = db.Comments().Create(ctx, &entities.Comment{PostID: 999, AuthorName: "a", Content: "b"})
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)
}

func testPostFilters(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)
	other := &entities.Category{Name: "Life"}
	require.NoError(t, db.Categories().Create(ctx, other))

	createPost(t, db, f, "Learning Django", true)
	createPost(t, db, f, "DJANGO tips", false)
	createPost(t, db, f, "Go in 100% detail", true)
	createPost(t, db, f, "Über Django", true)
	p := &entities.Post{Title: "Django at home", Content: "c", CategoryID: other.ID, AuthorID: f.Author.ID, IsPublished: true}
	require.NoError(t, db.Posts().Create(ctx, p))

	titles := func(q interfaces.PostQuery) []string {
		views, total, err := db.Posts().List(ctx, q)
		require.NoError(t, err)
		assert.EqualValues(t, len(views), total)
		n, err := db.Posts().Count(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, total, n)
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Learning Django", "DJANGO tips", "Django at home", "Über Django"}, titles(interfaces.PostQuery{Search: "django"}))
	assert.ElementsMatch(t, []string{"Learning Django", "Django at home", "Über Django"}, titles(interfaces.PostQuery{Search: "django", PublishedOnly: true}))
	assert.ElementsMatch(t, []string{"Über Django"}, titles(interfaces.PostQuery{Search: "über"}))
	assert.ElementsMatch(t, []string{"Über Django"}, titles(interfaces.PostQuery{Search: "ÜBER"}))
	assert.ElementsMatch(t, []string{"Django at home"}, titles(interfaces.PostQuery{Search: "Django", CategoryID: &other.ID}))
	assert.ElementsMatch(t, []string{"Go in 100% detail"}, titles(interfaces.PostQuery{Search: "100%"}))
	assert.Empty(t, titles(interfaces.PostQuery{Search: "0%_"}))
	assert.Len(t, titles(interfaces.PostQuery{}), 5)
}

func testPostOrderingAndPaging(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)

	var ids []int64
	for _, title := range []string{"one", "two", "three", "four"} {
		ids = append(ids, createPost(t, db, f, title, true).ID)
	}

	views, total, err := db.Posts().List(ctx, interfaces.PostQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, views, 4)
	for i := 1; i < len(views); i++ {
		prev, cur := views[i-1], views[i]
		assert.False(t, prev.CreatedAt.Before(cur.CreatedAt), "newest first")
		if prev.CreatedAt.Equal(cur.CreatedAt) {
			assert.Greater(t, prev.ID, cur.ID)
		}
	}
	assert.Equal(t, ids[3], views[0].ID)

	page, total, err := db.Posts().List(ctx, interfaces.PostQuery{Page: interfaces.Page{Limit: 2, Offset: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, views[1].ID, page[0].ID)
	assert.Equal(t, views[2].ID, page[1].ID)

	tail, _, err := db.Posts().List(ctx, interfaces.PostQuery{Page: interfaces.Page{Offset: 3}})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, views[3].ID, tail[0].ID)
}

func testCommentCount(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)
	p := createPost(t, db, f, "Counted", true)

	createComment(t, db, p.ID, true)
	createComment(t, db, p.ID, true)
	pending := createComment(t, db, p.ID, false)

	v, err := db.Posts().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, v.CommentCount)

	pending.IsApproved = true
	require.NoError(t, db.Comments().Update(ctx, pending))

	views, _, err := db.Posts().List(ctx, interfaces.PostQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.EqualValues(t, 3, views[0].CommentCount)
}

func testCommentFilters(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)
	p1 := createPost(t, db, f, "first", true)
	p2 := createPost(t, db, f, "second", true)

	createComment(t, db, p1.ID, true)
	createComment(t, db, p1.ID, false)
	last := createComment(t, db, p2.ID, true)

	all, total, err := db.Comments().List(ctx, interfaces.CommentQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, last.ID, all[0].ID)

	approved, total, err := db.Comments().List(ctx, interfaces.CommentQuery{ApprovedOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, c := range approved {
		assert.True(t, c.IsApproved)
	}

	byPost, _, err := db.Comments().List(ctx, interfaces.CommentQuery{PostID: &p1.ID})
	require.NoError(t, err)
	assert.Len(t, byPost, 2)

	n, err := db.Comments().Count(ctx, interfaces.CommentQuery{PostID: &p1.ID, ApprovedOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := db.Comments().Get(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", got.AuthorName)
	assert.True(t, last.CreatedAt.Equal(got.CreatedAt))

	got.Content = "edited"
	require.NoError(t, db.Comments().Update(ctx, got))
	again, err := db.Comments().Get(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", again.Content)

	require.NoError(t, db.Comments().Delete(ctx, last.ID))
	_, err = db.Comments().Get(ctx, last.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func testCascadeCategory(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)
	keep := &entities.Category{Name: "Keep"}
	require.NoError(t, db.Categories().Create(ctx, keep))

	p := createPost(t, db, f, "doomed", true)
	c := createComment(t, db, p.ID, true)
	survivor := &entities.Post{Title: "survivor", Content: "c", CategoryID: keep.ID, AuthorID: f.Author.ID}
	require.NoError(t, db.Posts().Create(ctx, survivor))

	require.NoError(t, db.Categories().Delete(ctx, f.Category.ID))

	_, err := db.Posts().Get(ctx, p.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = db.Comments().Get(ctx, c.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = db.Posts().Get(ctx, survivor.ID)
	assert.NoError(t, err)
}

func testCascadePost(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)
	p := createPost(t, db, f, "doomed", true)
	c1 := createComment(t, db, p.ID, true)
	c2 := createComment(t, db, p.ID, false)

	require.NoError(t, db.Posts().Delete(ctx, p.ID))

	for _, id := range []int64{c1.ID, c2.ID} {
		_, err := db.Comments().Get(ctx, id)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	}
}

func testCascadeUser(t *testing.T, db interfaces.Database) {
	ctx := context.Background()
	f := NewFixture(t, db)
	p := createPost(t, db, f, "by author", true)
	c := createComment(t, db, p.ID, true)

	require.NoError(t, db.Users().Delete(ctx, f.Author.ID))

	_, err := db.Posts().Get(ctx, p.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = db.Comments().Get(ctx, c.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = db.Categories().Get(ctx, f.Category.ID)
	assert.NoError(t, err)
}

func testNotFound(t *testing.T, db interfaces.Database) {
	ctx := context.Background()

	_, err := db.Categories().Get(ctx, 42)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = db.Posts().Get(ctx, 42)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = db.Comments().Get(ctx, 42)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = db.Users().Get(ctx, 42)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	assert.ErrorIs(t, db.Categories().Update(ctx, &entities.Category{ID: 42, Name: "x"}), interfaces.ErrNotFound)
	assert.ErrorIs(t, db.Posts().Delete(ctx, 42), interfaces.ErrNotFound)
	assert.ErrorIs(t, db.Comments().Delete(ctx, 42), interfaces.ErrNotFound)
}
