package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

func TestMatchesPost(t *testing.T) {
	cat := int64(2)
	other := int64(3)
	post := entities.Post{Title: "Learning Django the hard way", CategoryID: 2, IsPublished: true}

	assert.True(t, MatchesPost(post, interfaces.PostQuery{}))
	assert.True(t, MatchesPost(post, interfaces.PostQuery{Search: "DJANGO", CategoryID: &cat}))
	assert.False(t, MatchesPost(post, interfaces.PostQuery{Search: "flask"}))
	assert.False(t, MatchesPost(post, interfaces.PostQuery{Search: "django", CategoryID: &other}))

	post.IsPublished = false
	assert.False(t, MatchesPost(post, interfaces.PostQuery{PublishedOnly: true}))
	assert.True(t, MatchesPost(post, interfaces.PostQuery{}))
}

func TestMatchesComment(t *testing.T) {
	postID := int64(5)
	c := entities.Comment{PostID: 5}

	assert.True(t, MatchesComment(c, interfaces.CommentQuery{PostID: &postID}))
	assert.False(t, MatchesComment(c, interfaces.CommentQuery{ApprovedOnly: true}))

	c.PostID = 6
	assert.False(t, MatchesComment(c, interfaces.CommentQuery{PostID: &postID}))
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	posts := []entities.Post{
		{ID: 1, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, CreatedAt: now},
		{ID: 3, CreatedAt: now},
		{ID: 4, CreatedAt: now.Add(-2 * time.Hour)},
	}

	SortNewestFirst(posts,
		func(p entities.Post) time.Time { return p.CreatedAt },
		func(p entities.Post) int64 { return p.ID },
	)

	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{3, 2, 1, 4}, ids)
}

func TestApplyPagination(t *testing.T) {
	records := []int{1, 2, 3, 4, 5}

	assert.Equal(t, records, ApplyPagination(records, interfaces.Page{}))
	assert.Equal(t, []int{3, 4}, ApplyPagination(records, interfaces.Page{Limit: 2, Offset: 2}))
	assert.Equal(t, []int{5}, ApplyPagination(records, interfaces.Page{Limit: 10, Offset: 4}))
	assert.Empty(t, ApplyPagination(records, interfaces.Page{Offset: 9}))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%go%", LikePattern("Go"))
	assert.Equal(t, `%100\%\_done%`, LikePattern("100%_done"))
}
