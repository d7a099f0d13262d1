package query

import (
	"slices"
	"strings"
	"time"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

// MatchesPost checks if a post satisfies the query filters
func MatchesPost(p entities.Post, q interfaces.PostQuery) bool {
	if q.PublishedOnly && !p.IsPublished {
		return false
	}
	if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
		return false
	}
	if q.Search != "" && !ContainsFold(p.Title, q.Search) {
		return false
	}
	return true
}

// MatchesComment checks if a comment satisfies the query filters
func MatchesComment(c entities.Comment, q interfaces.CommentQuery) bool {
	if q.ApprovedOnly && !c.IsApproved {
		return false
	}
	if q.PostID != nil && c.PostID != *q.PostID {
		return false
	}
	return true
}

// ContainsFold is a case-insensitive strings.Contains.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// SortNewestFirst orders records by creation time descending, then by ID descending
// so records created in the same instant keep a stable order.
func SortNewestFirst[T any](records []T, createdAt func(T) time.Time, id func(T) int64) {
	slices.SortStableFunc(records, func(a, b T) int {
		if c := createdAt(b).Compare(createdAt(a)); c != 0 {
			return c
		}
		switch ia, ib := id(a), id(b); {
		case ia > ib:
			return -1
		case ia < ib:
			return 1
		}
		return 0
	})
}

// ApplyPagination applies limit and offset to the records
func ApplyPagination[T any](records []T, page interfaces.Page) []T {
	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(records) {
		return []T{}
	}

	end := len(records)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}

	return records[start:end]
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern builds a LIKE pattern matching term anywhere in the value.
// Wildcards inside term are escaped with a backslash; use ESCAPE '\'.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
