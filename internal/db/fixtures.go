package db

import (
	"context"
	"fmt"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

// CategoryFixtures provides sample category names for seeding
var CategoryFixtures = []string{"Go", "Databases", "Frontend"}

// PostFixtures provides sample posts, keyed to CategoryFixtures by index
var PostFixtures = []struct {
	Category  int
	Title     string
	Excerpt   string
	Content   string
	Published bool
}{
	{0, "Introduction to Go", "Why Go keeps things simple.", "Go is a programming language designed for simplicity and reliability...", true},
	{1, "Database Design Patterns", "Normalization, indexes and cascades.", "When designing databases, there are several patterns...", true},
	{0, "Advanced Go Techniques", "Generics, iterators and more.", "This post covers advanced Go programming techniques...", true},
	{2, "Building a Blog Frontend", "", "A single page application talks to the JSON API...", false},
}

// CommentFixtures provides sample comments, keyed to PostFixtures by index
var CommentFixtures = []struct {
	Post     int
	Author   string
	Content  string
	Approved bool
}{
	{0, "gopher", "Great introduction!", true},
	{0, "reader", "Could you cover error handling next?", false},
	{1, "dba", "Cascading deletes saved me a lot of cleanup.", true},
}

// SeedFixtures loads demo categories, posts and comments authored by authorID
func SeedFixtures(ctx context.Context, db interfaces.Database, authorID int64) error {
	categoryIDs := make([]int64, 0, len(CategoryFixtures))
	for _, name := range CategoryFixtures {
		c := &entities.Category{Name: name}
		if err := db.Categories().Create(ctx, c); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
		categoryIDs = append(categoryIDs, c.ID)
	}

	postIDs := make([]int64, 0, len(PostFixtures))
	for _, f := range PostFixtures {
		p := &entities.Post{
			Title:       f.Title,
			Content:     f.Content,
			Excerpt:     f.Excerpt,
			CategoryID:  categoryIDs[f.Category],
			AuthorID:    authorID,
			IsPublished: f.Published,
		}
		if err := db.Posts().Create(ctx, p); err != nil {
			return fmt.Errorf("seed post %q: %w", f.Title, err)
		}
		postIDs = append(postIDs, p.ID)
	}

	for _, f := range CommentFixtures {
		c := &entities.Comment{
			PostID:     postIDs[f.Post],
			AuthorName: f.Author,
			Content:    f.Content,
			IsApproved: f.Approved,
		}
		if err := db.Comments().Create(ctx, c); err != nil {
			return fmt.Errorf("seed comment by %q: %w", f.Author, err)
		}
	}

	return nil
}
