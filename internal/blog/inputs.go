package blog

import (
	"strings"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
)

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name *string `json:"name" validate:"required,notblank,max=100"`
}

func (in *CategoryInput) normalize() {
	trim(in.Name)
}

func (in CategoryInput) apply(c *entities.Category) {
	if in.Name != nil {
		c.Name = *in.Name
	}
}

// PostInput is the writable part of a post. Author and timestamps are never
// taken from a client.
type PostInput struct {
	Title       *string `json:"title" validate:"required,notblank,max=200"`
	Content     *string `json:"content" validate:"required,notblank"`
	Excerpt     *string `json:"excerpt" validate:"omitempty,max=300"`
	Category    *int64  `json:"category" validate:"required"`
	IsPublished *bool   `json:"is_published"`
}

func (in *PostInput) normalize() {
	trim(in.Title)
	trim(in.Content)
	trim(in.Excerpt)
}

func (in PostInput) apply(p *entities.Post) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.Category != nil {
		p.CategoryID = *in.Category
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
}

// CommentInput is a comment submission. Approval can not be requested.
type CommentInput struct {
	Post       *int64  `json:"post"`
	AuthorName *string `json:"author_name" validate:"required,notblank,max=100"`
	Content    *string `json:"content" validate:"required,notblank"`
}

func (in *CommentInput) normalize() {
	trim(in.AuthorName)
	trim(in.Content)
}

// CommentBody is a comment submitted on a post named by the caller's route.
// It carries no post reference of its own.
type CommentBody struct {
	AuthorName *string `json:"author_name"`
	Content    *string `json:"content"`
}

func (b CommentBody) on(postID int64) CommentInput {
	return CommentInput{Post: &postID, AuthorName: b.AuthorName, Content: b.Content}
}

// CommentUpdateInput edits the text of an existing comment.
type CommentUpdateInput struct {
	Content *string `json:"content" validate:"required,notblank"`
}

func (in *CommentUpdateInput) normalize() {
	trim(in.Content)
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
