package entities

import "time"

// Post represents a blog article
type Post struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"`
	Excerpt     string    `json:"excerpt" db:"excerpt"`
	CategoryID  int64     `json:"category_id" db:"category_id"`
	AuthorID    int64     `json:"author_id" db:"author_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	IsPublished bool      `json:"is_published" db:"is_published"`
}

// PostView is a Post joined with the values computed from its relations.
// CommentCount only counts approved comments.
type PostView struct {
	Post
	CategoryName string `json:"category_name"`
	AuthorName   string `json:"author_name"`
	CommentCount int64  `json:"comment_count"`
}

// PostSchema defines the database schema for posts
var PostSchema = &Schema{
	TableName: "posts",
	Fields: map[string]FieldSchema{
		"id":      {Type: "int64", PrimaryKey: true},
		"title":   {Type: "string", MaxLength: 200},
		"content": {Type: "text"},
		"excerpt": {Type: "string", MaxLength: 300},
		"category_id": {
			Type: "int64",
			ForeignKey: &ForeignKey{
				Table:    "categories",
				Column:   "id",
				OnDelete: "CASCADE",
			},
		},
		"author_id": {
			Type: "int64",
			ForeignKey: &ForeignKey{
				Table:    "users",
				Column:   "id",
				OnDelete: "CASCADE",
			},
		},
		"created_at":   {Type: "time"},
		"updated_at":   {Type: "time"},
		"is_published": {Type: "bool"},
	},
	Indexes: []Index{
		{Name: "idx_posts_created_at", Columns: []string{"created_at"}},
		{Name: "idx_posts_category", Columns: []string{"category_id"}},
		{Name: "idx_posts_author", Columns: []string{"author_id"}},
	},
}
