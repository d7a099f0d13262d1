package entities

import "time"

// Comment is an anonymous reader comment. New comments start unapproved.
type Comment struct {
	ID         int64     `json:"id" db:"id"`
	PostID     int64     `json:"post_id" db:"post_id"`
	AuthorName string    `json:"author_name" db:"author_name"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	IsApproved bool      `json:"is_approved" db:"is_approved"`
}

// CommentSchema defines the database schema for comments
var CommentSchema = &Schema{
	TableName: "comments",
	Fields: map[string]FieldSchema{
		"id": {Type: "int64", PrimaryKey: true},
		"post_id": {
			Type: "int64",
			ForeignKey: &ForeignKey{
				Table:    "posts",
				Column:   "id",
				OnDelete: "CASCADE",
			},
		},
		"author_name": {Type: "string", MaxLength: 100},
		"content":     {Type: "text"},
		"created_at":  {Type: "time"},
		"is_approved": {Type: "bool"},
	},
	Indexes: []Index{
		{Name: "idx_comments_post", Columns: []string{"post_id"}},
		{Name: "idx_comments_created_at", Columns: []string{"created_at"}},
	},
}
