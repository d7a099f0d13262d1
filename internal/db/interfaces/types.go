package interfaces

import (
	"errors"
)

// Page limits a listing. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// PostQuery filters a post listing. Results are always ordered newest first.
type PostQuery struct {
	// Search is a case-insensitive substring match on the title.
	Search        string
	CategoryID    *int64
	PublishedOnly bool
	Page
}

// CommentQuery filters a comment listing. Results are always ordered newest first.
type CommentQuery struct {
	PostID       *int64
	ApprovedOnly bool
	Page
}

// Common database errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrUniqueConstraint     = errors.New("unique constraint violation")
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")
	ErrDatabaseNotConnected = errors.New("database not connected")
)

// DatabaseError wraps database-specific errors
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}
