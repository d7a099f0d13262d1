package interfaces

import (
	"context"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
)

// CategoryRepository provides CRUD operations for categories.
type CategoryRepository interface {
	List(ctx context.Context, page Page) ([]entities.Category, int64, error)
	Get(ctx context.Context, id int64) (*entities.Category, error)
	// Create assigns ID and CreatedAt.
	Create(ctx context.Context, c *entities.Category) error
	Update(ctx context.Context, c *entities.Category) error
	// Delete removes the category with its posts and their comments in one unit of work.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// PostRepository provides CRUD operations for posts. Reads return PostView.
type PostRepository interface {
	List(ctx context.Context, q PostQuery) ([]entities.PostView, int64, error)
	Get(ctx context.Context, id int64) (*entities.PostView, error)
	// Create assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, p *entities.Post) error
	// Update persists every writable field and refreshes UpdatedAt.
	Update(ctx context.Context, p *entities.Post) error
	// Delete removes the post and its comments in one unit of work.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, q PostQuery) (int64, error)
}

// CommentRepository provides CRUD operations for comments.
type CommentRepository interface {
	List(ctx context.Context, q CommentQuery) ([]entities.Comment, int64, error)
	Get(ctx context.Context, id int64) (*entities.Comment, error)
	// Create assigns ID and CreatedAt.
	Create(ctx context.Context, c *entities.Comment) error
	Update(ctx context.Context, c *entities.Comment) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, q CommentQuery) (int64, error)
}

// UserRepository provides access to the account store.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	// Create assigns ID and DateJoined when unset.
	Create(ctx context.Context, u *entities.User) error
	// Delete removes the user and every post they authored.
	Delete(ctx context.Context, id int64) error
}
