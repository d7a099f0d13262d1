package blog

import (
	"context"
	"fmt"

	"github.com/vdblog/vdblog-backend/internal/authz"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

const (
	RecentPostsLimit   = 5
	FeaturedPostsLimit = 3
)

// Stats summarizes the public content of the blog.
type Stats struct {
	TotalPosts      int64
	TotalCategories int64
	TotalComments   int64
	RecentPosts     []entities.PostView
}

// HomeStats counts published posts, categories and approved comments and
// returns the latest published posts. Counts ignore the caller's privileges,
// so concurrent callers share one computation. The result must not be mutated.
func (s *Service) HomeStats(ctx context.Context, v Viewer) (*Stats, error) {
	if err := s.authorize(v, authz.ObjHome, authz.ActList); err != nil {
		return nil, err
	}
	stats, err, _ := s.stats.DoContext(ctx, "home", func() (*Stats, error) {
		return s.computeStats(context.WithoutCancel(ctx))
	})
	return stats, err
}

func (s *Service) computeStats(ctx context.Context) (*Stats, error) {
	posts, err := s.db.Posts().Count(ctx, interfaces.PostQuery{PublishedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	categories, err := s.db.Categories().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	comments, err := s.db.Comments().Count(ctx, interfaces.CommentQuery{ApprovedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	recent, err := s.latestPublished(ctx, RecentPostsLimit)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalPosts:      posts,
		TotalCategories: categories,
		TotalComments:   comments,
		RecentPosts:     recent,
	}, nil
}

// Featured returns the most recently created published posts.
func (s *Service) Featured(ctx context.Context, v Viewer) ([]entities.PostView, error) {
	if err := s.authorize(v, authz.ObjHome, authz.ActList); err != nil {
		return nil, err
	}
	return s.latestPublished(ctx, FeaturedPostsLimit)
}

func (s *Service) latestPublished(ctx context.Context, n int) ([]entities.PostView, error) {
	posts, _, err := s.db.Posts().List(ctx, interfaces.PostQuery{
		PublishedOnly: true,
		Page:          interfaces.Page{Limit: n},
	})
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return posts, nil
}
