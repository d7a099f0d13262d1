package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/vdblog/vdblog-backend/internal/authz"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/validation"
)

// PostFilter narrows a post listing. Filters combine with AND.
type PostFilter struct {
	Search     string
	CategoryID *int64
	interfaces.Page
}

// ListPosts returns the posts visible to v, newest first, and the unpaginated total.
func (s *Service) ListPosts(ctx context.Context, v Viewer, f PostFilter) ([]entities.PostView, int64, error) {
	if err := s.authorize(v, authz.ObjPosts, authz.ActList); err != nil {
		return nil, 0, err
	}
	all, err := s.can(v, authz.ObjPosts, authz.ActViewUnpublished)
	if err != nil {
		return nil, 0, err
	}

	posts, total, err := s.db.Posts().List(ctx, interfaces.PostQuery{
		Search:        f.Search,
		CategoryID:    f.CategoryID,
		PublishedOnly: !all,
		Page:          f.Page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// visiblePost loads a post, hiding unpublished ones from callers without
// the view_unpublished privilege.
func (s *Service) visiblePost(ctx context.Context, v Viewer, id int64) (*entities.PostView, error) {
	p, err := s.db.Posts().Get(ctx, id)
	if err != nil {
		return nil, lookup("get post", err)
	}
	if p.IsPublished {
		return p, nil
	}
	all, err := s.can(v, authz.ObjPosts, authz.ActViewUnpublished)
	if err != nil {
		return nil, err
	}
	if !all {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) GetPost(ctx context.Context, v Viewer, id int64) (*entities.PostView, error) {
	if err := s.authorize(v, authz.ObjPosts, authz.ActRetrieve); err != nil {
		return nil, err
	}
	return s.visiblePost(ctx, v, id)
}

// CreatePost stores a new post authored by v.
func (s *Service) CreatePost(ctx context.Context, v Viewer, in PostInput) (*entities.PostView, error) {
	if err := s.authorize(v, authz.ObjPosts, authz.ActCreate); err != nil {
		return nil, err
	}
	in.normalize()
	if err := s.validatePost(ctx, in, false); err != nil {
		return nil, err
	}

	p := &entities.Post{AuthorID: v.UserID}
	in.apply(p)
	if err := s.db.Posts().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.metrics.RecordPostCreated(ctx, p.IsPublished)
	s.logger.Infow("Post created", "post_id", p.ID, "author_id", p.AuthorID, "published", p.IsPublished)

	created, err := s.db.Posts().Get(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reload post %d: %w", p.ID, err)
	}
	return created, nil
}

// UpdatePost edits a visible post. A full update requires title, content and
// category; a partial one changes only the fields present in in.
func (s *Service) UpdatePost(ctx context.Context, v Viewer, id int64, in PostInput, partial bool) (*entities.PostView, error) {
	if err := s.authorize(v, authz.ObjPosts, updateAction(partial)); err != nil {
		return nil, err
	}
	current, err := s.visiblePost(ctx, v, id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validatePost(ctx, in, partial); err != nil {
		return nil, err
	}

	p := current.Post
	in.apply(&p)
	if err := s.db.Posts().Update(ctx, &p); err != nil {
		return nil, lookup("update post", err)
	}

	updated, err := s.db.Posts().Get(ctx, id)
	if err != nil {
		return nil, lookup("reload post", err)
	}
	return updated, nil
}

// DeletePost removes a visible post and its comments.
func (s *Service) DeletePost(ctx context.Context, v Viewer, id int64) error {
	if err := s.authorize(v, authz.ObjPosts, authz.ActDestroy); err != nil {
		return err
	}
	if _, err := s.visiblePost(ctx, v, id); err != nil {
		return err
	}
	if err := s.db.Posts().Delete(ctx, id); err != nil {
		return lookup("delete post", err)
	}
	s.logger.Infow("Post deleted", "post_id", id, "user_id", v.UserID)
	return nil
}

// AddComment submits an unapproved comment on a visible post. The post comes
// from postID, never from the payload.
func (s *Service) AddComment(ctx context.Context, v Viewer, postID int64, body CommentBody) (*entities.Comment, error) {
	if err := s.authorize(v, authz.ObjPosts, authz.ActAddComment); err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, v, postID); err != nil {
		return nil, err
	}

	in := body.on(postID)
	in.normalize()
	if fields := validation.Struct(in); fields != nil {
		return nil, invalid(fields)
	}
	return s.insertComment(ctx, postID, in)
}

func (s *Service) validatePost(ctx context.Context, in PostInput, partial bool) error {
	fields := check(in, partial)
	if fields == nil {
		fields = validation.FieldErrors{}
	}

	if in.Category != nil {
		_, err := s.db.Categories().Get(ctx, *in.Category)
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			fields.Add("category", invalidPK(*in.Category))
		case err != nil:
			return fmt.Errorf("get category %d: %w", *in.Category, err)
		}
	}

	if len(fields) > 0 {
		return invalid(fields)
	}
	return nil
}
