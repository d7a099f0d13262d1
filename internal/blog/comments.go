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

// CommentFilter narrows a comment listing.
type CommentFilter struct {
	PostID *int64
	interfaces.Page
}

// ListComments returns the comments visible to v, newest first, and the unpaginated total.
func (s *Service) ListComments(ctx context.Context, v Viewer, f CommentFilter) ([]entities.Comment, int64, error) {
	if err := s.authorize(v, authz.ObjComments, authz.ActList); err != nil {
		return nil, 0, err
	}
	all, err := s.can(v, authz.ObjComments, authz.ActViewUnapproved)
	if err != nil {
		return nil, 0, err
	}

	comments, total, err := s.db.Comments().List(ctx, interfaces.CommentQuery{
		PostID:       f.PostID,
		ApprovedOnly: !all,
		Page:         f.Page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}

func (s *Service) visibleComment(ctx context.Context, v Viewer, id int64) (*entities.Comment, error) {
	c, err := s.db.Comments().Get(ctx, id)
	if err != nil {
		return nil, lookup("get comment", err)
	}
	if c.IsApproved {
		return c, nil
	}
	all, err := s.can(v, authz.ObjComments, authz.ActViewUnapproved)
	if err != nil {
		return nil, err
	}
	if !all {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) GetComment(ctx context.Context, v Viewer, id int64) (*entities.Comment, error) {
	if err := s.authorize(v, authz.ObjComments, authz.ActRetrieve); err != nil {
		return nil, err
	}
	return s.visibleComment(ctx, v, id)
}

// CreateComment submits an unapproved comment on the post named by in.Post,
// which must be visible to v.
func (s *Service) CreateComment(ctx context.Context, v Viewer, in CommentInput) (*entities.Comment, error) {
	if err := s.authorize(v, authz.ObjComments, authz.ActCreate); err != nil {
		return nil, err
	}

	in.normalize()
	fields := validation.Struct(in)
	if fields == nil {
		fields = validation.FieldErrors{}
	}
	if in.Post == nil {
		fields.Add("post", "This field is required.")
	} else {
		_, err := s.visiblePost(ctx, v, *in.Post)
		switch {
		case errors.Is(err, ErrNotFound):
			fields.Add("post", invalidPK(*in.Post))
		case err != nil:
			return nil, err
		}
	}
	if len(fields) > 0 {
		return nil, invalid(fields)
	}

	return s.insertComment(ctx, *in.Post, in)
}

func (s *Service) insertComment(ctx context.Context, postID int64, in CommentInput) (*entities.Comment, error) {
	c := &entities.Comment{
		PostID:     postID,
		AuthorName: *in.AuthorName,
		Content:    *in.Content,
		IsApproved: false,
	}
	if err := s.db.Comments().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.metrics.RecordCommentCreated(ctx)
	s.logger.Infow("Comment submitted", "comment_id", c.ID, "post_id", postID, "author_name", c.AuthorName)
	return c, nil
}

// UpdateComment changes the text of a visible comment.
func (s *Service) UpdateComment(ctx context.Context, v Viewer, id int64, in CommentUpdateInput, partial bool) (*entities.Comment, error) {
	if err := s.authorize(v, authz.ObjComments, updateAction(partial)); err != nil {
		return nil, err
	}
	c, err := s.visibleComment(ctx, v, id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	if fields := check(in, partial); fields != nil {
		return nil, invalid(fields)
	}
	if in.Content != nil {
		c.Content = *in.Content
	}
	if err := s.db.Comments().Update(ctx, c); err != nil {
		return nil, lookup("update comment", err)
	}
	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, v Viewer, id int64) error {
	if err := s.authorize(v, authz.ObjComments, authz.ActDestroy); err != nil {
		return err
	}
	if _, err := s.visibleComment(ctx, v, id); err != nil {
		return err
	}
	if err := s.db.Comments().Delete(ctx, id); err != nil {
		return lookup("delete comment", err)
	}
	s.logger.Infow("Comment deleted", "comment_id", id, "user_id", v.UserID)
	return nil
}

// SetApproval approves or withdraws approval of a comment.
func (s *Service) SetApproval(ctx context.Context, v Viewer, id int64, approved bool) (*entities.Comment, error) {
	if err := s.authorize(v, authz.ObjComments, authz.ActApprove); err != nil {
		return nil, err
	}
	c, err := s.db.Comments().Get(ctx, id)
	if err != nil {
		return nil, lookup("get comment", err)
	}

	c.IsApproved = approved
	if err := s.db.Comments().Update(ctx, c); err != nil {
		return nil, lookup("update comment", err)
	}
	s.metrics.RecordModeration(ctx, approved)
	s.logger.Infow("Comment moderated", "comment_id", id, "approved", approved, "user_id", v.UserID)
	return c, nil
}
