package blog

import (
	"context"
	"fmt"

	"github.com/vdblog/vdblog-backend/internal/authz"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

func (s *Service) ListCategories(ctx context.Context, v Viewer, page interfaces.Page) ([]entities.Category, int64, error) {
	if err := s.authorize(v, authz.ObjCategories, authz.ActList); err != nil {
		return nil, 0, err
	}
	categories, total, err := s.db.Categories().List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return categories, total, nil
}

func (s *Service) GetCategory(ctx context.Context, v Viewer, id int64) (*entities.Category, error) {
	if err := s.authorize(v, authz.ObjCategories, authz.ActRetrieve); err != nil {
		return nil, err
	}
	c, err := s.db.Categories().Get(ctx, id)
	if err != nil {
		return nil, lookup("get category", err)
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, v Viewer, in CategoryInput) (*entities.Category, error) {
	if err := s.authorize(v, authz.ObjCategories, authz.ActCreate); err != nil {
		return nil, err
	}
	in.normalize()
	if fields := check(in, false); fields != nil {
		return nil, invalid(fields)
	}

	c := &entities.Category{}
	in.apply(c)
	if err := s.db.Categories().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Infow("Category created", "category_id", c.ID, "name", c.Name, "user_id", v.UserID)
	return c, nil
}

// UpdateCategory replaces the category fields, or only the present ones when partial is set.
func (s *Service) UpdateCategory(ctx context.Context, v Viewer, id int64, in CategoryInput, partial bool) (*entities.Category, error) {
	if err := s.authorize(v, authz.ObjCategories, updateAction(partial)); err != nil {
		return nil, err
	}
	c, err := s.db.Categories().Get(ctx, id)
	if err != nil {
		return nil, lookup("get category", err)
	}

	in.normalize()
	if fields := check(in, partial); fields != nil {
		return nil, invalid(fields)
	}
	in.apply(c)
	if err := s.db.Categories().Update(ctx, c); err != nil {
		return nil, lookup("update category", err)
	}
	return c, nil
}

// DeleteCategory removes the category together with its posts and their comments.
func (s *Service) DeleteCategory(ctx context.Context, v Viewer, id int64) error {
	if err := s.authorize(v, authz.ObjCategories, authz.ActDestroy); err != nil {
		return err
	}
	if err := s.db.Categories().Delete(ctx, id); err != nil {
		return lookup("delete category", err)
	}
	s.logger.Infow("Category deleted", "category_id", id, "user_id", v.UserID)
	return nil
}
