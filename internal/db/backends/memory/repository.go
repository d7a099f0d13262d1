package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/db/query"
)

func categoryCreatedAt(c entities.Category) time.Time { return c.CreatedAt }
func categoryID(c entities.Category) int64            { return c.ID }
func postCreatedAt(p entities.PostView) time.Time     { return p.CreatedAt }
func postID(p entities.PostView) int64                { return p.ID }
func commentCreatedAt(c entities.Comment) time.Time   { return c.CreatedAt }
func commentID(c entities.Comment) int64              { return c.ID }

type categoryRepo struct {
	db *Database
}

func (r *categoryRepo) List(ctx context.Context, page interfaces.Page) ([]entities.Category, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.CategorySchema.TableName)
	if err != nil {
		return nil, 0, err
	}

	records := make([]entities.Category, 0, len(t.rows))
	for _, row := range t.rows {
		records = append(records, row.(entities.Category))
	}
	query.SortNewestFirst(records, categoryCreatedAt, categoryID)

	return query.ApplyPagination(records, page), int64(len(records)), nil
}

func (r *categoryRepo) Get(ctx context.Context, id int64) (*entities.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.CategorySchema.TableName)
	if err != nil {
		return nil, err
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	c := row.(entities.Category)
	return &c, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *entities.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, err := r.db.table(entities.CategorySchema.TableName)
	if err != nil {
		return err
	}
	c.ID = t.nextID()
	c.CreatedAt = r.db.now()
	t.rows[c.ID] = *c
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, c *entities.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, err := r.db.table(entities.CategorySchema.TableName)
	if err != nil {
		return err
	}
	row, ok := t.rows[c.ID]
	if !ok {
		return interfaces.ErrNotFound
	}
	stored := row.(entities.Category)
	stored.Name = c.Name
	t.rows[c.ID] = stored
	*c = stored
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.deleteCascade(entities.CategorySchema.TableName, id)
}

func (r *categoryRepo) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.CategorySchema.TableName)
	if err != nil {
		return 0, err
	}
	return int64(len(t.rows)), nil
}

type postRepo struct {
	db *Database
}

// view joins a stored post with its category, author and approved comment count.
// Callers must hold the lock.
func (r *postRepo) view(p entities.Post) entities.PostView {
	v := entities.PostView{Post: p}
	if t, err := r.db.table(entities.CategorySchema.TableName); err == nil {
		if row, ok := t.rows[p.CategoryID]; ok {
			v.CategoryName = row.(entities.Category).Name
		}
	}
	if t, err := r.db.table(entities.UserSchema.TableName); err == nil {
		if row, ok := t.rows[p.AuthorID]; ok {
			v.AuthorName = row.(entities.User).Username
		}
	}
	if t, err := r.db.table(entities.CommentSchema.TableName); err == nil {
		for _, row := range t.rows {
			c := row.(entities.Comment)
			if c.PostID == p.ID && c.IsApproved {
				v.CommentCount++
			}
		}
	}
	return v
}

func (r *postRepo) filter(q interfaces.PostQuery) ([]entities.PostView, error) {
	t, err := r.db.table(entities.PostSchema.TableName)
	if err != nil {
		return nil, err
	}
	records := make([]entities.PostView, 0, len(t.rows))
	for _, row := range t.rows {
		p := row.(entities.Post)
		if query.MatchesPost(p, q) {
			records = append(records, r.view(p))
		}
	}
	return records, nil
}

func (r *postRepo) List(ctx context.Context, q interfaces.PostQuery) ([]entities.PostView, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	records, err := r.filter(q)
	if err != nil {
		return nil, 0, err
	}
	query.SortNewestFirst(records, postCreatedAt, postID)

	return query.ApplyPagination(records, q.Page), int64(len(records)), nil
}

func (r *postRepo) Get(ctx context.Context, id int64) (*entities.PostView, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.PostSchema.TableName)
	if err != nil {
		return nil, err
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	v := r.view(row.(entities.Post))
	return &v, nil
}

func (r *postRepo) Create(ctx context.Context, p *entities.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, err := r.db.table(entities.PostSchema.TableName)
	if err != nil {
		return err
	}
	if err := r.db.checkReferences(t.schema, *p); err != nil {
		return err
	}
	now := r.db.now()
	p.ID = t.nextID()
	p.CreatedAt = now
	p.UpdatedAt = now
	t.rows[p.ID] = *p
	return nil
}

func (r *postRepo) Update(ctx context.Context, p *entities.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, err := r.db.table(entities.PostSchema.TableName)
	if err != nil {
		return err
	}
	row, ok := t.rows[p.ID]
	if !ok {
		return interfaces.ErrNotFound
	}
	stored := row.(entities.Post)
	stored.Title = p.Title
	stored.Content = p.Content
	stored.Excerpt = p.Excerpt
	stored.CategoryID = p.CategoryID
	stored.IsPublished = p.IsPublished
	if err := r.db.checkReferences(t.schema, stored); err != nil {
		return err
	}
	stored.UpdatedAt = r.db.now()
	t.rows[p.ID] = stored
	*p = stored
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.deleteCascade(entities.PostSchema.TableName, id)
}

func (r *postRepo) Count(ctx context.Context, q interfaces.PostQuery) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.PostSchema.TableName)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, row := range t.rows {
		if query.MatchesPost(row.(entities.Post), q) {
			n++
		}
	}
	return n, nil
}

type commentRepo struct {
	db *Database
}

func (r *commentRepo) List(ctx context.Context, q interfaces.CommentQuery) ([]entities.Comment, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.CommentSchema.TableName)
	if err != nil {
		return nil, 0, err
	}
	records := make([]entities.Comment, 0, len(t.rows))
	for _, row := range t.rows {
		c := row.(entities.Comment)
		if query.MatchesComment(c, q) {
			records = append(records, c)
		}
	}
	query.SortNewestFirst(records, commentCreatedAt, commentID)

	return query.ApplyPagination(records, q.Page), int64(len(records)), nil
}

func (r *commentRepo) Get(ctx context.Context, id int64) (*entities.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.CommentSchema.TableName)
	if err != nil {
		return nil, err
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	c := row.(entities.Comment)
	return &c, nil
}

func (r *commentRepo) Create(ctx context.Context, c *entities.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, err := r.db.table(entities.CommentSchema.TableName)
	if err != nil {
		return err
	}
	if err := r.db.checkReferences(t.schema, *c); err != nil {
		return err
	}
	c.ID = t.nextID()
	c.CreatedAt = r.db.now()
	t.rows[c.ID] = *c
	return nil
}

func (r *commentRepo) Update(ctx context.Context, c *entities.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, err := r.db.table(entities.CommentSchema.TableName)
	if err != nil {
		return err
	}
	row, ok := t.rows[c.ID]
	if !ok {
		return interfaces.ErrNotFound
	}
	stored := row.(entities.Comment)
	stored.PostID = c.PostID
	stored.AuthorName = c.AuthorName
	stored.Content = c.Content
	stored.IsApproved = c.IsApproved
	if err := r.db.checkReferences(t.schema, stored); err != nil {
		return err
	}
	t.rows[c.ID] = stored
	*c = stored
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.deleteCascade(entities.CommentSchema.TableName, id)
}

func (r *commentRepo) Count(ctx context.Context, q interfaces.CommentQuery) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.CommentSchema.TableName)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, row := range t.rows {
		if query.MatchesComment(row.(entities.Comment), q) {
			n++
		}
	}
	return n, nil
}

type userRepo struct {
	db *Database
}

func (r *userRepo) Get(ctx context.Context, id int64) (*entities.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.UserSchema.TableName)
	if err != nil {
		return nil, err
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	u := row.(entities.User)
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, err := r.db.table(entities.UserSchema.TableName)
	if err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		if u := row.(entities.User); u.Username == username {
			return &u, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *userRepo) Create(ctx context.Context, u *entities.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, err := r.db.table(entities.UserSchema.TableName)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		if row.(entities.User).Username == u.Username {
			return fmt.Errorf("%w: username %q", interfaces.ErrUniqueConstraint, u.Username)
		}
	}
	u.ID = t.nextID()
	if u.DateJoined.IsZero() {
		u.DateJoined = r.db.now()
	}
	t.rows[u.ID] = *u
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.deleteCascade(entities.UserSchema.TableName, id)
}
