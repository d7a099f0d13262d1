package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/db/query"
)

type categoryRepo struct {
	d *Database
}

func (r *categoryRepo) List(ctx context.Context, page interfaces.Page) ([]entities.Category, int64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	clause, args := r.d.dialect.limit(page)
	rows, err := r.d.query(ctx, "SELECT id, name, created_at FROM categories ORDER BY created_at DESC, id DESC"+clause, args...)
	if err != nil {
		return nil, 0, translate("list categories", err)
	}
	defer rows.Close()

	out := []entities.Category{}
	for rows.Next() {
		var c entities.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, 0, translate("list categories", err)
		}
		out = append(out, c)
	}
	return out, total, translate("list categories", rows.Err())
}

func (r *categoryRepo) Get(ctx context.Context, id int64) (*entities.Category, error) {
	row, err := r.d.queryRow(ctx, "SELECT id, name, created_at FROM categories WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	var c entities.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		return nil, translate("get category", err)
	}
	return &c, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *entities.Category) error {
	c.CreatedAt = r.d.now()
	row, err := r.d.queryRow(ctx, "INSERT INTO categories (name, created_at) VALUES (?, ?) RETURNING id", c.Name, c.CreatedAt)
	if err != nil {
		return err
	}
	return translate("create category", row.Scan(&c.ID))
}

func (r *categoryRepo) Update(ctx context.Context, c *entities.Category) error {
	row, err := r.d.queryRow(ctx, "UPDATE categories SET name = ? WHERE id = ? RETURNING created_at", c.Name, c.ID)
	if err != nil {
		return err
	}
	return translate("update category", row.Scan(&c.CreatedAt))
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	return r.d.deleteByID(ctx, "categories", id)
}

func (r *categoryRepo) Count(ctx context.Context) (int64, error) {
	row, err := r.d.queryRow(ctx, "SELECT COUNT(*) FROM categories")
	if err != nil {
		return 0, err
	}
	var n int64
	return n, translate("count categories", row.Scan(&n))
}

const postViewSelect = `SELECT p.id, p.title, p.content, p.excerpt, p.category_id, p.author_id,
	p.created_at, p.updated_at, p.is_published, c.name, u.username,
	(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.is_approved) AS comment_count
FROM posts p
JOIN categories c ON c.id = p.category_id
JOIN users u ON u.id = p.author_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanPostView(s scanner) (entities.PostView, error) {
	var v entities.PostView
	err := s.Scan(&v.ID, &v.Title, &v.Content, &v.Excerpt, &v.CategoryID, &v.AuthorID,
		&v.CreatedAt, &v.UpdatedAt, &v.IsPublished, &v.CategoryName, &v.AuthorName, &v.CommentCount)
	return v, err
}

// postWhere renders the filter part of q.
func postWhere(d Dialect, q interfaces.PostQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.PublishedOnly {
		conds = append(conds, "p.is_published")
	}
	if q.CategoryID != nil {
		conds = append(conds, "p.category_id = ?")
		args = append(args, *q.CategoryID)
	}
	if q.Search != "" {
		conds = append(conds, d.fold("p.title")+` LIKE ? ESCAPE '\'`)
		args = append(args, query.LikePattern(q.Search))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type postRepo struct {
	d *Database
}

func (r *postRepo) List(ctx context.Context, q interfaces.PostQuery) ([]entities.PostView, int64, error) {
	total, err := r.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	where, args := postWhere(r.d.dialect, q)
	clause, limitArgs := r.d.dialect.limit(q.Page)
	rows, err := r.d.query(ctx, postViewSelect+where+" ORDER BY p.created_at DESC, p.id DESC"+clause, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, translate("list posts", err)
	}
	defer rows.Close()

	out := []entities.PostView{}
	for rows.Next() {
		v, err := scanPostView(rows)
		if err != nil {
			return nil, 0, translate("list posts", err)
		}
		out = append(out, v)
	}
	return out, total, translate("list posts", rows.Err())
}

func (r *postRepo) Get(ctx context.Context, id int64) (*entities.PostView, error) {
	row, err := r.d.queryRow(ctx, postViewSelect+" WHERE p.id = ?", id)
	if err != nil {
		return nil, err
	}
	v, err := scanPostView(row)
	if err != nil {
		return nil, translate("get post", err)
	}
	return &v, nil
}

func (r *postRepo) Create(ctx context.Context, p *entities.Post) error {
	now := r.d.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	row, err := r.d.queryRow(ctx,
		`INSERT INTO posts (title, content, excerpt, category_id, author_id, created_at, updated_at, is_published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.Title, p.Content, p.Excerpt, p.CategoryID, p.AuthorID, p.CreatedAt, p.UpdatedAt, p.IsPublished)
	if err != nil {
		return err
	}
	return translate("create post", row.Scan(&p.ID))
}

func (r *postRepo) Update(ctx context.Context, p *entities.Post) error {
	p.UpdatedAt = r.d.now()
	row, err := r.d.queryRow(ctx,
		`UPDATE posts SET title = ?, content = ?, excerpt = ?, category_id = ?, is_published = ?, updated_at = ?
		WHERE id = ? RETURNING author_id, created_at`,
		p.Title, p.Content, p.Excerpt, p.CategoryID, p.IsPublished, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	return translate("update post", row.Scan(&p.AuthorID, &p.CreatedAt))
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	return r.d.deleteByID(ctx, "posts", id)
}

func (r *postRepo) Count(ctx context.Context, q interfaces.PostQuery) (int64, error) {
	where, args := postWhere(r.d.dialect, q)
	row, err := r.d.queryRow(ctx, "SELECT COUNT(*) FROM posts p"+where, args...)
	if err != nil {
		return 0, err
	}
	var n int64
	return n, translate("count posts", row.Scan(&n))
}

const commentSelect = "SELECT id, post_id, author_name, content, created_at, is_approved FROM comments"

func scanComment(s scanner) (entities.Comment, error) {
	var c entities.Comment
	err := s.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.IsApproved)
	return c, err
}

func commentWhere(q interfaces.CommentQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.ApprovedOnly {
		conds = append(conds, "is_approved")
	}
	if q.PostID != nil {
		conds = append(conds, "post_id = ?")
		args = append(args, *q.PostID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type commentRepo struct {
	d *Database
}

func (r *commentRepo) List(ctx context.Context, q interfaces.CommentQuery) ([]entities.Comment, int64, error) {
	total, err := r.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	where, args := commentWhere(q)
	clause, limitArgs := r.d.dialect.limit(q.Page)
	rows, err := r.d.query(ctx, commentSelect+where+" ORDER BY created_at DESC, id DESC"+clause, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, translate("list comments", err)
	}
	defer rows.Close()

	out := []entities.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, translate("list comments", err)
		}
		out = append(out, c)
	}
	return out, total, translate("list comments", rows.Err())
}

func (r *commentRepo) Get(ctx context.Context, id int64) (*entities.Comment, error) {
	row, err := r.d.queryRow(ctx, commentSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	c, err := scanComment(row)
	if err != nil {
		return nil, translate("get comment", err)
	}
	return &c, nil
}

func (r *commentRepo) Create(ctx context.Context, c *entities.Comment) error {
	c.CreatedAt = r.d.now()
	row, err := r.d.queryRow(ctx,
		"INSERT INTO comments (post_id, author_name, content, created_at, is_approved) VALUES (?, ?, ?, ?, ?) RETURNING id",
		c.PostID, c.AuthorName, c.Content, c.CreatedAt, c.IsApproved)
	if err != nil {
		return err
	}
	return translate("create comment", row.Scan(&c.ID))
}

func (r *commentRepo) Update(ctx context.Context, c *entities.Comment) error {
	row, err := r.d.queryRow(ctx,
		"UPDATE comments SET post_id = ?, author_name = ?, content = ?, is_approved = ? WHERE id = ? RETURNING created_at",
		c.PostID, c.AuthorName, c.Content, c.IsApproved, c.ID)
	if err != nil {
		return err
	}
	return translate("update comment", row.Scan(&c.CreatedAt))
}

func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	return r.d.deleteByID(ctx, "comments", id)
}

func (r *commentRepo) Count(ctx context.Context, q interfaces.CommentQuery) (int64, error) {
	where, args := commentWhere(q)
	row, err := r.d.queryRow(ctx, "SELECT COUNT(*) FROM comments"+where, args...)
	if err != nil {
		return 0, err
	}
	var n int64
	return n, translate("count comments", row.Scan(&n))
}

const userSelect = `SELECT id, username, email, first_name, last_name, password_hash, is_staff, is_active, date_joined FROM users`

func scanUser(row *sql.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsStaff, &u.IsActive, &u.DateJoined)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type userRepo struct {
	d *Database
}

func (r *userRepo) Get(ctx context.Context, id int64) (*entities.User, error) {
	row, err := r.d.queryRow(ctx, userSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	return u, translate("get user", err)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	row, err := r.d.queryRow(ctx, userSelect+" WHERE username = ?", username)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	return u, translate("get user by username", err)
}

func (r *userRepo) Create(ctx context.Context, u *entities.User) error {
	if u.DateJoined.IsZero() {
		u.DateJoined = r.d.now()
	}
	row, err := r.d.queryRow(ctx,
		`INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff, is_active, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff, u.IsActive, u.DateJoined)
	if err != nil {
		return err
	}
	return translate("create user", row.Scan(&u.ID))
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.d.deleteByID(ctx, "users", id)
}
