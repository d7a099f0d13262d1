package api

import (
	"time"

	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type CategoryDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type PostDetailDTO struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt"`
	Category     int64     `json:"category"`
	CategoryName string    `json:"category_name"`
	Author       int64     `json:"author"`
	AuthorName   string    `json:"author_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsPublished  bool      `json:"is_published"`
	CommentCount int64     `json:"comment_count"`
}

// PostListDTO is the collection projection of a post; it omits the content.
type PostListDTO struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	CategoryName string    `json:"category_name"`
	AuthorName   string    `json:"author_name"`
	CreatedAt    time.Time `json:"created_at"`
	CommentCount int64     `json:"comment_count"`
	IsPublished  bool      `json:"is_published"`
}

type CommentDTO struct {
	ID         int64     `json:"id"`
	Post       int64     `json:"post"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	IsApproved bool      `json:"is_approved"`
}

type UserProfileDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type HomeStatsDTO struct {
	TotalPosts      int64         `json:"total_posts"`
	TotalCategories int64         `json:"total_categories"`
	TotalComments   int64         `json:"total_comments"`
	RecentPosts     []PostListDTO `json:"recent_posts"`
}

type IndexDTO struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Auth payloads

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool            `json:"success"`
	User    *UserProfileDTO `json:"user,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}

type AuthCheckResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *UserProfileDTO `json:"user,omitempty"`
}

func toCategoryDTO(c entities.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func toCategoryDTOs(categories []entities.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryDTO(c))
	}
	return out
}

func toPostDetailDTO(p entities.PostView) PostDetailDTO {
	return PostDetailDTO{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Excerpt:      p.Excerpt,
		Category:     p.CategoryID,
		CategoryName: p.CategoryName,
		Author:       p.AuthorID,
		AuthorName:   p.AuthorName,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		IsPublished:  p.IsPublished,
		CommentCount: p.CommentCount,
	}
}

func toPostListDTOs(posts []entities.PostView) []PostListDTO {
	out := make([]PostListDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, PostListDTO{
			ID:           p.ID,
			Title:        p.Title,
			Excerpt:      p.Excerpt,
			CategoryName: p.CategoryName,
			AuthorName:   p.AuthorName,
			CreatedAt:    p.CreatedAt,
			CommentCount: p.CommentCount,
			IsPublished:  p.IsPublished,
		})
	}
	return out
}

func toCommentDTO(c entities.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID,
		Post:       c.PostID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		IsApproved: c.IsApproved,
	}
}

func toCommentDTOs(comments []entities.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentDTO(c))
	}
	return out
}

func toUserProfileDTO(u *entities.User) *UserProfileDTO {
	return &UserProfileDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func toHomeStatsDTO(s *blog.Stats) HomeStatsDTO {
	return HomeStatsDTO{
		TotalPosts:      s.TotalPosts,
		TotalCategories: s.TotalCategories,
		TotalComments:   s.TotalComments,
		RecentPosts:     toPostListDTOs(s.RecentPosts),
	}
}
