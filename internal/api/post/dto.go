package posts

import "time"

type CreatePostRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Content       string   `json:"content" validate:"required"`
	Excerpt       string   `json:"excerpt" validate:"omitempty,max=500"`
	CategoryID    string   `json:"category_id" validate:"omitempty,len=26"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags          []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50"`
	FeaturedImage string   `json:"featured_image" validate:"omitempty,url"`
}

type UpdatePostRequest struct {
	Title         string   `json:"title" validate:"omitempty,max=255"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt" validate:"omitempty,max=500"`
	CategoryID    string   `json:"category_id" validate:"omitempty,len=26"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags          []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50"`
	FeaturedImage string   `json:"featured_image" validate:"omitempty,url"`
}

type ListPostsQuery struct {
	Page     int    `validate:"omitempty,min=1"`
	Limit    int    `validate:"omitempty,min=1,max=100"`
	Category string `validate:"omitempty,max=255"`
	Tag      string `validate:"omitempty,max=255"`
	Search   string `validate:"omitempty,max=255"`
	Status   string `validate:"omitempty,oneof=draft published"`
}

type AuthorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type PostResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Content       string            `json:"content"`
	Excerpt       string            `json:"excerpt,omitempty"`
	FeaturedImage string            `json:"featured_image,omitempty"`
	Status        string            `json:"status"`
	PublishedAt   *time.Time        `json:"published_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Author        AuthorResponse    `json:"author"`
	Category      *CategoryResponse `json:"category,omitempty"`
	Tags          []TagResponse     `json:"tags"`
}

type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type CommentResponse struct {
	ID        string         `json:"id"`
	PostID    string         `json:"post_id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	Author    AuthorResponse `json:"author"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
