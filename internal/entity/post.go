package entity

import "time"

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Post struct {
	ID            string     `db:"id"`
	AuthorID      string     `db:"author_id"`
	Title         string     `db:"title"`
	Slug          string     `db:"slug"`
	Content       string     `db:"content"`
	Excerpt       string     `db:"excerpt"`
	FeaturedImage string     `db:"featured_image"`
	CategoryID    string     `db:"category_id"`
	Status        string     `db:"status"`
	PublishedAt   *time.Time `db:"published_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`

	// Loaded through joins, not columns of the posts table.
	Author   *User     `db:"-"`
	Category *Category `db:"-"`
	Tags     []Tag     `db:"-"`
}

type Category struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type Tag struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

type Comment struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Author *User `db:"-"`
}

// PostFilter narrows a post listing. Zero-value fields are not applied.
type PostFilter struct {
	Status     string
	AuthorID   string
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}
