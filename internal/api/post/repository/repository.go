package postRepository

import (
	"inkpress/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Posts:      &postsRepository{q: sqlExecutor, log: r.log},
		Categories: &categoriesRepository{q: sqlExecutor, log: r.log},
		Tags:       &tagsRepository{q: sqlExecutor, log: r.log},
		Comments:   &commentsRepository{q: sqlExecutor, log: r.log},
		Commit:     commitFunc,
		Rollback:   rollbackFunc,
	}, nil
}

type Client struct {
	Posts interface {
		CreatePost(ctx context.Context, post entity.Post) error
		GetPostByID(ctx context.Context, id string) (entity.Post, error)
		GetPostBySlug(ctx context.Context, slug string) (entity.Post, error)
		ListPosts(ctx context.Context, filter entity.PostFilter) ([]entity.Post, int, error)
		SlugExists(ctx context.Context, slug string, excludeID string) (bool, error)
		UpdatePost(ctx context.Context, post entity.Post) error
		DeletePost(ctx context.Context, id string) error
	}

	Categories interface {
		CreateCategory(ctx context.Context, category entity.Category) error
		GetCategoryByID(ctx context.Context, id string) (entity.Category, error)
		GetCategoryBySlug(ctx context.Context, slug string) (entity.Category, error)
		GetAllCategories(ctx context.Context) ([]entity.Category, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		UpdateCategory(ctx context.Context, category entity.Category) error
		DetachCategoryFromPosts(ctx context.Context, categoryID string) error
		DeleteCategory(ctx context.Context, id string) error
	}

	Tags interface {
		CreateTag(ctx context.Context, tag entity.Tag) error
		GetTagBySlug(ctx context.Context, slug string) (entity.Tag, error)
		GetAllTags(ctx context.Context) ([]entity.Tag, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		ListTagsByPostID(ctx context.Context, postID string) ([]entity.Tag, error)
		ListTagsForPosts(ctx context.Context, postIDs []string) (map[string][]entity.Tag, error)
		ReplacePostTags(ctx context.Context, postID string, tagIDs []string) error
		DeletePostTagsByTagID(ctx context.Context, tagID string) error
		DeleteTag(ctx context.Context, id string) error
	}

	Comments interface {
		CreateComment(ctx context.Context, comment entity.Comment) error
		GetCommentByID(ctx context.Context, id string) (entity.Comment, error)
		ListCommentsByPostID(ctx context.Context, postID string) ([]entity.Comment, error)
		DeleteComment(ctx context.Context, id string) error
		DeleteCommentsByPostID(ctx context.Context, postID string) error
	}

	Commit   func() error
	Rollback func() error
}

type postsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type categoriesRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type tagsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type commentsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
