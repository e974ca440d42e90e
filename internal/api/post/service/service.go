package postService

import (
	"context"
	"mime/multipart"

	posts "inkpress/internal/api/post"
	postRepository "inkpress/internal/api/post/repository"
	"inkpress/internal/entity"
	"inkpress/pkg/mailer"
	"inkpress/pkg/redis"
	"inkpress/pkg/s3"
	"inkpress/pkg/slug"
	"inkpress/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IPostsService interface {
	CreatePost(ctx context.Context, req posts.CreatePostRequest, author entity.UserLoginData) (posts.PostResponse, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (posts.PostResponse, error)
	ListPublishedPosts(ctx context.Context, query posts.ListPostsQuery) (*posts.PostListResponse, error)
	ListMyPosts(ctx context.Context, author entity.UserLoginData, query posts.ListPostsQuery) (*posts.PostListResponse, error)
	UpdatePost(ctx context.Context, postSlug string, req posts.UpdatePostRequest, user entity.UserLoginData) (posts.PostResponse, error)
	DeletePost(ctx context.Context, postSlug string, user entity.UserLoginData) error

	ListComments(ctx context.Context, postSlug string) ([]posts.CommentResponse, error)
	CreateComment(ctx context.Context, postSlug string, req posts.CreateCommentRequest, user entity.UserLoginData) (posts.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID string, user entity.UserLoginData) error

	GetAllCategories(ctx context.Context) ([]posts.CategoryResponse, error)
	CreateCategory(ctx context.Context, req posts.CreateCategoryRequest) (posts.CategoryResponse, error)
	UpdateCategory(ctx context.Context, categorySlug string, req posts.UpdateCategoryRequest) (posts.CategoryResponse, error)
	DeleteCategory(ctx context.Context, categorySlug string) error

	GetAllTags(ctx context.Context) ([]posts.TagResponse, error)
	CreateTag(ctx context.Context, req posts.CreateTagRequest) (posts.TagResponse, error)
	DeleteTag(ctx context.Context, tagSlug string) error

	UploadImage(ctx context.Context, file *multipart.FileHeader) (posts.UploadResponse, error)
}

type postsService struct {
	log       *logrus.Logger
	postsRepo postRepository.Repository
	cache     redis.IRedis
	mail      mailer.ItfMailer
	s3Client  s3.ItfS3
	utils     utils.IUtils
	slugGen   slug.Generator
}

func NewPostsService(
	log *logrus.Logger,
	postsRepo postRepository.Repository,
	cache redis.IRedis,
	mail mailer.ItfMailer,
	s3Client s3.ItfS3,
	utils utils.IUtils,
) IPostsService {
	return &postsService{
		log:       log,
		postsRepo: postsRepo,
		cache:     cache,
		mail:      mail,
		s3Client:  s3Client,
		utils:     utils,
		slugGen:   slug.Generator{},
	}
}
