package postHandler

import (
	postService "inkpress/internal/api/post/service"
	"inkpress/internal/entity"
	"inkpress/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type PostsHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	postsService postService.IPostsService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	postsService postService.IPostsService,
) *PostsHandler {
	return &PostsHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		postsService: postsService,
	}
}

func (h *PostsHandler) Start(srv fiber.Router) {
	postGroup := srv.Group("/posts")

	postGroup.Get("/", h.ListPosts)
	postGroup.Post("/", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin, entity.RoleAuthor), h.CreatePost)
	postGroup.Get("/:slug", h.GetPostBySlug)
	postGroup.Put("/:slug", h.middleware.NewTokenMiddleware, h.UpdatePost)
	postGroup.Delete("/:slug", h.middleware.NewTokenMiddleware, h.DeletePost)

	postGroup.Get("/:slug/comments", h.ListComments)
	postGroup.Post("/:slug/comments", h.middleware.NewTokenMiddleware, h.CreateComment)

	srv.Get("/me/posts", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin, entity.RoleAuthor), h.ListMyPosts)

	srv.Delete("/comments/:id", h.middleware.NewTokenMiddleware, h.DeleteComment)

	categoryGroup := srv.Group("/categories")
	categoryGroup.Get("/", h.GetAllCategories)
	categoryGroup.Post("/", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin), h.CreateCategory)
	categoryGroup.Put("/:slug", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin), h.UpdateCategory)
	categoryGroup.Delete("/:slug", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin), h.DeleteCategory)

	tagGroup := srv.Group("/tags")
	tagGroup.Get("/", h.GetAllTags)
	tagGroup.Post("/", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin, entity.RoleAuthor), h.CreateTag)
	tagGroup.Delete("/:slug", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin), h.DeleteTag)

	srv.Post("/uploads", h.middleware.NewTokenMiddleware, h.middleware.RequireRoles(entity.RoleAdmin, entity.RoleAuthor), h.UploadImage)
}
