package postHandler

import (
	"errors"
	"time"

	posts "inkpress/internal/api/post"
	contextPkg "inkpress/pkg/context"
	"inkpress/pkg/handlerUtil"
	jwtPkg "inkpress/pkg/jwt"
	"inkpress/pkg/log"
	"inkpress/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *PostsHandler) ListPosts(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing list posts request")

	query := posts.ListPostsQuery{
		Page:     ctx.QueryInt("page"),
		Limit:    ctx.QueryInt("limit"),
		Category: ctx.Query("category"),
		Tag:      ctx.Query("tag"),
		Search:   ctx.Query("search"),
	}

	if err := h.validator.Struct(query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.postsService.ListPublishedPosts(c, query)
	if err != nil {
		var respErr *response.Error
		if errors.As(err, &respErr) {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_posts")
		}

		// A store failure on this public read serves the empty page
		// shape; the error goes to the logs only.
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       ctx.Path(),
		}).Error("Failed to list posts, serving empty result")

		empty := &posts.PostListResponse{Posts: []posts.PostResponse{}}
		return errHandler.HandleSuccessList(ctx, fiber.StatusOK, empty, 0)
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccessList(ctx, fiber.StatusOK, result, len(result.Posts))
	}
}

func (h *PostsHandler) GetPostBySlug(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get post by slug request")

	postSlug := ctx.Params("slug")
	if postSlug == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("post slug is required"), ctx.Path())
	}

	result, err := h.postsService.GetPublishedPostBySlug(c, postSlug)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_post_by_slug")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *PostsHandler) CreatePost(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create post request")

	var req posts.CreatePostRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.postsService.CreatePost(c, req, userData)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_post")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, result)
	}
}

func (h *PostsHandler) UpdatePost(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing update post request")

	postSlug := ctx.Params("slug")
	if postSlug == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("post slug is required"), ctx.Path())
	}

	var req posts.UpdatePostRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.postsService.UpdatePost(c, postSlug, req, userData)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_post")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *PostsHandler) DeletePost(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing delete post request")

	postSlug := ctx.Params("slug")
	if postSlug == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("post slug is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.postsService.DeletePost(c, postSlug, userData); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_post")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Post deleted successfully",
		})
	}
}

func (h *PostsHandler) ListMyPosts(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing list my posts request")

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	query := posts.ListPostsQuery{
		Page:   ctx.QueryInt("page"),
		Limit:  ctx.QueryInt("limit"),
		Search: ctx.Query("search"),
		Status: ctx.Query("status"),
	}

	if err := h.validator.Struct(query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.postsService.ListMyPosts(c, userData, query)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_my_posts")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccessList(ctx, fiber.StatusOK, result, len(result.Posts))
	}
}

func (h *PostsHandler) UploadImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing upload image request")

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("image file is required"), ctx.Path())
	}

	result, err := h.postsService.UploadImage(c, file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, result)
	}
}
