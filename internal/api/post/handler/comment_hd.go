package postHandler

import (
	"errors"
	"time"

	posts "inkpress/internal/api/post"
	contextPkg "inkpress/pkg/context"
	"inkpress/pkg/handlerUtil"
	jwtPkg "inkpress/pkg/jwt"
	"inkpress/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *PostsHandler) ListComments(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing list comments request")

	postSlug := ctx.Params("slug")
	if postSlug == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("post slug is required"), ctx.Path())
	}

	result, err := h.postsService.ListComments(c, postSlug)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_comments")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccessList(ctx, fiber.StatusOK, result, len(result))
	}
}

func (h *PostsHandler) CreateComment(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create comment request")

	postSlug := ctx.Params("slug")
	if postSlug == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("post slug is required"), ctx.Path())
	}

	var req posts.CreateCommentRequest
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

	result, err := h.postsService.CreateComment(c, postSlug, req, userData)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_comment")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, result)
	}
}

func (h *PostsHandler) DeleteComment(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing delete comment request")

	commentID := ctx.Params("id")
	if commentID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("comment ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.postsService.DeleteComment(c, commentID, userData); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_comment")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Comment deleted successfully",
		})
	}
}
