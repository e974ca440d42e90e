package handlerUtil

import (
	"errors"

	"inkpress/internal/api/auth"
	posts "inkpress/internal/api/post"
	"inkpress/pkg/log"
	"inkpress/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle maps a service error to its HTTP reply. Domain errors carry their
// own status code; anything unrecognized becomes an opaque 500.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	// Auth domain errors
	if errors.Is(err, auth.ErrInvalidEmailOrPassword) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"path":       path,
			"operation":  operation,
		}).Warn("Invalid email or password")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid email or password",
		})
	}

	if errors.Is(err, auth.ErrEmailAlreadyExists) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"path":       path,
			"operation":  operation,
		}).Warn("Email already registered")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "email already registered",
		})
	}

	if errors.Is(err, auth.ErrUserNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"path":       path,
			"operation":  operation,
		}).Warn("User not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "user not found",
		})
	}

	// Post domain errors
	if errors.Is(err, posts.ErrPostNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"path":       path,
			"operation":  operation,
		}).Warn("Post not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "post not found",
		})
	}

	if errors.Is(err, posts.ErrCommentNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"path":       path,
			"operation":  operation,
		}).Warn("Comment not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "comment not found",
		})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Validation failed: " + err.Error(),
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.Status(statusCode).JSON(fiber.Map{
			"success": true,
		})
	}
	return c.Status(statusCode).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// HandleSuccessList is HandleSuccess for collection endpoints, which also
// report how many items the data carries.
func (h *ErrorHandler) HandleSuccessList(c *fiber.Ctx, statusCode int, data interface{}, count int) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   count,
	})
}
