package posts

import (
	"net/http"

	"inkpress/pkg/response"
)

var (
	ErrPostNotFound     = response.NewError(http.StatusNotFound, "post not found")
	ErrCategoryNotFound = response.NewError(http.StatusNotFound, "category not found")
	ErrTagNotFound      = response.NewError(http.StatusNotFound, "tag not found")

	// ErrCommentNotFound covers both a genuinely missing comment and a
	// comment the caller may not touch. Collapsing the two keeps the
	// endpoint from leaking which comment ids exist.
	ErrCommentNotFound = response.NewError(http.StatusNotFound, "comment not found")

	ErrNotPostOwner = response.NewError(http.StatusUnauthorized, "unauthorized")

	ErrEmptyTitle        = response.NewError(http.StatusBadRequest, "title must contain at least one letter or digit")
	ErrEmptyName         = response.NewError(http.StatusBadRequest, "name must contain at least one letter or digit")
	ErrCategoryNameTaken = response.NewError(http.StatusBadRequest, "category name already taken")
	ErrTagNameTaken      = response.NewError(http.StatusBadRequest, "tag name already taken")

	ErrInvalidFileType    = response.NewError(http.StatusBadRequest, "invalid file type")
	ErrFailedToUploadFile = response.NewError(http.StatusInternalServerError, "failed to upload file")
)
