package auth

import (
	"net/http"

	"inkpress/pkg/response"
)

var (
	ErrEmailAlreadyExists     = response.NewError(http.StatusBadRequest, "email already registered")
	ErrInvalidEmailOrPassword = response.NewError(http.StatusUnauthorized, "invalid email or password")
	ErrUserNotFound           = response.NewError(http.StatusNotFound, "user not found")
	ErrInvalidRole            = response.NewError(http.StatusBadRequest, "invalid role")
	ErrInvalidFileType        = response.NewError(http.StatusBadRequest, "invalid file type")
	ErrFileTooLarge           = response.NewError(http.StatusBadRequest, "file too large")
	ErrFailedToUploadFile     = response.NewError(http.StatusInternalServerError, "failed to upload file")
)
