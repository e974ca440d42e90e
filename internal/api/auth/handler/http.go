package authHandler

import (
	authService "inkpress/internal/api/auth/service"
	"inkpress/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	log         *logrus.Logger
	authService authService.IAuthService
	validator   *validator.Validate
	middleware  middleware.Middleware
}

func New(
	log *logrus.Logger,
	as authService.IAuthService,
	validate *validator.Validate,
	middleware middleware.Middleware,
) *AuthHandler {
	return &AuthHandler{
		log:         log,
		authService: as,
		validator:   validate,
		middleware:  middleware,
	}
}

func (h *AuthHandler) Start(srv fiber.Router) {
	auth := srv.Group("/auth")

	auth.Post("/register", h.middleware.NewRateLimiter, h.HandleRegister)
	auth.Post("/login", h.middleware.NewRateLimiter, h.HandleLogin)

	auth.Get("/me", h.middleware.NewTokenMiddleware, h.HandleGetProfile)
	auth.Patch("/me", h.middleware.NewTokenMiddleware, h.HandleUpdateProfile)
	auth.Post("/me/avatar", h.middleware.NewTokenMiddleware, h.HandleUpdateAvatar)
}
