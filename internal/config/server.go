package config

import (
	"fmt"
	"os"

	"inkpress/database/postgres"
	authHandler "inkpress/internal/api/auth/handler"
	authRepository "inkpress/internal/api/auth/repository"
	authService "inkpress/internal/api/auth/service"
	postHandler "inkpress/internal/api/post/handler"
	postRepository "inkpress/internal/api/post/repository"
	postService "inkpress/internal/api/post/service"
	"inkpress/internal/middleware"
	"inkpress/pkg/bcrypt"
	"inkpress/pkg/mailer"
	"inkpress/pkg/redis"
	"inkpress/pkg/s3"
	"inkpress/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	bcryptUtils bcrypt.IBcrypt
	handlers    []handler
	redisServer redis.IRedis
	smtpMailer  mailer.ItfMailer
	s3Client    s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to postgres and applies the schema before the
// server starts taking requests.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		if err := postgres.Migrate(db); err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to run migrations: %v", err)
			}
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer mailer.ItfMailer) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Auth Domain
	authRepo := authRepository.New(s.db, s.log)
	authServices := authService.New(s.log, authRepo, s.s3Client, s.bcryptUtils, s.utils)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware)

	// Posts Domain
	postsRepo := postRepository.New(s.db, s.log)
	postsServices := postService.NewPostsService(s.log, postsRepo, s.redisServer, s.smtpMailer, s.s3Client, s.utils)
	postsHandlers := postHandler.New(s.log, s.validator, s.middleware, postsServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, postsHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status": "healthy",
		})
	})
}
