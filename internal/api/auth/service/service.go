package authService

import (
	"context"
	"mime/multipart"

	"inkpress/internal/api/auth"
	authRepository "inkpress/internal/api/auth/repository"
	"inkpress/pkg/bcrypt"
	"inkpress/pkg/s3"
	"inkpress/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IAuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (auth.LoginResponse, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
	GetProfile(ctx context.Context, userID string) (auth.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req auth.UpdateProfileRequest) (auth.UserResponse, error)
	UpdateAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (auth.AvatarResponse, error)
}

type authService struct {
	log         *logrus.Logger
	authRepo    authRepository.Repository
	s3Client    s3.ItfS3
	bcryptUtils bcrypt.IBcrypt
	utils       utils.IUtils
}

func New(
	log *logrus.Logger,
	authRepo authRepository.Repository,
	s3Client s3.ItfS3,
	bcryptUtils bcrypt.IBcrypt,
	utils utils.IUtils,
) IAuthService {
	return &authService{
		log:         log,
		authRepo:    authRepo,
		s3Client:    s3Client,
		bcryptUtils: bcryptUtils,
		utils:       utils,
	}
}
