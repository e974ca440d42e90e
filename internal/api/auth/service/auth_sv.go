package authService

import (
	"context"
	"errors"
	"time"

	"inkpress/internal/api/auth"
	"inkpress/internal/entity"
	contextPkg "inkpress/pkg/context"
	jwtPkg "inkpress/pkg/jwt"

	"github.com/sirupsen/logrus"
)

func (s *authService) Register(ctx context.Context, req auth.RegisterRequest) (auth.LoginResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"email":      req.Email,
	}).Debug("Registering new user")

	repo, err := s.authRepo.NewClient(false)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	_, err = repo.Users.GetByEmail(ctx, req.Email)
	if err == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      req.Email,
		}).Warn("Email already registered")
		return auth.LoginResponse{}, auth.ErrEmailAlreadyExists
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return auth.LoginResponse{}, err
	}

	hashedPassword, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return auth.LoginResponse{}, err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate user ID")
		return auth.LoginResponse{}, err
	}

	// Admin accounts are provisioned out of band, never through this
	// endpoint. The request validator already narrows the field to
	// author or reader.
	role := req.Role
	if role == "" {
		role = entity.RoleAuthor
	}

	user := entity.User{
		ID:        id,
		Email:     req.Email,
		Name:      req.Name,
		Password:  hashedPassword,
		Role:      role,
		AvatarURL: s.utils.DefaultAvatarURL(req.Name),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := repo.Users.CreateUser(ctx, user); err != nil {
		return auth.LoginResponse{}, err
	}

	accessToken, expiresAt, err := s.signToken(user)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign access token")
		return auth.LoginResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    user.ID,
	}).Info("User registered")

	return auth.LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        makeUserResponse(user),
	}, nil
}

func (s *authService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.authRepo.NewClient(false)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	// Unknown email and wrong password answer identically, so the
	// endpoint cannot be used to enumerate accounts.
	user, err := repo.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("Login attempt with unknown email")
			return auth.LoginResponse{}, auth.ErrInvalidEmailOrPassword
		}
		return auth.LoginResponse{}, err
	}

	if err := s.bcryptUtils.ComparePassword(user.Password, req.Password); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
		}).Warn("Login attempt with wrong password")
		return auth.LoginResponse{}, auth.ErrInvalidEmailOrPassword
	}

	accessToken, expiresAt, err := s.signToken(user)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign access token")
		return auth.LoginResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    user.ID,
	}).Info("User logged in")

	return auth.LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        makeUserResponse(user),
	}, nil
}

func (s *authService) signToken(user entity.User) (string, int64, error) {
	claims := map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	}
	return jwtPkg.Sign(claims, jwtPkg.AccessTokenDuration)
}

func makeUserResponse(user entity.User) auth.UserResponse {
	return auth.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
