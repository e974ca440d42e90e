package authService

import (
	"context"
	"mime/multipart"

	"inkpress/internal/api/auth"
	contextPkg "inkpress/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *authService) GetProfile(ctx context.Context, userID string) (auth.UserResponse, error) {
	repo, err := s.authRepo.NewClient(false)
	if err != nil {
		return auth.UserResponse{}, err
	}

	user, err := repo.Users.GetByID(ctx, userID)
	if err != nil {
		return auth.UserResponse{}, err
	}

	return makeUserResponse(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req auth.UpdateProfileRequest) (auth.UserResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.authRepo.NewClient(false)
	if err != nil {
		return auth.UserResponse{}, err
	}

	user, err := repo.Users.GetByID(ctx, userID)
	if err != nil {
		return auth.UserResponse{}, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	if err := repo.Users.UpdateProfile(ctx, user); err != nil {
		return auth.UserResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Profile updated")

	return makeUserResponse(user), nil
}

func (s *authService) UpdateAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (auth.AvatarResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.utils.ValidateImageFile(file); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected avatar upload")
		return auth.AvatarResponse{}, auth.ErrInvalidFileType
	}

	repo, err := s.authRepo.NewClient(false)
	if err != nil {
		return auth.AvatarResponse{}, err
	}

	user, err := repo.Users.GetByID(ctx, userID)
	if err != nil {
		return auth.AvatarResponse{}, err
	}

	avatarURL, err := s.s3Client.UploadFile(file, "avatars")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to upload avatar")
		return auth.AvatarResponse{}, auth.ErrFailedToUploadFile
	}

	if err := repo.Users.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return auth.AvatarResponse{}, err
	}

	// The previous bucket object is orphaned once the row points at the
	// new URL. Removal can fail without affecting the request.
	if old := user.AvatarURL; old != "" && old != avatarURL {
		go func() {
			if err := s.s3Client.DeleteFile(old); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Failed to delete previous avatar")
			}
		}()
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Avatar updated")

	return auth.AvatarResponse{
		ID:        userID,
		AvatarURL: avatarURL,
	}, nil
}
