package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"folio/internal/models"
	"folio/internal/repositories"
	appErr "folio/pkg/errors"

	"go.uber.org/zap"
)

// ImageUploader stores a profile image on the asset host and returns its public URL.
type ImageUploader interface {
	UploadProfileImage(ctx context.Context, r io.Reader, filename string) (string, error)
}

// ProfileUpdate holds the profile fields a caller may change. Empty values are ignored.
type ProfileUpdate struct {
	FullName     string
	Phone        string
	Location     string
	ProfileImage string
}

// ImageFile is an uploaded profile image.
type ImageFile struct {
	Name   string
	Reader io.Reader
}

// UserService handles profile reads and updates.
type UserService struct {
	userRepo repositories.UserRepository
	uploader ImageUploader
	log      *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, uploader ImageUploader, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		uploader: uploader,
		log:      log,
	}
}

// GetProfile returns the caller's account.
func (s *UserService) GetProfile(ctx context.Context, id Identity) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id.ID)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// UpdateProfile applies the non-empty fields of upd. When file is set it is
// uploaded first and the resulting URL replaces any profileImage value.
func (s *UserService) UpdateProfile(ctx context.Context, id Identity, upd ProfileUpdate, file *ImageFile) (*models.User, error) {
	if file != nil {
		if s.uploader == nil {
			return nil, appErr.Internal(errors.New("asset host not configured"))
		}
		url, err := s.uploader.UploadProfileImage(ctx, file.Reader, file.Name)
		if err != nil {
			return nil, appErr.Internal(fmt.Errorf("upload profile image: %w", err))
		}
		upd.ProfileImage = url
	}

	user, err := s.userRepo.GetByID(ctx, id.ID)
	if err != nil {
		return nil, userLookupError(err)
	}

	if upd.FullName != "" {
		user.FullName = upd.FullName
	}
	if upd.Phone != "" {
		user.Phone = upd.Phone
	}
	if upd.Location != "" {
		user.Location = upd.Location
	}
	if upd.ProfileImage != "" {
		user.ProfileImage = upd.ProfileImage
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, userLookupError(err)
	}
	s.log.Debug("profile updated", zap.String("user_id", user.ID))
	return user, nil
}

func userLookupError(err error) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return appErr.Wrap(err, appErr.CodeNotFound, "User not found")
	}
	return appErr.Internal(err)
}
