package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"folio/internal/models"
	"folio/internal/repositories"
	"folio/internal/services"
	appErr "folio/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_GetProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, nil, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1", FullName: "Jane"}, nil).Once()
	mockRepo.On("GetByID", ctx, "gone").Return(nil, repositories.ErrRecordNotFound).Once()

	user, err := userService.GetProfile(ctx, services.Identity{ID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.FullName)

	_, err = userService.GetProfile(ctx, services.Identity{ID: "gone"})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateProfile_IgnoresEmptyFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, nil, zap.NewNop())
	ctx := context.Background()

	stored := &models.User{ID: "user-1", FullName: "Jane", Phone: "111", Location: "Oslo", ProfileImage: "a.png"}
	mockRepo.On("GetByID", ctx, "user-1").Return(stored, nil).Once()
	mockRepo.On("Update", ctx, stored).Return(nil).Once()

	user, err := userService.UpdateProfile(ctx, services.Identity{ID: "user-1"}, services.ProfileUpdate{Phone: "222"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.FullName)
	assert.Equal(t, "222", user.Phone)
	assert.Equal(t, "Oslo", user.Location)
	assert.Equal(t, "a.png", user.ProfileImage)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateProfile_Upload(t *testing.T) {
	mockRepo := new(MockUserRepository)
	uploader := new(MockUploader)
	userService := services.NewUserService(mockRepo, uploader, zap.NewNop())
	ctx := context.Background()

	file := &services.ImageFile{Name: "me.png", Reader: strings.NewReader("png")}
	uploader.On("UploadProfileImage", ctx, file.Reader, "me.png").Return("https://cdn.example.com/me.jpg", nil).Once()
	stored := &models.User{ID: "user-1", ProfileImage: "old.png"}
	mockRepo.On("GetByID", ctx, "user-1").Return(stored, nil).Once()
	mockRepo.On("Update", ctx, stored).Return(nil).Once()

	user, err := userService.UpdateProfile(ctx, services.Identity{ID: "user-1"},
		services.ProfileUpdate{ProfileImage: "https://elsewhere.example.com/x.png"}, file)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/me.jpg", user.ProfileImage)
	uploader.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateProfile_UploadFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	uploader := new(MockUploader)
	userService := services.NewUserService(mockRepo, uploader, zap.NewNop())
	ctx := context.Background()

	uploader.On("UploadProfileImage", ctx, mock.Anything, "me.png").Return("", errors.New("quota exceeded")).Once()

	_, err := userService.UpdateProfile(ctx, services.Identity{ID: "user-1"}, services.ProfileUpdate{FullName: "X"},
		&services.ImageFile{Name: "me.png", Reader: strings.NewReader("png")})
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfile_UserGone(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, nil, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "gone").Return(nil, repositories.ErrRecordNotFound).Once()

	_, err := userService.UpdateProfile(ctx, services.Identity{ID: "gone"}, services.ProfileUpdate{Phone: "1"}, nil)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}
