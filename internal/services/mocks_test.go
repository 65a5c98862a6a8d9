package services_test

import (
	"context"
	"io"

	"folio/internal/models"
	"folio/pkg/rabbitmq"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByNameKey(ctx context.Context, key string) (*models.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) EachBatch(ctx context.Context, size int, fn func(users []models.User) error) error {
	args := m.Called(ctx, size)
	if batches, ok := args.Get(0).([][]models.User); ok {
		for _, batch := range batches {
			if err := fn(batch); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// MockPortfolioRepository is a mock implementation of repositories.PortfolioRepository
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) CreateForOwner(ctx context.Context, portfolio *models.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Portfolio, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPortfolioRepository) FindPublished(ctx context.Context, ownerID, titleKey string) (*models.Portfolio, error) {
	args := m.Called(ctx, ownerID, titleKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) Update(ctx context.Context, portfolio *models.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) DeleteForOwner(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockPortfolioRepository) SyncRefs(ctx context.Context, ownerID string, repair func(current, owned []string) []string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPortfolioEvent(ctx context.Context, event rabbitmq.PortfolioEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockUploader is a mock implementation of services.ImageUploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadProfileImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	args := m.Called(ctx, r, filename)
	return args.String(0), args.Error(1)
}

// eventOfType matches a published event by its type.
func eventOfType(typ rabbitmq.EventType) any {
	return mock.MatchedBy(func(e rabbitmq.PortfolioEvent) bool { return e.Type == typ })
}
