package repositories

import (
	"context"
	"errors"
	"fmt"

	"folio/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "user with ID "+id, "id = ?", id)
}

// GetByEmail retrieves a user by their normalized email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return r.first(ctx, "user with email "+email, "email = ?", email)
}

// GetByNameKey retrieves the oldest user whose full name normalizes to key.
func (r *GORMUserRepository) GetByNameKey(ctx context.Context, key string) (*models.User, error) {
	return r.first(ctx, "user with name "+key, "full_name_key = ?", key)
}

func (r *GORMUserRepository) first(ctx context.Context, what string, query string, args ...any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).Order("created_at ASC").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", what, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return &user, nil
}

// Update writes the profile columns of an existing user. The portfolio
// reference list is owned by the portfolio repository and is never written here.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).
		Select("full_name", "full_name_key", "phone", "location", "profile_image", "updated_at").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrRecordNotFound)
	}
	return nil
}

// EachBatch walks all users in primary key order, size rows at a time.
func (r *GORMUserRepository) EachBatch(ctx context.Context, size int, fn func(users []models.User) error) error {
	var batch []models.User
	res := r.db.WithContext(ctx).FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	if res.Error != nil {
		return fmt.Errorf("failed to iterate users: %w", res.Error)
	}
	return nil
}
