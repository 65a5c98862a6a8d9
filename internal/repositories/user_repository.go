package repositories

import (
	"context"

	"folio/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByNameKey returns the earliest-created user whose normalized full name equals key.
	GetByNameKey(ctx context.Context, key string) (*models.User, error)
	// Update writes the profile columns only.
	Update(ctx context.Context, user *models.User) error
	EachBatch(ctx context.Context, size int, fn func(users []models.User) error) error
}
