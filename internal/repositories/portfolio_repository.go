package repositories

import (
	"context"

	"folio/internal/models"
)

// PortfolioRepository defines the interface for portfolio data access.
// CreateForOwner and DeleteForOwner also maintain the owner's reference list,
// and do both writes in a single transaction. SyncRefs repairs that list.
type PortfolioRepository interface {
	CreateForOwner(ctx context.Context, portfolio *models.Portfolio) error
	GetByID(ctx context.Context, id string) (*models.Portfolio, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Portfolio, error)
	IDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	FindPublished(ctx context.Context, ownerID, titleKey string) (*models.Portfolio, error)
	Update(ctx context.Context, portfolio *models.Portfolio) error
	DeleteForOwner(ctx context.Context, id, ownerID string) error
	SyncRefs(ctx context.Context, ownerID string, repair func(current, owned []string) []string) (bool, error)
}
