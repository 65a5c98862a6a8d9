package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"folio/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPortfolioRepository is a GORM implementation of PortfolioRepository.
type GORMPortfolioRepository struct {
	db *gorm.DB
}

// NewGORMPortfolioRepository creates a new instance of GORMPortfolioRepository.
func NewGORMPortfolioRepository(db *gorm.DB) *GORMPortfolioRepository {
	return &GORMPortfolioRepository{
		db: db,
	}
}

// CreateForOwner inserts the portfolio and appends its id to the owner's list.
func (r *GORMPortfolioRepository) CreateForOwner(ctx context.Context, portfolio *models.Portfolio) error {
	if portfolio.ID == "" {
		portfolio.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(portfolio).Error; err != nil {
			return fmt.Errorf("failed to create portfolio: %w", err)
		}
		refs, err := portfolioRefs(tx, portfolio.UserID)
		if err != nil {
			return err
		}
		return setPortfolioRefs(tx, portfolio.UserID, append(refs, portfolio.ID))
	})
}

// GetByID retrieves a single portfolio by its ID from the database.
func (r *GORMPortfolioRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := r.db.WithContext(ctx).First(&portfolio, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("portfolio with ID %s: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio by ID %s: %w", id, err)
	}
	return &portfolio, nil
}

// ListByOwner retrieves all portfolios of a user, oldest first.
func (r *GORMPortfolioRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Portfolio, error) {
	portfolios := []models.Portfolio{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at ASC").Find(&portfolios).Error; err != nil {
		return nil, fmt.Errorf("failed to list portfolios of user %s: %w", ownerID, err)
	}
	return portfolios, nil
}

// IDsByOwner returns the ids of a user's portfolios, oldest first.
func (r *GORMPortfolioRepository) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Portfolio{}).
		Where("user_id = ?", ownerID).Order("created_at ASC").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio ids of user %s: %w", ownerID, err)
	}
	return ids, nil
}

// FindPublished retrieves the owner's published portfolio whose title normalizes to titleKey.
func (r *GORMPortfolioRepository) FindPublished(ctx context.Context, ownerID, titleKey string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND title_key = ? AND is_published = ?", ownerID, titleKey, true).
		Order("created_at ASC").
		First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("published portfolio %q: %w", titleKey, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to find published portfolio %q: %w", titleKey, err)
	}
	return &portfolio, nil
}

// Update writes every column of an existing portfolio except its owner and creation time.
func (r *GORMPortfolioRepository) Update(ctx context.Context, portfolio *models.Portfolio) error {
	res := r.db.WithContext(ctx).Model(portfolio).Select("*").Omit("user_id", "created_at").Updates(portfolio)
	if res.Error != nil {
		return fmt.Errorf("failed to update portfolio: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("portfolio with ID %s: %w", portfolio.ID, ErrRecordNotFound)
	}
	return nil
}

// DeleteForOwner deletes the portfolio and removes its id from the owner's list.
func (r *GORMPortfolioRepository) DeleteForOwner(ctx context.Context, id, ownerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Portfolio{}, "id = ? AND user_id = ?", id, ownerID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete portfolio: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("portfolio with ID %s: %w", id, ErrRecordNotFound)
		}
		refs, err := portfolioRefs(tx, ownerID)
		if err != nil {
			return err
		}
		return setPortfolioRefs(tx, ownerID, slices.DeleteFunc(refs, func(ref string) bool { return ref == id }))
	})
}

// SyncRefs rewrites the owner's reference list as repair(current, owned),
// where owned are the owner's portfolio ids oldest first. The owner row stays
// locked from the read to the write. It reports whether the list changed.
func (r *GORMPortfolioRepository) SyncRefs(ctx context.Context, ownerID string, repair func(current, owned []string) []string) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := portfolioRefs(tx, ownerID)
		if err != nil {
			return err
		}
		var owned []string
		err = tx.Model(&models.Portfolio{}).
			Where("user_id = ?", ownerID).Order("created_at ASC").Pluck("id", &owned).Error
		if err != nil {
			return fmt.Errorf("failed to list portfolios of user %s: %w", ownerID, err)
		}
		repaired := repair(current, owned)
		if slices.Equal(repaired, current) {
			return nil
		}
		changed = true
		return setPortfolioRefs(tx, ownerID, repaired)
	})
	return changed, err
}

// portfolioRefs reads the owner's list and holds the owner row until tx ends.
func portfolioRefs(tx *gorm.DB, userID string) ([]string, error) {
	var owner models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "portfolios").First(&owner, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", userID, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to load portfolio list of user %s: %w", userID, err)
	}
	return []string(owner.Portfolios), nil
}

func setPortfolioRefs(db *gorm.DB, userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	res := db.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("portfolios", datatypes.JSONSlice[string](ids))
	if res.Error != nil {
		return fmt.Errorf("failed to update portfolio list of user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", userID, ErrRecordNotFound)
	}
	return nil
}
