package services

import (
	"context"
	"fmt"

	"folio/internal/models"
	"folio/internal/repositories"

	"go.uber.org/zap"
)

const reconcileBatchSize = 100

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Scanned  int
	Repaired int
}

// ReconcileService rebuilds users' portfolio reference lists from the
// portfolio rows, which are the source of truth.
type ReconcileService struct {
	users      repositories.UserRepository
	portfolios repositories.PortfolioRepository
	log        *zap.Logger
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(users repositories.UserRepository, portfolios repositories.PortfolioRepository, log *zap.Logger) *ReconcileService {
	return &ReconcileService{
		users:      users,
		portfolios: portfolios,
		log:        log,
	}
}

// Run scans every user and rewrites lists that drifted from the owned portfolios.
// Each list is re-read and written under the owner's row lock, so creates and
// deletes that land during the scan are kept.
func (s *ReconcileService) Run(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	err := s.users.EachBatch(ctx, reconcileBatchSize, func(users []models.User) error {
		for _, u := range users {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.Scanned++

			changed, err := s.portfolios.SyncRefs(ctx, u.ID, RepairRefs)
			if err != nil {
				return err
			}
			if changed {
				res.Repaired++
				s.log.Info("portfolio references repaired", zap.String("user_id", u.ID))
			}
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("reconcile portfolio references: %w", err)
	}
	return res, nil
}

// RepairRefs keeps the ids of current that are still owned, in their order,
// then appends owned ids that current is missing, in the order given.
func RepairRefs(current, owned []string) []string {
	ownedSet := make(map[string]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	out := make([]string, 0, len(owned))
	seen := make(map[string]struct{}, len(owned))
	for _, id := range current {
		if _, ok := ownedSet[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range owned {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
