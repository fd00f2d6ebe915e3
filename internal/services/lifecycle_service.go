package services

import (
	"context"
	"fmt"

	"github.com/winapi-history/winapidb/internal/database"
)

// LifecycleService exposes the schema version and the upgrade to the
// simplified identity schema.
type LifecycleService struct {
	ctx *database.Context
}

func NewLifecycleService(ctx *database.Context) *LifecycleService {
	return &LifecycleService{ctx: ctx}
}

// Upgrade applies the next schema migration. While ordinal-only symbols
// exist it returns a *database.MigrationPreconditionError and changes
// nothing.
func (s *LifecycleService) Upgrade(ctx context.Context) (database.UpgradeResult, error) {
	if s.ctx == nil || s.ctx.DB == nil {
		return database.UpgradeResult{}, fmt.Errorf("lifecycle service: missing database context")
	}
	return s.ctx.Upgrade(ctx)
}

// CurrentVersion reads the schema_version marker.
func (s *LifecycleService) CurrentVersion(ctx context.Context) (int64, error) {
	if s.ctx == nil || s.ctx.DB == nil {
		return 0, fmt.Errorf("lifecycle service: missing database context")
	}

	unlock := s.ctx.Shared()
	defer unlock()

	return s.ctx.CurrentVersion(ctx)
}

// Blockers lists the ordinal-only symbols that keep Upgrade from running.
func (s *LifecycleService) Blockers(ctx context.Context) ([]database.OrdinalSymbol, error) {
	if s.ctx == nil || s.ctx.DB == nil {
		return nil, fmt.Errorf("lifecycle service: missing database context")
	}

	unlock := s.ctx.Shared()
	defer unlock()

	return database.NewSymbolRepository(s.ctx).ListOrdinalOnly(ctx)
}
