package services

import (
	"context"
	"fmt"

	"github.com/winapi-history/winapidb/internal/database"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
	"github.com/winapi-history/winapidb/internal/metafunc"
)

// ApplyReport lists the outcome of replaying an allow-list.
type ApplyReport struct {
	Tagged  []string
	Missing []string
}

// ClassificationService maintains the meta-function flag on symbols.
type ClassificationService struct {
	ctx *database.Context
}

func NewClassificationService(ctx *database.Context) *ClassificationService {
	return &ClassificationService{ctx: ctx}
}

// TagMetaFunction flags the symbol whose raw name is exactly rawName.
// Tagging twice is a no-op. An unknown name yields database.ErrNotFound.
func (s *ClassificationService) TagMetaFunction(ctx context.Context, rawName string) error {
	return s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		return tagMetaFunction(txCtx, q, rawName)
	})
}

// Apply tags every name on the allow-list in one transaction. Names with no
// matching symbol are reported, not treated as failures.
func (s *ClassificationService) Apply(ctx context.Context, list metafunc.AllowList) (ApplyReport, error) {
	report := ApplyReport{Tagged: []string{}, Missing: []string{}}
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		for _, name := range list.Names() {
			affected, err := q.SetSymbolMetaFunc(txCtx, name)
			if err != nil {
				return database.Classify(err)
			}
			if affected == 0 {
				report.Missing = append(report.Missing, name)
				continue
			}
			report.Tagged = append(report.Tagged, name)
		}
		return nil
	})
	if err != nil {
		return ApplyReport{}, err
	}

	s.ctx.Logger().Info("meta functions tagged", "tagged", len(report.Tagged), "missing", len(report.Missing))
	return report, nil
}

func (s *ClassificationService) withTx(ctx context.Context, fn func(context.Context, *sqldb.Queries) error) error {
	return runInTx(ctx, s.ctx, "classification", fn)
}

func tagMetaFunction(ctx context.Context, q *sqldb.Queries, rawName string) error {
	affected, err := q.SetSymbolMetaFunc(ctx, rawName)
	if err != nil {
		return database.Classify(err)
	}
	if affected == 0 {
		return fmt.Errorf("symbol %q: %w", rawName, database.ErrNotFound)
	}
	return nil
}
