package services

import (
	"context"
	"errors"

	"github.com/winapi-history/winapidb/internal/database"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
)

// Fact asserts that a symbol is exported by a DLL on an operating system.
// ObservedOrdinal is dropped under the simplified schema.
type Fact struct {
	SymbolID        int64
	DllID           int64
	OSID            int64
	ObservedOrdinal *int64
}

// AssertSummary reports the outcome of AssertMany.
type AssertSummary struct {
	Inserted   int
	Duplicates int
}

// AvailabilityService records and queries the symbol × dll × os relation.
type AvailabilityService struct {
	ctx *database.Context
}

func NewAvailabilityService(ctx *database.Context) *AvailabilityService {
	return &AvailabilityService{ctx: ctx}
}

// Assert records one fact. A triple that is already recorded yields
// ErrDuplicateFact; an unknown symbol, dll or os yields ErrMissingReference.
func (s *AvailabilityService) Assert(ctx context.Context, fact Fact) error {
	return s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		return insertFact(txCtx, q, fact)
	})
}

// AssertMany records facts in one transaction. Duplicates are counted and
// skipped. Any other failure rolls the whole batch back.
func (s *AvailabilityService) AssertMany(ctx context.Context, facts []Fact) (AssertSummary, error) {
	var summary AssertSummary
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		for _, fact := range facts {
			err := insertFact(txCtx, q, fact)
			switch {
			case err == nil:
				summary.Inserted++
			case errors.Is(err, database.ErrDuplicateFact):
				summary.Duplicates++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return AssertSummary{}, err
	}
	return summary, nil
}

// Query returns the facts matching filter, served by the access pattern
// registered for the facets it fixes.
func (s *AvailabilityService) Query(ctx context.Context, filter database.AvailabilityFilter) ([]database.AvailabilityRecord, error) {
	unlock := s.ctx.Shared()
	defer unlock()

	return database.QueryAvailability(ctx, s.ctx, filter)
}

// Retract removes one fact and reports whether it existed.
func (s *AvailabilityService) Retract(ctx context.Context, symID, dllID, osID int64) (bool, error) {
	var removed bool
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		affected, err := q.DeleteAvailability(txCtx, sqldb.DeleteAvailabilityParams{
			SymID: symID,
			DllID: dllID,
			OsID:  osID,
		})
		if err != nil {
			return database.Classify(err)
		}
		removed = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *AvailabilityService) withTx(ctx context.Context, fn func(context.Context, *sqldb.Queries) error) error {
	return runInTx(ctx, s.ctx, "availability", fn)
}

func insertFact(ctx context.Context, q *sqldb.Queries, fact Fact) error {
	params := database.AvailabilityInsertParams(database.AvailabilityRecord{
		SymbolID:        fact.SymbolID,
		DllID:           fact.DllID,
		OSID:            fact.OSID,
		ObservedOrdinal: fact.ObservedOrdinal,
	})
	if err := q.InsertAvailability(ctx, params); err != nil {
		return database.Classify(err)
	}
	return nil
}
