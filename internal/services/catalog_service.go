package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/winapi-history/winapidb/internal/database"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
)

// OperatingSystemSeed is one operating system to register by short name.
type OperatingSystemSeed struct {
	ShortName string
	LongName  *string
}

// SeedSummary reports what SeedOperatingSystems changed.
type SeedSummary struct {
	Created  []string
	Existing []string
}

// CatalogService manages the operating_systems and dlls tables.
type CatalogService struct {
	ctx *database.Context
}

func NewCatalogService(ctx *database.Context) *CatalogService {
	return &CatalogService{ctx: ctx}
}

// RegisterOperatingSystem inserts an operating system. A duplicate short
// name is an ErrConstraintViolation.
func (s *CatalogService) RegisterOperatingSystem(ctx context.Context, shortName string, longName *string) (int64, error) {
	if shortName == "" {
		return 0, fmt.Errorf("%w: operating system short name must not be empty", database.ErrConstraintViolation)
	}

	var osID int64
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		var err error
		osID, err = insertOperatingSystem(txCtx, q, shortName, longName)
		return err
	})
	if err != nil {
		return 0, err
	}
	return osID, nil
}

// GetOrCreateOperatingSystem returns the id for shortName, inserting the row
// when it does not exist yet.
func (s *CatalogService) GetOrCreateOperatingSystem(ctx context.Context, shortName string, longName *string) (osID int64, created bool, err error) {
	if shortName == "" {
		return 0, false, fmt.Errorf("%w: operating system short name must not be empty", database.ErrConstraintViolation)
	}

	err = s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		osID, created, err = getOrCreateOperatingSystem(txCtx, q, shortName, longName)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return osID, created, nil
}

// RegisterDll inserts a DLL by its path relative to the OS root.
func (s *CatalogService) RegisterDll(ctx context.Context, path string) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: dll path must not be empty", database.ErrConstraintViolation)
	}

	var dllID int64
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		var err error
		dllID, err = insertDll(txCtx, q, path)
		return err
	})
	if err != nil {
		return 0, err
	}
	return dllID, nil
}

// GetOrCreateDll returns the id for path, inserting the row when needed.
func (s *CatalogService) GetOrCreateDll(ctx context.Context, path string) (dllID int64, created bool, err error) {
	if path == "" {
		return 0, false, fmt.Errorf("%w: dll path must not be empty", database.ErrConstraintViolation)
	}

	err = s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		dllID, created, err = getOrCreateDll(txCtx, q, path)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return dllID, created, nil
}

func (s *CatalogService) ListOperatingSystems(ctx context.Context) ([]database.OperatingSystemRecord, error) {
	return database.NewOperatingSystemRepository(s.ctx).List(ctx)
}

func (s *CatalogService) ListDlls(ctx context.Context) ([]database.DllRecord, error) {
	return database.NewDllRepository(s.ctx).List(ctx)
}

// LookupOperatingSystem returns the operating system or nil.
func (s *CatalogService) LookupOperatingSystem(ctx context.Context, shortName string) (*database.OperatingSystemRecord, error) {
	return database.NewOperatingSystemRepository(s.ctx).FindByShortName(ctx, shortName)
}

// LookupDll returns the DLL or nil.
func (s *CatalogService) LookupDll(ctx context.Context, path string) (*database.DllRecord, error) {
	return database.NewDllRepository(s.ctx).FindByPath(ctx, path)
}

// SeedOperatingSystems registers every seed that is not present yet, in one
// transaction. Existing rows are left untouched.
func (s *CatalogService) SeedOperatingSystems(ctx context.Context, seeds []OperatingSystemSeed) (SeedSummary, error) {
	var summary SeedSummary
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		for _, seed := range seeds {
			if seed.ShortName == "" {
				return fmt.Errorf("%w: operating system short name must not be empty", database.ErrConstraintViolation)
			}
			_, created, err := getOrCreateOperatingSystem(txCtx, q, seed.ShortName, seed.LongName)
			if err != nil {
				return fmt.Errorf("seed %s: %w", seed.ShortName, err)
			}
			if created {
				summary.Created = append(summary.Created, seed.ShortName)
			} else {
				summary.Existing = append(summary.Existing, seed.ShortName)
			}
		}
		return nil
	})
	if err != nil {
		return SeedSummary{}, err
	}

	s.ctx.Logger().Info("operating systems seeded", "created", len(summary.Created), "existing", len(summary.Existing))
	return summary, nil
}

// DeleteOperatingSystem removes an operating system with no availability
// facts. A referenced row yields ErrConstraintViolation.
func (s *CatalogService) DeleteOperatingSystem(ctx context.Context, osID int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		affected, err := q.DeleteOperatingSystemByID(txCtx, osID)
		if err != nil {
			return database.ClassifyDelete(err)
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteDll removes a DLL with no availability facts.
func (s *CatalogService) DeleteDll(ctx context.Context, dllID int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		affected, err := q.DeleteDllByID(txCtx, dllID)
		if err != nil {
			return database.ClassifyDelete(err)
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *CatalogService) withTx(ctx context.Context, fn func(context.Context, *sqldb.Queries) error) error {
	return runInTx(ctx, s.ctx, "catalog", fn)
}

func insertOperatingSystem(ctx context.Context, q *sqldb.Queries, shortName string, longName *string) (int64, error) {
	res, err := q.InsertOperatingSystem(ctx, database.OperatingSystemInsertParams(database.OperatingSystemRecord{
		ShortName: shortName,
		LongName:  longName,
	}))
	if err != nil {
		return 0, database.Classify(err)
	}
	return res.LastInsertId()
}

func getOrCreateOperatingSystem(ctx context.Context, q *sqldb.Queries, shortName string, longName *string) (int64, bool, error) {
	row, err := q.FindOperatingSystemByShortName(ctx, shortName)
	switch {
	case err == nil:
		return row.OsID, false, nil
	case errors.Is(err, sql.ErrNoRows):
		osID, err := insertOperatingSystem(ctx, q, shortName, longName)
		if err != nil {
			return 0, false, err
		}
		return osID, true, nil
	default:
		return 0, false, err
	}
}

func insertDll(ctx context.Context, q *sqldb.Queries, path string) (int64, error) {
	res, err := q.InsertDll(ctx, database.DllInsertParams(database.DllRecord{Path: path}))
	if err != nil {
		return 0, database.Classify(err)
	}
	return res.LastInsertId()
}

func getOrCreateDll(ctx context.Context, q *sqldb.Queries, path string) (int64, bool, error) {
	row, err := q.FindDllByPath(ctx, path)
	switch {
	case err == nil:
		return row.DllID, false, nil
	case errors.Is(err, sql.ErrNoRows):
		dllID, err := insertDll(ctx, q, path)
		if err != nil {
			return 0, false, err
		}
		return dllID, true, nil
	default:
		return 0, false, err
	}
}
