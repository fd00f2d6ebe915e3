package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/winapi-history/winapidb/internal/database"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
	"github.com/winapi-history/winapidb/internal/identity"
)

// ErrEmptyObservation is returned for an export with neither a name nor an
// ordinal.
var ErrEmptyObservation = errors.New("observation has neither a name nor an ordinal")

// Observation is one export seen in one DLL of one operating system.
// DllFileName keys ordinal-only symbols.
type Observation struct {
	OSShortName string
	DllPath     string
	DllFileName string
	Ordinal     *int64
	RawName     *string
}

// IngestSummary counts what a batch changed. OperatingSystems, Dlls and
// Symbols count newly created rows.
type IngestSummary struct {
	Lines            int
	Facts            int
	Duplicates       int
	SkippedOrdinal   int
	OperatingSystems int
	Dlls             int
	Symbols          int
}

// IngestService bulk loads observations.
type IngestService struct {
	ctx *database.Context
}

func NewIngestService(ctx *database.Context) *IngestService {
	return &IngestService{ctx: ctx}
}

// IngestBatch is one open ingestion transaction. It holds the shared side
// of the migration lock until Commit or Rollback.
type IngestBatch struct {
	tx      *sql.Tx
	q       *sqldb.Queries
	unlock  func()
	logger  *slog.Logger
	ordinal bool
	done    bool

	oses     map[string]int64
	dlls     map[string]int64
	named    map[string]int64
	ordinals map[string]int64

	summary IngestSummary
}

// Begin opens a batch. Every Add runs in the same transaction.
func (s *IngestService) Begin(ctx context.Context) (*IngestBatch, error) {
	if s.ctx == nil || s.ctx.DB == nil {
		return nil, fmt.Errorf("ingest service: missing database context")
	}

	unlock := s.ctx.Shared()

	tx, err := s.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		unlock()
		return nil, err
	}

	q := s.ctx.Queries().WithTx(tx)
	return &IngestBatch{
		tx:       tx,
		q:        q,
		unlock:   unlock,
		logger:   s.ctx.Logger(),
		ordinal:  q.Layout() < sqldb.LayoutSimplified,
		oses:     map[string]int64{},
		dlls:     map[string]int64{},
		named:    map[string]int64{},
		ordinals: map[string]int64{},
	}, nil
}

// Add records one observation, creating the operating system, DLL and
// symbol rows it needs. A fact that is already recorded is counted as a
// duplicate. Ordinal-only exports are skipped under the simplified schema.
func (b *IngestBatch) Add(ctx context.Context, obs Observation) error {
	if b.done {
		return fmt.Errorf("ingest batch already finished")
	}
	b.summary.Lines++

	var id identity.Identity
	switch {
	case obs.RawName != nil:
		id = identity.Named{RawName: *obs.RawName}
	case obs.Ordinal != nil:
		if !b.ordinal {
			b.summary.SkippedOrdinal++
			return nil
		}
		id = identity.Ordinal{DLLName: obs.DllFileName, Ordinal: *obs.Ordinal}
	default:
		return ErrEmptyObservation
	}
	if err := validate(id); err != nil {
		return err
	}

	osID, err := b.operatingSystem(ctx, obs.OSShortName)
	if err != nil {
		return err
	}
	dllID, err := b.dll(ctx, obs.DllPath)
	if err != nil {
		return err
	}
	symID, err := b.symbol(ctx, id)
	if err != nil {
		return err
	}

	err = insertFact(ctx, b.q, Fact{SymbolID: symID, DllID: dllID, OSID: osID, ObservedOrdinal: obs.Ordinal})
	switch {
	case err == nil:
		b.summary.Facts++
	case errors.Is(err, database.ErrDuplicateFact):
		b.summary.Duplicates++
	default:
		return err
	}
	return nil
}

// Summary returns the counts so far.
func (b *IngestBatch) Summary() IngestSummary {
	return b.summary
}

// Commit makes the batch durable and releases the lock.
func (b *IngestBatch) Commit() (IngestSummary, error) {
	if b.done {
		return b.summary, fmt.Errorf("ingest batch already finished")
	}
	b.done = true
	defer b.unlock()

	if err := b.tx.Commit(); err != nil {
		_ = b.tx.Rollback()
		return IngestSummary{}, err
	}

	b.logger.Info("ingest committed",
		"lines", b.summary.Lines,
		"facts", b.summary.Facts,
		"duplicates", b.summary.Duplicates,
		"skipped_ordinal", b.summary.SkippedOrdinal,
		"symbols", b.summary.Symbols,
	)
	return b.summary, nil
}

// Rollback discards the batch. Calling it after Commit does nothing.
func (b *IngestBatch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	defer b.unlock()
	return b.tx.Rollback()
}

func (b *IngestBatch) operatingSystem(ctx context.Context, shortName string) (int64, error) {
	if id, ok := b.oses[shortName]; ok {
		return id, nil
	}
	if shortName == "" {
		return 0, fmt.Errorf("%w: operating system short name must not be empty", database.ErrConstraintViolation)
	}
	id, created, err := getOrCreateOperatingSystem(ctx, b.q, shortName, nil)
	if err != nil {
		return 0, err
	}
	if created {
		b.summary.OperatingSystems++
	}
	b.oses[shortName] = id
	return id, nil
}

func (b *IngestBatch) dll(ctx context.Context, path string) (int64, error) {
	if id, ok := b.dlls[path]; ok {
		return id, nil
	}
	if path == "" {
		return 0, fmt.Errorf("%w: dll path must not be empty", database.ErrConstraintViolation)
	}
	id, created, err := getOrCreateDll(ctx, b.q, path)
	if err != nil {
		return 0, err
	}
	if created {
		b.summary.Dlls++
	}
	b.dlls[path] = id
	return id, nil
}

func (b *IngestBatch) symbol(ctx context.Context, id identity.Identity) (int64, error) {
	cache, key := b.named, ""
	switch v := id.(type) {
	case identity.Named:
		key = v.RawName
	case identity.Ordinal:
		cache, key = b.ordinals, v.Key()
	}

	if symID, ok := cache[key]; ok {
		return symID, nil
	}
	symID, created, err := getOrCreateSymbol(ctx, b.q, id)
	if err != nil {
		return 0, err
	}
	if created {
		b.summary.Symbols++
	}
	cache[key] = symID
	return symID, nil
}
