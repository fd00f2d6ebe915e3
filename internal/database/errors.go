package database

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("database: not found")

	// ErrConstraintViolation covers identity rule, uniqueness and
	// referential restrictions enforced by the schema.
	ErrConstraintViolation = errors.New("database: constraint violation")

	// ErrMissingReference is returned when an availability fact names a
	// symbol, dll or operating system that does not exist.
	ErrMissingReference = errors.New("database: missing reference")

	// ErrDuplicateFact is returned when an availability triple is already
	// recorded.
	ErrDuplicateFact = errors.New("database: duplicate availability fact")

	// ErrMigrationPrecondition is matched by *MigrationPreconditionError.
	ErrMigrationPrecondition = errors.New("database: migration precondition failed")

	// ErrSingletonViolation is returned when something tries to add or
	// remove the schema_version row.
	ErrSingletonViolation = errors.New("database: schema_version is a singleton")

	// ErrUnsupportedBySchema is returned for writes the active schema
	// version cannot represent. It is also a constraint violation.
	ErrUnsupportedBySchema = fmt.Errorf("%w: not supported by the active schema version", ErrConstraintViolation)
)

const (
	singletonMessage     = "schema_version is a singleton"
	availabilityTable    = "symbol_dll_os."
	migrationGuardMarker = "no_ordinal_only_symbols"
)

// OrdinalSymbol is a symbol identified by (dll_name, ordinal), reported when
// it blocks the move to the simplified schema.
type OrdinalSymbol struct {
	SymID        int64
	DllName      string
	Ordinal      int64
	FriendlyName *string
}

// MigrationPreconditionError lists the rows that must be resolved before a
// migration can run.
type MigrationPreconditionError struct {
	From      int64
	To        int64
	Offending []OrdinalSymbol
}

func (e *MigrationPreconditionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "migration %d -> %d blocked by %d ordinal-only symbol(s)", e.From, e.To, len(e.Offending))
	for i, sym := range e.Offending {
		if i == 5 {
			fmt.Fprintf(&b, ", ...")
			break
		}
		sep := ": "
		if i > 0 {
			sep = ", "
		}
		fmt.Fprintf(&b, "%s%s#%d", sep, sym.DllName, sym.Ordinal)
	}
	return b.String()
}

func (e *MigrationPreconditionError) Is(target error) bool {
	return target == ErrMigrationPrecondition
}

// Classify maps a SQLite constraint failure onto one of the error kinds of
// this package. The driver error stays in the chain. Errors that are not
// constraint failures, or are already classified, are returned unchanged.
func Classify(err error) error {
	if err == nil || isClassified(err) {
		return err
	}

	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	kind := kindFor(sqliteErr.Code(), sqliteErr.Error())
	if kind == nil {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// ClassifyDelete is Classify for DELETE statements: a foreign key failure
// there means the row is still referenced, which is a constraint violation
// rather than a missing reference.
func ClassifyDelete(err error) error {
	if err == nil || isClassified(err) {
		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && kindFor(sqliteErr.Code(), sqliteErr.Error()) == ErrMissingReference {
		return fmt.Errorf("%w: row is still referenced: %w", ErrConstraintViolation, err)
	}
	return Classify(err)
}

func isClassified(err error) bool {
	for _, kind := range []error{
		ErrConstraintViolation,
		ErrMissingReference,
		ErrDuplicateFact,
		ErrMigrationPrecondition,
		ErrSingletonViolation,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func kindFor(code int, msg string) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		if strings.Contains(msg, availabilityTable) {
			return ErrDuplicateFact
		}
		return ErrConstraintViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ErrMissingReference
	case sqlite3.SQLITE_CONSTRAINT_TRIGGER:
		if strings.Contains(msg, singletonMessage) {
			return ErrSingletonViolation
		}
		return ErrConstraintViolation
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return ErrConstraintViolation
	}

	// Without extended result codes only the primary code and message are
	// available.
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return nil
	}
	switch {
	case strings.Contains(msg, singletonMessage):
		return ErrSingletonViolation
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrMissingReference
	case strings.Contains(msg, "constraint failed") && strings.Contains(msg, availabilityTable):
		return ErrDuplicateFact
	default:
		return ErrConstraintViolation
	}
}
