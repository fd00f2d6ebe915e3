package database

import (
	"fmt"

	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
	"github.com/winapi-history/winapidb/internal/identity"
)

// SymbolRecordFromRow converts a symbols row to a SymbolRecord. A row that
// breaks the identity rule is reported rather than guessed at.
func SymbolRecordFromRow(row sqldb.Symbol) (SymbolRecord, error) {
	id, err := identity.FromParts(
		optionalStringPtr(row.RawName),
		optionalStringPtr(row.DllName),
		optionalInt64Ptr(row.Ordinal),
		optionalStringPtr(row.FriendlyName),
	)
	if err != nil {
		return SymbolRecord{}, fmt.Errorf("symbol %d: %w", row.SymID, err)
	}

	return SymbolRecord{
		ID:         row.SymID,
		Identity:   id,
		IsMetaFunc: row.IsMetaFunc != 0,
	}, nil
}

// DllRecordFromRow converts a dlls row to a DllRecord.
func DllRecordFromRow(row sqldb.Dll) DllRecord {
	return DllRecord{
		ID:                row.DllID,
		Path:              row.Path,
		SecondaryPlatform: row.SecondaryPlatform != 0,
	}
}

// OperatingSystemRecordFromRow converts an operating_systems row.
func OperatingSystemRecordFromRow(row sqldb.OperatingSystem) OperatingSystemRecord {
	return OperatingSystemRecord{
		ID:        row.OsID,
		ShortName: row.ShortName,
		LongName:  optionalStringPtr(row.LongName),
	}
}

// OrdinalSymbolFromRow converts an ordinal-only symbols row.
func OrdinalSymbolFromRow(row sqldb.Symbol) OrdinalSymbol {
	return OrdinalSymbol{
		SymID:        row.SymID,
		DllName:      row.DllName.String,
		Ordinal:      row.Ordinal.Int64,
		FriendlyName: optionalStringPtr(row.FriendlyName),
	}
}

// SymbolRecordFromSummary converts a listing projection to a SymbolRecord.
func SymbolRecordFromSummary(s SymbolSummary) (SymbolRecord, error) {
	id, err := identity.FromParts(s.RawName, s.DllName, s.Ordinal, s.FriendlyName)
	if err != nil {
		return SymbolRecord{}, fmt.Errorf("symbol %d: %w", s.ID, err)
	}
	return SymbolRecord{ID: s.ID, Identity: id, IsMetaFunc: s.IsMetaFunc}, nil
}

// NamedSymbolInsertParams converts a named identity to insert parameters.
func NamedSymbolInsertParams(id identity.Named) sqldb.InsertNamedSymbolParams {
	return sqldb.InsertNamedSymbolParams{
		RawName:      id.RawName,
		FriendlyName: stringPtrToNullString(id.FriendlyName),
	}
}

// OrdinalSymbolInsertParams converts an ordinal identity to insert parameters.
func OrdinalSymbolInsertParams(id identity.Ordinal) sqldb.InsertOrdinalSymbolParams {
	return sqldb.InsertOrdinalSymbolParams{
		DllName:      id.DLLName,
		Ordinal:      id.Ordinal,
		FriendlyName: stringPtrToNullString(id.FriendlyName),
	}
}

// AvailabilityInsertParams converts a record to insert parameters.
func AvailabilityInsertParams(rec AvailabilityRecord) sqldb.InsertAvailabilityParams {
	return sqldb.InsertAvailabilityParams{
		SymID:   rec.SymbolID,
		DllID:   rec.DllID,
		OsID:    rec.OSID,
		Ordinal: int64PtrToNullInt64(rec.ObservedOrdinal),
	}
}

// DllInsertParams converts a record to insert parameters.
func DllInsertParams(rec DllRecord) sqldb.InsertDllParams {
	return sqldb.InsertDllParams{
		Path:              rec.Path,
		SecondaryPlatform: boolToInt64(rec.SecondaryPlatform),
	}
}

// OperatingSystemInsertParams converts a record to insert parameters.
func OperatingSystemInsertParams(rec OperatingSystemRecord) sqldb.InsertOperatingSystemParams {
	return sqldb.InsertOperatingSystemParams{
		ShortName: rec.ShortName,
		LongName:  stringPtrToNullString(rec.LongName),
	}
}
