package database

import "github.com/winapi-history/winapidb/internal/identity"

// SymbolRecord represents a row in the symbols table.
type SymbolRecord struct {
	ID         int64
	Identity   identity.Identity
	IsMetaFunc bool
}

// DisplayName applies the display rule of the identity.
func (r SymbolRecord) DisplayName() string {
	return r.Identity.DisplayName()
}

// RawName returns the export name, or "" for an ordinal-only symbol.
func (r SymbolRecord) RawName() string {
	if named, ok := r.Identity.(identity.Named); ok {
		return named.RawName
	}
	return ""
}

// DllRecord represents a row in the dlls table. SecondaryPlatform is always
// false under the simplified schema.
type DllRecord struct {
	ID                int64  `db:"dll_id"`
	Path              string `db:"path"`
	SecondaryPlatform bool   `db:"secondary_platform"`
}

// OperatingSystemRecord represents a row in the operating_systems table.
type OperatingSystemRecord struct {
	ID        int64
	ShortName string
	LongName  *string
}

// DisplayName returns the long name, falling back to the short name.
func (r OperatingSystemRecord) DisplayName() string {
	if r.LongName != nil {
		return *r.LongName
	}
	return r.ShortName
}

// AvailabilityRecord is one row of symbol_dll_os. ObservedOrdinal is only
// populated under the rich identity schema.
type AvailabilityRecord struct {
	SymbolID        int64  `db:"sym_id" json:"symbol_id"`
	DllID           int64  `db:"dll_id" json:"dll_id"`
	OSID            int64  `db:"os_id" json:"os_id"`
	ObservedOrdinal *int64 `db:"ordinal" json:"observed_ordinal,omitempty"`
}

// SymbolPlacement is one (dll, os) pair a symbol is available in, with the
// names resolved.
type SymbolPlacement struct {
	DllID           int64   `db:"dll_id"`
	DllPath         string  `db:"path"`
	OSID            int64   `db:"os_id"`
	OSShortName     string  `db:"short_name"`
	OSLongName      *string `db:"long_name"`
	ObservedOrdinal *int64  `db:"ordinal"`
}

// SymbolSummary is the projection of a symbol used by listings.
type SymbolSummary struct {
	ID           int64   `db:"sym_id"`
	RawName      *string `db:"raw_name"`
	DllName      *string `db:"dll_name"`
	Ordinal      *int64  `db:"ordinal"`
	FriendlyName *string `db:"friendly_name"`
	IsMetaFunc   bool    `db:"is_meta_func"`
}
