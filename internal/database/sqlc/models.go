package sqldb

import "database/sql"

type Symbol struct {
	SymID        int64
	RawName      sql.NullString
	DllName      sql.NullString
	Ordinal      sql.NullInt64
	FriendlyName sql.NullString
	IsMetaFunc   int64
}

type Dll struct {
	DllID             int64
	Path              string
	SecondaryPlatform int64
}

type OperatingSystem struct {
	OsID      int64
	ShortName string
	LongName  sql.NullString
}

type SymbolDllOs struct {
	SymID   int64
	DllID   int64
	OsID    int64
	Ordinal sql.NullInt64
}
