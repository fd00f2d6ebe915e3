package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"
)

func setupTestDB(t *testing.T) *Context {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("WINAPIDB_DIR", tmp)

	ctx, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func setupMemoryDB(t *testing.T) *Context {
	t.Helper()
	ctx, err := CreateDatabase(MemoryPath)
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("tableExists query failed for %s: %v", table, err)
	}
	return true
}

func columnExists(t *testing.T, db *sql.DB, table, column string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	if err != nil {
		t.Fatalf("columnExists query failed for %s.%s: %v", table, column, err)
	}
	return count > 0
}

func insertOS(t *testing.T, db *sql.DB, shortName string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO operating_systems(short_name) VALUES(?)`, shortName)
	if err != nil {
		t.Fatalf("insertOS failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertOS LastInsertId failed: %v", err)
	}
	return id
}

func insertDll(t *testing.T, db *sql.DB, path string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO dlls(path) VALUES(?)`, path)
	if err != nil {
		t.Fatalf("insertDll failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertDll LastInsertId failed: %v", err)
	}
	return id
}

func insertNamedSymbol(t *testing.T, db *sql.DB, rawName string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO symbols(raw_name) VALUES(?)`, rawName)
	if err != nil {
		t.Fatalf("insertNamedSymbol failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertNamedSymbol LastInsertId failed: %v", err)
	}
	return id
}

func insertOrdinalSymbol(t *testing.T, db *sql.DB, dllName string, ordinal int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO symbols(dll_name, ordinal) VALUES(?, ?)`, dllName, ordinal)
	if err != nil {
		t.Fatalf("insertOrdinalSymbol failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertOrdinalSymbol LastInsertId failed: %v", err)
	}
	return id
}

func insertAvailability(t *testing.T, db *sql.DB, symID, dllID, osID int64) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO symbol_dll_os(sym_id, dll_id, os_id) VALUES(?, ?, ?)`, symID, dllID, osID); err != nil {
		t.Fatalf("insertAvailability failed: %v", err)
	}
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %d rows in %s, got %d", expected, table, count)
	}
}

func readMarker(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var ver int64
	if err := db.QueryRow(`SELECT ver FROM schema_version`).Scan(&ver); err != nil {
		t.Fatalf("failed to read schema_version: %v", err)
	}
	return ver
}

// snapshot renders the schema and every row of every table, so that two
// snapshots compare equal only if nothing observable changed.
func snapshot(t *testing.T, db *sql.DB) string {
	t.Helper()

	var b strings.Builder

	rows, err := db.Query(`SELECT type, name, tbl_name, COALESCE(sql, '') FROM sqlite_master ORDER BY type, name`)
	if err != nil {
		t.Fatalf("snapshot sqlite_master failed: %v", err)
	}
	var tables []string
	for rows.Next() {
		var typ, name, tblName, ddl string
		if err := rows.Scan(&typ, &name, &tblName, &ddl); err != nil {
			t.Fatalf("snapshot scan failed: %v", err)
		}
		fmt.Fprintf(&b, "master %s %s %s %s\n", typ, name, tblName, ddl)
		if typ == "table" {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("snapshot sqlite_master rows failed: %v", err)
	}
	_ = rows.Close()

	for _, table := range tables {
		lines := tableRows(t, db, table)
		sort.Strings(lines)
		for _, line := range lines {
			fmt.Fprintf(&b, "%s %s\n", table, line)
		}
	}

	return b.String()
}

func tableRows(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM "%s"`, table))
	if err != nil {
		t.Fatalf("snapshot of %s failed: %v", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("snapshot columns of %s failed: %v", table, err)
	}

	var lines []string
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			t.Fatalf("snapshot scan of %s failed: %v", table, err)
		}
		parts := make([]string, len(values))
		for i, v := range values {
			if raw, ok := v.([]byte); ok {
				v = string(raw)
			}
			parts[i] = fmt.Sprintf("%s=%v", cols[i], v)
		}
		lines = append(lines, strings.Join(parts, ","))
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("snapshot rows of %s failed: %v", table, err)
	}
	return lines
}
