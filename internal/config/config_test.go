package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDataDirWithExplicitEnv(t *testing.T) {
	tmpDir := t.TempDir()
	customDir := filepath.Join(tmpDir, "custom")

	t.Setenv("WINAPIDB_DIR", customDir)
	t.Setenv("XDG_DATA_HOME", "")

	got := GetDataDir()
	if got != customDir {
		t.Fatalf("expected %q, got %q", customDir, got)
	}
}

func TestGetDataDirFallsBackToXDG(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := filepath.Join(tmpDir, "xdg")

	t.Setenv("WINAPIDB_DIR", "")
	t.Setenv("XDG_DATA_HOME", xdgDir)

	got := GetDataDir()
	want := filepath.Join(xdgDir, "winapidb")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("WINAPIDB_DIR", tmpDir)

	if got, want := GetDBPath(), filepath.Join(tmpDir, "winapi.sqlite3"); got != want {
		t.Fatalf("GetDBPath expected %q, got %q", want, got)
	}
}

func TestGetConfigPathUsesXDGConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if got, want := GetConfigPath(), filepath.Join(tmpDir, "winapidb", "config.yaml"); got != want {
		t.Fatalf("GetConfigPath expected %q, got %q", want, got)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %#v", cfg.Log)
	}
	if len(cfg.OperatingSystems) != len(Default().OperatingSystems) {
		t.Fatalf("expected default operating systems, got %d", len(cfg.OperatingSystems))
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  path: /var/lib/winapidb/winapi.sqlite3
log:
  level: debug
operating_systems:
  - short_name: win10
    long_name: Windows 10
  - short_name: win11
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got := cfg.DatabasePath(); got != "/var/lib/winapidb/winapi.sqlite3" {
		t.Fatalf("DatabasePath expected override, got %q", got)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("expected default log format to survive merge, got %q", cfg.Log.Format)
	}
	if len(cfg.OperatingSystems) != 2 || cfg.OperatingSystems[1].ShortName != "win11" {
		t.Fatalf("unexpected operating systems: %#v", cfg.OperatingSystems)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "log: [",
		"bad format":    "log:\n  format: xml\n",
		"empty os name": "operating_systems:\n  - long_name: Windows\n",
		"duplicate os":  "operating_systems:\n  - short_name: win7\n  - short_name: win7\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected Load to fail for %q", content)
			}
		})
	}
}

func TestDatabasePathDefaultsToDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("WINAPIDB_DIR", tmpDir)

	cfg := Default()
	if got, want := cfg.DatabasePath(), filepath.Join(tmpDir, "winapi.sqlite3"); got != want {
		t.Fatalf("DatabasePath expected %q, got %q", want, got)
	}
}
