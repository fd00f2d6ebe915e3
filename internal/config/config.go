// Package config resolves where winapidb keeps its data and loads the
// optional YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "winapidb"
	dbFileName = "winapi.sqlite3"
	configFile = "config.yaml"
)

// Config is the on-disk configuration. Every field is optional.
type Config struct {
	Database         DatabaseConfig          `yaml:"database"`
	Log              LogConfig               `yaml:"log"`
	MetaFunctions    MetaFunctionsConfig     `yaml:"meta_functions"`
	OperatingSystems []OperatingSystemConfig `yaml:"operating_systems"`
}

// DatabaseConfig selects the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetaFunctionsConfig points at a replacement meta-function allow-list. An
// empty path selects the built-in list.
type MetaFunctionsConfig struct {
	AllowList string `yaml:"allow_list"`
}

// OperatingSystemConfig is one row seeded into operating_systems.
type OperatingSystemConfig struct {
	ShortName string `yaml:"short_name"`
	LongName  string `yaml:"long_name"`
}

// GetDataDir resolves the base directory for winapidb storage. WINAPIDB_DIR
// wins, then $XDG_DATA_HOME/winapidb, then ~/.local/share/winapidb.
func GetDataDir() string {
	if explicit := os.Getenv("WINAPIDB_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the default path of the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), dbFileName)
}

// GetConfigPath returns $XDG_CONFIG_HOME/winapidb/config.yaml.
func GetConfigPath() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName, configFile)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		OperatingSystems: []OperatingSystemConfig{
			{ShortName: "win2k", LongName: "Windows 2000"},
			{ShortName: "winxp", LongName: "Windows XP"},
			{ShortName: "vista", LongName: "Windows Vista"},
			{ShortName: "win7", LongName: "Windows 7"},
			{ShortName: "win8", LongName: "Windows 8"},
			{ShortName: "win81", LongName: "Windows 8.1"},
			{ShortName: "win10", LongName: "Windows 10"},
			{ShortName: "win11", LongName: "Windows 11"},
		},
	}
}

// Load reads the file at configPath over the defaults. An empty path means
// GetConfigPath(); a missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	defaults := Default()

	if configPath == "" {
		configPath = GetConfigPath()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}

	if err := fileCfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	defaults.Merge(&fileCfg)
	return defaults, nil
}

// Merge copies every field set in other over c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Database.Path != "" {
		c.Database.Path = other.Database.Path
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if other.MetaFunctions.AllowList != "" {
		c.MetaFunctions.AllowList = other.MetaFunctions.AllowList
	}
	if len(other.OperatingSystems) > 0 {
		c.OperatingSystems = other.OperatingSystems
	}
}

// DatabasePath returns the configured database path or GetDBPath().
func (c *Config) DatabasePath() string {
	if c != nil && c.Database.Path != "" {
		return c.Database.Path
	}
	return GetDBPath()
}

func (c *Config) validate() error {
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	seen := make(map[string]struct{}, len(c.OperatingSystems))
	for i, osCfg := range c.OperatingSystems {
		if osCfg.ShortName == "" {
			return fmt.Errorf("operating_systems[%d]: short_name is required", i)
		}
		if _, dup := seen[osCfg.ShortName]; dup {
			return fmt.Errorf("operating_systems[%d]: duplicate short_name %q", i, osCfg.ShortName)
		}
		seen[osCfg.ShortName] = struct{}{}
	}
	return nil
}
