// Package metafunc holds the allow-list of exports that are tagged as
// meta-functions: conventional entry points such as DllMain that say nothing
// about the API a DLL offers.
package metafunc

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultList []byte

// Entry is one allow-listed export name.
type Entry struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// AllowList is the document stored in default.yaml or a replacement file.
type AllowList struct {
	MetaFunctions []Entry `yaml:"meta_functions"`
}

// Default returns the built-in list.
func Default() (AllowList, error) {
	list, err := Parse(defaultList)
	if err != nil {
		return AllowList{}, fmt.Errorf("built-in meta-function list: %w", err)
	}
	return list, nil
}

// Load reads a replacement list from path. An empty path returns Default().
func Load(path string) (AllowList, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AllowList{}, fmt.Errorf("failed to read meta-function list: %w", err)
	}

	list, err := Parse(data)
	if err != nil {
		return AllowList{}, fmt.Errorf("meta-function list %s: %w", path, err)
	}
	return list, nil
}

// Parse decodes and validates a list. Names must be non-empty and unique.
func Parse(data []byte) (AllowList, error) {
	var list AllowList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return AllowList{}, err
	}

	if len(list.MetaFunctions) == 0 {
		return AllowList{}, errors.New("meta_functions is empty")
	}

	seen := make(map[string]struct{}, len(list.MetaFunctions))
	for i, entry := range list.MetaFunctions {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return AllowList{}, fmt.Errorf("meta_functions[%d]: name is required", i)
		}
		if name != entry.Name {
			return AllowList{}, fmt.Errorf("meta_functions[%d]: name %q has surrounding whitespace", i, entry.Name)
		}
		if _, dup := seen[name]; dup {
			return AllowList{}, fmt.Errorf("meta_functions[%d]: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}
	}

	return list, nil
}

// Names returns the export names in list order.
func (l AllowList) Names() []string {
	names := make([]string, 0, len(l.MetaFunctions))
	for _, entry := range l.MetaFunctions {
		names = append(names, entry.Name)
	}
	return names
}

// Contains reports whether name is allow-listed.
func (l AllowList) Contains(name string) bool {
	for _, entry := range l.MetaFunctions {
		if entry.Name == name {
			return true
		}
	}
	return false
}
