// Package file loads machine definitions from YAML or JSON files.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/turingviz/internal/dto"
	"github.com/aretw0/turingviz/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions recognised as machine documents.
var Extensions = []string{".yaml", ".yml", ".json"}

// ReadDefinition reads a single definition document.
// When the document has no id, the file name without extension is used.
func ReadDefinition(path string) (domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("failed to read machine file: %w", err)
	}
	def, err := ParseDefinition(data, filepath.Ext(path))
	if err != nil {
		return domain.Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	if def.ID == "" {
		def.ID = trimExtension(filepath.Base(path))
	}
	return def, nil
}

// ParseDefinition decodes a definition document. ext selects the syntax;
// anything other than ".json" is parsed as YAML.
func ParseDefinition(data []byte, ext string) (domain.Definition, error) {
	raw := make(map[string]any)
	if strings.ToLower(ext) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return domain.Definition{}, fmt.Errorf("failed to parse json: %w", err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.Definition{}, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	meta, err := dto.Decode(raw)
	if err != nil {
		return domain.Definition{}, err
	}
	return meta.ToDefinition(), nil
}

// Loader serves definitions read from files and directories.
// Documents are read once, at construction.
type Loader struct {
	defs    map[string]domain.Definition
	sources map[string]string
}

// NewLoader reads every path. A directory contributes all of its machine
// documents (non-recursive); a file contributes itself.
// Two documents resolving to the same ID are an error.
func NewLoader(paths ...string) (*Loader, error) {
	l := &Loader{
		defs:    make(map[string]domain.Definition),
		sources: make(map[string]string),
	}
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			def, err := ReadDefinition(f)
			if err != nil {
				return nil, err
			}
			if existing, ok := l.sources[def.ID]; ok {
				return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", def.ID, existing, f)
			}
			l.sources[def.ID] = f
			l.defs[def.ID] = def
		}
	}
	return l, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isMachineFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isMachineFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Get implements ports.MachineLoader.
func (l *Loader) Get(_ context.Context, id string) (domain.Definition, error) {
	def, ok := l.defs[trimExtension(id)]
	if !ok {
		return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, id)
	}
	return def.Clone(), nil
}

// List implements ports.MachineLoader.
func (l *Loader) List(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(l.defs))
	for id := range l.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Source returns the file a definition was read from.
func (l *Loader) Source(id string) (string, bool) {
	src, ok := l.sources[id]
	return src, ok
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" && isMachineFile(id) {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
