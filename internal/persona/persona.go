// Package persona holds the behavioral prompt blocks selectable per
// request. Built-in personas ship embedded; a config directory can add or
// override them.
package persona

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// GenericKey is the fallback persona used when a request names an unknown
// persona or none at all.
const GenericKey = "mentor"

type Persona struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Block string `yaml:"block"`
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// Registry is a read-only persona lookup, built once at startup and shared
// across requests.
type Registry struct {
	personas map[string]Persona
}

// LoadRegistry builds the registry from embedded defaults plus any *.yaml
// files under dir. Directory personas override embedded ones with the same
// key. An empty dir loads defaults only.
func LoadRegistry(dir string) (*Registry, error) {
	r := &Registry{personas: make(map[string]Persona)}

	var defaults personaFile
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		return nil, fmt.Errorf("parse embedded personas: %w", err)
	}
	for _, p := range defaults.Personas {
		r.personas[p.Key] = p
	}

	if dir != "" {
		if err := r.loadDir(dir); err != nil {
			return nil, err
		}
	}

	if _, ok := r.personas[GenericKey]; !ok {
		return nil, fmt.Errorf("persona registry missing fallback %q", GenericKey)
	}
	return r, nil
}

func (r *Registry) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read persona dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read persona file %s: %w", path, err)
		}
		var file personaFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse persona file %s: %w", path, err)
		}
		for _, p := range file.Personas {
			if p.Key == "" || p.Block == "" {
				return fmt.Errorf("persona in %s missing key or block", path)
			}
			r.personas[p.Key] = p
		}
	}
	return nil
}

// Get returns the persona for key, falling back to the generic persona for
// unknown or empty keys.
func (r *Registry) Get(key string) Persona {
	if p, ok := r.personas[key]; ok {
		return p
	}
	return r.personas[GenericKey]
}

// Keys returns all registered persona keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.personas))
	for k := range r.personas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
