package plugins

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

// Registry maintains the registered task definitions.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]TaskDefinition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: map[string]TaskDefinition{}}
}

// Register installs a task definition. Duplicate IDs are rejected.
func (r *Registry) Register(def TaskDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	normalized := def.Normalized()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[normalized.ID]; exists {
		return fmt.Errorf("plugin: %s already registered", normalized.ID)
	}
	r.tasks[normalized.ID] = normalized
	return nil
}

// Resolve returns a registered definition by ID.
func (r *Registry) Resolve(id string) (TaskDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tasks[id]
	return def, ok
}

// IDs returns the registered task identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Tasks returns every registered definition in ID order.
func (r *Registry) Tasks() []TaskDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]TaskDefinition, 0, len(r.tasks))
	for _, def := range r.tasks {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Discover loads every YAML and Go definition under dir and registers
// it, naming both files when two definitions claim the same ID.
func Discover(reg *Registry, dir string) error {
	if reg == nil {
		return nil
	}
	defs, err := loadAllDefinitionFiles(dir)
	if err != nil {
		return err
	}
	seen := map[string]string{}
	for _, file := range defs {
		if existing, ok := seen[file.Definition.ID]; ok {
			return fmt.Errorf("plugin: duplicate task id %s (%s and %s)", file.Definition.ID, existing, file.Path)
		}
		seen[file.Definition.ID] = file.Path
		if err := reg.Register(file.Definition); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", file.Definition.ID, file.Path, err)
		}
	}
	return nil
}

func loadAllDefinitionFiles(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(filepath.Clean(dir))
	if err != nil {
		return nil, err
	}
	return append(yamlDefs, goDefs...), nil
}
