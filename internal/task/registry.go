// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateTask is returned when a basename is registered twice.
var ErrDuplicateTask = errors.New("duplicate task")

// Registry maps task basenames to their definitions.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Definition),
	}
}

// Register validates def and adds it under its basename.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return errors.New("cannot register nil task")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[def.Name]; exists {
		return fmt.Errorf("%w: %q already registered", ErrDuplicateTask, def.Name)
	}
	r.tasks[def.Name] = def
	return nil
}

// MustRegister is like Register but panics on error.
// Use it for definitions compiled into the binary.
func (r *Registry) MustRegister(def *Definition) {
	if err := r.Register(def); err != nil {
		panic(fmt.Sprintf("task: %v", err))
	}
}

// Lookup retrieves a task by basename.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.tasks[name]
	return def, ok
}

// Names returns all registered basenames in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered definitions ordered by basename.
func (r *Registry) All() []*Definition {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(names))
	for _, name := range names {
		if def, ok := r.tasks[name]; ok {
			defs = append(defs, def)
		}
	}
	return defs
}
