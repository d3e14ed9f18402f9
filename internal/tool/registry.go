package tool

import (
	"fmt"
	"sort"
	"sync"

	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/model"
)

// Registry maps tool names to implementations. Safe for concurrent use;
// registration normally happens once at startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool when its name is not already in use.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = t
	return nil
}

// Resolve fetches a tool by name.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", app_errors.ErrToolNotFound, name)
	}
	return t, nil
}

// Definitions returns the wire definitions of all registered tools, sorted
// by name so the model sees a stable tool list across rounds.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]model.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, Definition(t))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
