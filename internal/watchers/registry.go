package watchers

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the watchers a coordinator fans out to, keyed by name.
type Registry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{watchers: make(map[string]Watcher)}
}

// Register adds w. Names must be unique because they key source bookkeeping.
func (r *Registry) Register(w Watcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.watchers[w.Name()]; exists {
		return fmt.Errorf("watcher %q already registered", w.Name())
	}
	r.watchers[w.Name()] = w
	return nil
}

// Get returns the watcher registered under name.
func (r *Registry) Get(name string) (Watcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.watchers[name]
	return w, ok
}

// List returns all watchers ordered by name.
func (r *Registry) List() []Watcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Watcher, 0, len(r.watchers))
	for _, w := range r.watchers {
		list = append(list, w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
