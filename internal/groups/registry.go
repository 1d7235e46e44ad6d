package groups

import (
	"sort"
	"sync"

	"github.com/drew/studydash/internal/charts"
)

// Instance is a live chart bound to one canvas. It must be destroyed before
// its canvas is reused.
type Instance struct {
	Canvas     string
	Chart      *charts.Chart
	Generation uint64

	mu        sync.Mutex
	destroyed bool
}

// Destroy releases the instance
func (i *Instance) Destroy() {
	i.mu.Lock()
	i.destroyed = true
	i.mu.Unlock()
}

// Destroyed reports whether Destroy was called
func (i *Instance) Destroyed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}

// Registry maps canvas ids to their live instance
type Registry struct {
	mu        sync.Mutex
	instances map[string]*Instance
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{instances: map[string]*Instance{}}
}

// Register binds inst to its canvas, destroying any instance it replaces
func (r *Registry) Register(inst *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.instances[inst.Canvas]; ok && old != inst {
		old.Destroy()
	}
	r.instances[inst.Canvas] = inst
}

// Get returns the instance on canvas id
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	return inst, ok
}

// Len returns the number of live instances
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// IDs returns the canvas ids of the live instances, sorted
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idsLocked()
}

func (r *Registry) idsLocked() []string {
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DestroyAll destroys every instance, empties the registry and returns the
// destroyed canvas ids, sorted
func (r *Registry) DestroyAll() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.idsLocked()
	for _, inst := range r.instances {
		inst.Destroy()
	}
	r.instances = map[string]*Instance{}
	return ids
}
