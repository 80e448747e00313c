package model

import (
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Lab is one tenant of the dashboard
type Lab struct {
	ID           string
	Name         string
	SlackChannel string // optional channel for standup announcements
}

// LabRegistry holds the configured labs. It is read-mostly after startup but
// guarded anyway because the announce worker and request handlers share it.
type LabRegistry struct {
	mu   sync.RWMutex
	labs map[string]*Lab
}

// NewLabRegistry creates an empty lab registry
func NewLabRegistry() *LabRegistry {
	return &LabRegistry{
		labs: make(map[string]*Lab),
	}
}

// Register adds a lab to the registry
func (r *LabRegistry) Register(lab *Lab) error {
	if lab.ID == "" {
		return goerr.New("lab ID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.labs[lab.ID]; exists {
		return goerr.New("duplicate lab ID", goerr.V("id", lab.ID))
	}
	r.labs[lab.ID] = lab
	return nil
}

// Get retrieves a lab by ID
func (r *LabRegistry) Get(id string) (*Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lab, exists := r.labs[id]
	if !exists {
		return nil, goerr.New("unknown lab", goerr.V("id", id))
	}
	return lab, nil
}

// Has reports whether a lab is registered
func (r *LabRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.labs[id]
	return exists
}

// List returns all registered labs ordered by ID
func (r *LabRegistry) List() []*Lab {
	r.mu.RLock()
	defer r.mu.RUnlock()
	labs := make([]*Lab, 0, len(r.labs))
	for _, lab := range r.labs {
		labs = append(labs, lab)
	}
	sort.Slice(labs, func(i, j int) bool { return labs[i].ID < labs[j].ID })
	return labs
}
