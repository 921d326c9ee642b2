// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"sort"
	"sync"
)

// Factory creates a surface.
type Factory func(opts Options) (Surface, error)

// RegistryEntry describes a registered surface kind.
type RegistryEntry struct {
	Name string

	// Priority orders kinds for NewSurface; higher wins.
	Priority int

	Factory Factory

	// Available reports whether the kind can be created on this host.
	Available func() bool
}

var globalRegistry = NewRegistry()

// Registry maps surface kind names to factories. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds a kind to the global registry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// List returns the registered kinds, highest priority first.
func List() []string {
	return globalRegistry.List()
}

// NewSurface creates a surface of the highest-priority available kind.
func NewSurface(opts Options) (Surface, error) {
	return globalRegistry.NewSurface(opts)
}

// NewSurfaceByName creates a surface of the named kind.
func NewSurfaceByName(name string, opts Options) (Surface, error) {
	return globalRegistry.NewSurfaceByName(name, opts)
}

// Register adds or replaces a kind. A nil available func means always
// available.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a kind.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Get returns the entry of a kind.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// List returns the registered kinds, highest priority first.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

// NewSurface tries the available kinds by priority and returns the first
// surface created.
func (r *Registry) NewSurface(opts Options) (Surface, error) {
	r.mu.RLock()
	names := r.sortedNames(true)
	r.mu.RUnlock()

	var lastErr error
	for _, name := range names {
		s, err := r.NewSurfaceByName(name, opts)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoSurfaceAvailable
}

// NewSurfaceByName creates a surface of the named kind.
func (r *Registry) NewSurfaceByName(name string, opts Options) (Surface, error) {
	e, ok := r.Get(name)
	if !ok {
		return nil, &KindNotFoundError{Name: name}
	}
	if !e.Available() {
		return nil, &KindUnavailableError{Name: name}
	}
	return e.Factory(opts)
}

func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// ErrNoSurfaceAvailable is returned when no registered kind is available.
var ErrNoSurfaceAvailable = errors.New("surface: no surface available")

// KindNotFoundError is returned for unregistered kind names.
type KindNotFoundError struct {
	Name string
}

func (e *KindNotFoundError) Error() string {
	return "surface: kind not found: " + e.Name
}

// KindUnavailableError is returned for kinds unavailable on this host.
type KindUnavailableError struct {
	Name string
}

func (e *KindUnavailableError) Error() string {
	return "surface: kind unavailable: " + e.Name
}

func init() {
	Register("image", 10, func(opts Options) (Surface, error) {
		return NewImageSurface(opts.Width, opts.Height), nil
	}, nil)
	Register("headless", 0, func(opts Options) (Surface, error) {
		return NewHeadlessSurface(opts.Width, opts.Height), nil
	}, nil)
}
