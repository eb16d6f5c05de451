package matrix

import (
	"fmt"
	"sync"
)

// Matrix is an ordered set of features. Declaration order is the
// order checks run and results are reported in. It is safe for
// concurrent use.
type Matrix struct {
	mu       sync.RWMutex
	order    []string
	features map[string]*Feature
}

// New creates an empty Matrix.
func New() *Matrix {
	return &Matrix{features: make(map[string]*Feature)}
}

// Add appends a feature. Returns an error if the feature is invalid
// or its ID is already registered.
func (m *Matrix) Add(f Feature) error {
	if err := f.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.features[f.ID]; exists {
		return fmt.Errorf("feature already registered: %s", f.ID)
	}
	m.order = append(m.order, f.ID)
	m.features[f.ID] = &f
	return nil
}

// Put replaces the declaration of an existing feature in place, or
// appends it when the ID is new.
func (m *Matrix) Put(f Feature) error {
	if err := f.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.features[f.ID]; !exists {
		m.order = append(m.order, f.ID)
	}
	m.features[f.ID] = &f
	return nil
}

// Get retrieves a feature by ID.
func (m *Matrix) Get(id string) (*Feature, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, exists := m.features[id]
	if !exists {
		return nil, fmt.Errorf("feature not found: %s", id)
	}
	return f, nil
}

// Features returns all features in declaration order.
func (m *Matrix) Features() []*Feature {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Feature, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.features[id])
	}
	return out
}

// Count returns the number of features.
func (m *Matrix) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
