// Package store provides record-store implementations: an in-memory store
// with an optional seed fleet for development, and a PostgreSQL store for
// production.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kopong25/freightquick/core/model"
	corestore "github.com/kopong25/freightquick/core/store"
)

// Memory is an in-memory RecordStore. Safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	drivers     map[string]model.Driver
	loads       map[string]model.Load
	assignments map[string]model.Assignment
	routes      map[string]model.Route
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		drivers:     make(map[string]model.Driver),
		loads:       make(map[string]model.Load),
		assignments: make(map[string]model.Assignment),
		routes:      make(map[string]model.Route),
	}
}

// PutDriver inserts or replaces a driver record.
func (m *Memory) PutDriver(d model.Driver) {
	m.mu.Lock()
	m.drivers[d.ID] = d
	m.mu.Unlock()
}

// PutLoad inserts or replaces a load record.
func (m *Memory) PutLoad(l model.Load) {
	m.mu.Lock()
	m.loads[l.ID] = l
	m.mu.Unlock()
}

func (m *Memory) Drivers(context.Context) ([]model.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Driver(_ context.Context, id string) (model.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return model.Driver{}, corestore.ErrNotFound
	}
	return d, nil
}

func (m *Memory) Loads(context.Context) ([]model.Load, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Load, 0, len(m.loads))
	for _, l := range m.loads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Load(_ context.Context, id string) (model.Load, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loads[id]
	if !ok {
		return model.Load{}, corestore.ErrNotFound
	}
	return l, nil
}

func (m *Memory) SaveAssignment(_ context.Context, a model.Assignment) error {
	m.mu.Lock()
	m.assignments[a.ID] = a
	m.mu.Unlock()
	return nil
}

func (m *Memory) SaveRoute(_ context.Context, r model.Route) error {
	m.mu.Lock()
	m.routes[r.DriverID] = r
	m.mu.Unlock()
	return nil
}

// Assignment returns a saved assignment, for tests and diagnostics.
func (m *Memory) Assignment(id string) (model.Assignment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	return a, ok
}

// Route returns the saved route for a driver, for tests and diagnostics.
func (m *Memory) Route(driverID string) (model.Route, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.routes[driverID]
	return r, ok
}

func (m *Memory) Close() error { return nil }
