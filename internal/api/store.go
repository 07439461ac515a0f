package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/campaign-estimator/internal/demand"
	"github.com/ignite/campaign-estimator/internal/tabular"
)

// Dataset is one uploaded campaign table held for the duration of the
// session. Nothing here survives a process restart.
type Dataset struct {
	ID          string
	Filename    string
	Table       *tabular.Table
	Diagnostics demand.Diagnostics
	UploadedAt  time.Time
}

// Store is the in-memory dataset registry keyed by generated id.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewStore creates an empty dataset store.
func NewStore() *Store {
	return &Store{datasets: make(map[string]*Dataset)}
}

// Put registers an uploaded table under a fresh id.
func (s *Store) Put(filename string, table *tabular.Table, diag demand.Diagnostics) *Dataset {
	ds := &Dataset{
		ID:          uuid.NewString(),
		Filename:    filename,
		Table:       table,
		Diagnostics: diag,
		UploadedAt:  time.Now(),
	}
	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.mu.Unlock()
	return ds
}

// Get returns the dataset for an id, or nil when unknown.
func (s *Store) Get(id string) *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.datasets[id]
}

// Delete removes a dataset. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.datasets, id)
	s.mu.Unlock()
}
