// Package session holds the datasets a conversation works on and mirrors the
// externally visible file names into a state store.
package session

import (
	"sync"

	"car-market-assistant/internal/models"
)

// Registry holds the current dataset and the history collection of one session. Load and
// LoadHistory replace wholesale; nothing is merged or appended.
type Registry struct {
	mu      sync.RWMutex
	current *models.Dataset
	history []models.Dataset
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Load replaces the current dataset.
func (r *Registry) Load(ds models.Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &ds
}

// LoadHistory replaces the whole history collection.
func (r *Registry) LoadHistory(datasets []models.Dataset) {
	cp := make([]models.Dataset, len(datasets))
	copy(cp, datasets)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = cp
}

// Current returns the current dataset, if one was loaded.
func (r *Registry) Current() (models.Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return models.Dataset{}, false
	}
	return *r.current, true
}

// History returns a copy of the history collection.
func (r *Registry) History() []models.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]models.Dataset, len(r.history))
	copy(cp, r.history)
	return cp
}

// State returns the file names other systems see for this session.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := State{HistoryFiles: make([]string, 0, len(r.history))}
	if r.current != nil {
		st.CurrentFile = r.current.SourceName
	}
	for _, ds := range r.history {
		st.HistoryFiles = append(st.HistoryFiles, ds.SourceName)
	}
	return st
}
