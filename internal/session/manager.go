package session

import (
	"context"
	"sync"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/models"

	"github.com/google/uuid"
)

// Manager maps session IDs to registries for the workflow workers. With a TTL, sessions
// untouched for longer than the TTL are dropped by Sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	store    StateStore
	logger   logger.Logger
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	reg      *Registry
	lastUsed time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL evicts sessions idle for longer than ttl. Zero keeps sessions until End.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

func NewManager(store StateStore, log logger.Logger, opts ...Option) *Manager {
	if store == nil {
		store = NewMemoryStateStore()
	}
	m := &Manager{
		sessions: make(map[string]*entry),
		store:    store,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts an empty session and returns its ID.
func (m *Manager) Create() (string, *Registry) {
	id := uuid.NewString()
	reg := NewRegistry()

	m.mu.Lock()
	m.sessions[id] = &entry{reg: reg, lastUsed: m.now()}
	m.mu.Unlock()

	return id, reg
}

// Get returns the registry of an existing session.
func (m *Manager) Get(sessionID string) (*Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}
	e.lastUsed = m.now()
	return e.reg, nil
}

// GetOrCreate returns the registry for sessionID, creating an empty one when unknown.
func (m *Manager) GetOrCreate(sessionID string) *Registry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		e = &entry{reg: NewRegistry()}
		m.sessions[sessionID] = e
	}
	e.lastUsed = m.now()
	return e.reg
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops every session idle for longer than the TTL and returns how many were dropped.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.ttl <= 0 {
		return 0
	}

	cutoff := m.now().Add(-m.ttl)
	var expired []string

	m.mu.Lock()
	for id, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.deleteState(ctx, id)
	}
	if len(expired) > 0 {
		m.logger.Info("expired sessions dropped", map[string]interface{}{
			"count":     len(expired),
			"remaining": m.Len(),
		})
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// LoadCurrent replaces the session's current dataset and persists the new state.
func (m *Manager) LoadCurrent(ctx context.Context, sessionID string, ds models.Dataset) {
	reg := m.GetOrCreate(sessionID)
	reg.Load(ds)
	m.persist(ctx, sessionID, reg)
}

// LoadHistory replaces the session's history collection and persists the new state.
func (m *Manager) LoadHistory(ctx context.Context, sessionID string, datasets []models.Dataset) {
	reg := m.GetOrCreate(sessionID)
	reg.LoadHistory(datasets)
	m.persist(ctx, sessionID, reg)
}

// State reads the persisted state of a session.
func (m *Manager) State(ctx context.Context, sessionID string) (State, error) {
	return m.store.Get(ctx, sessionID)
}

// End forgets a session.
func (m *Manager) End(ctx context.Context, sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	m.deleteState(ctx, sessionID)
}

func (m *Manager) deleteState(ctx context.Context, sessionID string) {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.logger.Warn("failed to delete session state", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
}

// persist failures are logged; the in-memory registry stays authoritative.
func (m *Manager) persist(ctx context.Context, sessionID string, reg *Registry) {
	state := reg.State()
	if err := m.store.Save(ctx, sessionID, state); err != nil {
		m.logger.Warn("failed to save session state", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return
	}
	m.logger.Debug("session state saved", map[string]interface{}{
		"sessionId":    sessionID,
		"currentFile":  state.CurrentFile,
		"historyFiles": len(state.HistoryFiles),
	})
}
