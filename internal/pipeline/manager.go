package pipeline

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/metrics"
)

// Manager holds independent sessions keyed by ID.
type Manager struct {
	cfg      *config.PlannerConfig
	recorder *metrics.Recorder
	opts     []SessionOption

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager whose sessions share cfg and recorder.
// recorder may be nil.
func NewManager(cfg *config.PlannerConfig, recorder *metrics.Recorder, opts ...SessionOption) *Manager {
	return &Manager{
		cfg:      cfg,
		recorder: recorder,
		opts:     append([]SessionOption{WithRecorder(recorder)}, opts...),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open creates and registers a new session over in.
func (m *Manager) Open(in *v1alpha1.PlanInputs) *Session {
	s := NewSession(m.cfg, in, m.opts...)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	n := len(m.sessions)
	m.mu.Unlock()
	m.recorder.SetSessions(n)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close removes the session with the given id and reports whether it existed.
func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	m.recorder.SetSessions(n)
	return ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the ids of all open sessions in lexical order.
func (m *Manager) IDs() []uuid.UUID {
	m.mu.RLock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids
}
