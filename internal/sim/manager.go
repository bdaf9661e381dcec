package sim

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Manager owns the in-memory table of simulation runs. Runs live only
// for the life of the process; completed runs are archived through the
// report repository, not here.
type Manager struct {
	mu   sync.RWMutex
	runs map[string]*Simulation
}

func NewManager() *Manager {
	return &Manager{runs: make(map[string]*Simulation)}
}

// Create builds a new run under a fresh id.
func (m *Manager) Create(cfg Config) *Simulation {
	s := NewSimulation(uuid.NewString(), cfg)
	m.mu.Lock()
	m.runs[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a run by id.
func (m *Manager) Get(id string) (*Simulation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.runs[id]
	return s, ok
}

// List returns all runs sorted by id for stable output.
func (m *Manager) List() []*Simulation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Simulation, 0, len(m.runs))
	for _, s := range m.runs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
