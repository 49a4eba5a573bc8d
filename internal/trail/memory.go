package trail

import (
	"context"
	"sync"
	"time"
)

// MemoryStore provides an in-memory implementation useful for tests and for
// running the engine without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	decisions []*Decision
	byID      map[string]*Decision
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]*Decision{}}
}

func (m *MemoryStore) AppendDecision(ctx context.Context, d *Decision) error {
	if d.ID == "" {
		d.ID = NewUUID()
	}
	if d.Ts.IsZero() {
		d.Ts = time.Now().UTC()
	}
	stored := *d
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, &stored)
	m.byID[stored.ID] = &stored
	return nil
}

func (m *MemoryStore) GetDecision(ctx context.Context, id string) (*Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryStore) ListDecisions(ctx context.Context, f Filter) ([]*Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Decision
	for i := len(m.decisions) - 1; i >= 0; i-- {
		d := m.decisions[i]
		if f.AgreementID != "" && d.AgreementID != f.AgreementID {
			continue
		}
		if f.ActivityID != "" && d.ActivityID != f.ActivityID {
			continue
		}
		if f.Kind != "" && d.Kind != f.Kind {
			continue
		}
		cp := *d
		out = append(out, &cp)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
