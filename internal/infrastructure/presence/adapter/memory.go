package adapter

import (
	"context"
	"sync"

	"pulsechat/internal/infrastructure/presence/port"
)

// MemoryTracker is the in-process port.Tracker used for single-node
// deployments and tests.
type MemoryTracker struct {
	mu    sync.RWMutex
	conns map[string]map[string]struct{} // userID -> connection IDs
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{conns: make(map[string]map[string]struct{})}
}

var _ port.Tracker = (*MemoryTracker)(nil)

func (t *MemoryTracker) Connect(_ context.Context, userID, connID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.conns[userID]
	if set == nil {
		set = make(map[string]struct{})
		t.conns[userID] = set
	}
	set[connID] = struct{}{}
	return nil
}

func (t *MemoryTracker) Disconnect(_ context.Context, userID, connID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.conns[userID]
	if set == nil {
		return true, nil
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(t.conns, userID)
		return true, nil
	}
	return false, nil
}

func (t *MemoryTracker) IsOnline(_ context.Context, userID string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns[userID]) > 0, nil
}

func (t *MemoryTracker) BatchIsOnline(_ context.Context, userIDs []string) (map[string]bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		result[id] = len(t.conns[id]) > 0
	}
	return result, nil
}
