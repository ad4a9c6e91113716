package monitor

import (
	"sync"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/presentation/display"
)

// StateManager keeps the outcome of the last completed cycle
type StateManager struct {
	mu sync.RWMutex

	matrix    model.Matrix
	status    display.Status
	hasMatrix bool
	cycles    int
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{}
}

// NextCycle increments and returns the cycle counter
func (sm *StateManager) NextCycle() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.cycles++
	return sm.cycles
}

// Cycles returns how many cycles have started
func (sm *StateManager) Cycles() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.cycles
}

// SetResult stores the matrix and status of a finished cycle
func (sm *StateManager) SetResult(m model.Matrix, status display.Status) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.matrix = m
	sm.status = status
	sm.hasMatrix = true
}

// LastResult returns the most recent matrix and status, if any
func (sm *StateManager) LastResult() (model.Matrix, display.Status, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.matrix, sm.status, sm.hasMatrix
}
