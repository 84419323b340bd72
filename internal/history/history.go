// Package history implements a per-entity bounded undo/redo store of
// full-frame pixel snapshots. It is used once for the layer stack and once,
// with a fresh Manager instance, for the floating selection's own sub-history.
package history

import (
	"errors"
	"image"

	"github.com/Maoric2018/painting/internal/raster"
)

// DefaultLimit is the number of undo entries retained per entity before the
// oldest is evicted. The value is tunable via configuration.
const DefaultLimit = 30

// ErrAlreadyInitialized reports an Initialize call for an entity that is
// still live. It indicates a wiring bug in the caller.
var ErrAlreadyInitialized = errors.New("history: entity already initialized")

// EntityID identifies an entity (a layer, or a floating selection) that owns
// a history.
type EntityID int64

// Snapshot is an immutable full-frame state of an entity's surface. Origin
// records the surface's position at capture time; layer snapshots leave it
// zero, floating-selection snapshots store the region's canvas position so
// undo restores placement along with pixels. Callers must not mutate Pix.
type Snapshot struct {
	Pix    *image.RGBA
	Origin image.Point
}

// Capture clones src into a new Snapshot at the given origin.
func Capture(src *image.RGBA, origin image.Point) Snapshot {
	return Snapshot{Pix: raster.Clone(src), Origin: origin}
}

// Manager holds the undo and redo stacks of every registered entity.
type Manager struct {
	limit int
	undo  map[EntityID][]Snapshot
	redo  map[EntityID][]Snapshot
}

// NewManager creates a Manager retaining at most limit undo entries per
// entity. A non-positive limit selects DefaultLimit.
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		limit: limit,
		undo:  make(map[EntityID][]Snapshot),
		redo:  make(map[EntityID][]Snapshot),
	}
}

// Initialize registers an entity with its baseline snapshot. The baseline
// can never be removed by Undo. Initializing a live entity is an error.
func (m *Manager) Initialize(id EntityID, baseline Snapshot) error {
	if _, ok := m.undo[id]; ok {
		return ErrAlreadyInitialized
	}
	m.undo[id] = []Snapshot{baseline}
	m.redo[id] = nil
	return nil
}

// Save pushes a new state for the entity and clears its redo stack. When the
// undo stack exceeds the retention limit the oldest entry is evicted. A save
// for an unregistered entity is silently ignored.
func (m *Manager) Save(id EntityID, snap Snapshot) {
	stack, ok := m.undo[id]
	if !ok {
		return
	}
	stack = append(stack, snap)
	if len(stack) > m.limit {
		stack = append(stack[:0], stack[1:]...)
	}
	m.undo[id] = stack
	m.redo[id] = nil
}

// Undo steps the entity back one state and returns the snapshot the caller
// should apply to the live surface. At the baseline (or for an unregistered
// entity) nothing changes and the current top is returned with ok=false.
func (m *Manager) Undo(id EntityID) (snap Snapshot, ok bool) {
	stack, live := m.undo[id]
	if !live || len(stack) == 0 {
		return Snapshot{}, false
	}
	if len(stack) == 1 {
		return stack[0], false
	}
	top := stack[len(stack)-1]
	m.undo[id] = stack[:len(stack)-1]
	m.redo[id] = append(m.redo[id], top)
	return m.undo[id][len(m.undo[id])-1], true
}

// Redo reverses the most recent Undo and returns the restored snapshot.
// No-op when the redo stack is empty.
func (m *Manager) Redo(id EntityID) (snap Snapshot, ok bool) {
	stack := m.redo[id]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	top := stack[len(stack)-1]
	m.redo[id] = stack[:len(stack)-1]
	m.undo[id] = append(m.undo[id], top)
	return top, true
}

// Len returns the number of undo entries for the entity. Zero means the
// entity has no initialized history.
func (m *Manager) Len(id EntityID) int { return len(m.undo[id]) }

// RedoLen returns the number of redo entries for the entity.
func (m *Manager) RedoLen(id EntityID) int { return len(m.redo[id]) }

// Top returns the entity's current state without modifying the stacks.
func (m *Manager) Top(id EntityID) (Snapshot, bool) {
	stack := m.undo[id]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	return stack[len(stack)-1], true
}

// Snapshots returns a copy of the entity's undo stack, oldest first. The
// snapshots themselves are shared and must not be mutated.
func (m *Manager) Snapshots(id EntityID) []Snapshot {
	stack := m.undo[id]
	out := make([]Snapshot, len(stack))
	copy(out, stack)
	return out
}

// Destroy drops both stacks for the entity, releasing the snapshots.
func (m *Manager) Destroy(id EntityID) {
	delete(m.undo, id)
	delete(m.redo, id)
}

// ReplaceTopWithSequence pops the entity's current top entry and pushes every
// snapshot in snaps, in order. The selection commit uses this to expand one
// coarse cut checkpoint into a checkpoint per floating edit without touching
// earlier history. Eviction applies as with Save; the redo stack is cleared.
func (m *Manager) ReplaceTopWithSequence(id EntityID, snaps []Snapshot) {
	stack, ok := m.undo[id]
	if !ok || len(stack) == 0 || len(snaps) == 0 {
		return
	}
	stack = stack[:len(stack)-1]
	stack = append(stack, snaps...)
	for len(stack) > m.limit {
		stack = append(stack[:0], stack[1:]...)
	}
	m.undo[id] = stack
	m.redo[id] = nil
}
