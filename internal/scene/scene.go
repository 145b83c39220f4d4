// Package scene holds the ordered, append-only shape collection for one
// room and the camera that maps it onto the screen.
package scene

import (
	"sync"

	"inkroom/internal/shape"
)

// Scene is the z-ordered shape list: insertion order is draw order, later
// shapes sit on top. It grows by append only, from local commits and remote
// broadcasts; the network pump appends concurrently with UI reads, so access
// is guarded.
type Scene struct {
	mu     sync.RWMutex
	shapes []shape.Shape
}

func New() *Scene {
	return &Scene{}
}

// Append adds a shape on top of the existing ones and returns its index.
func (s *Scene) Append(sh shape.Shape) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shapes = append(s.shapes, sh)
	return len(s.shapes) - 1
}

// RemoveAt deletes the shape at index i. This is the only way the scene
// shrinks and it is never transmitted to peers.
func (s *Scene) RemoveAt(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.shapes) {
		return false
	}
	s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
	return true
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shapes)
}

// All returns a copy of the shape list in draw order.
func (s *Scene) All() []shape.Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]shape.Shape, len(s.shapes))
	copy(out, s.shapes)
	return out
}

// At returns the shape at index i.
func (s *Scene) At(i int) (shape.Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.shapes) {
		return nil, false
	}
	return s.shapes[i], true
}

// HitTest returns the index of the topmost shape containing the world point,
// walking the list in reverse so later shapes win.
func (s *Scene) HitTest(x, y float64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.shapes) - 1; i >= 0; i-- {
		if s.shapes[i].Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}
