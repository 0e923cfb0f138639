package video

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/teslashibe/go-urdfpose/pkg/pose"
)

// Marker records the body angles at one moment of a video.
type Marker struct {
	ID     string        `json:"id"`
	Time   float64       `json:"time"`
	Angles pose.AngleSet `json:"angles"`
	Joints pose.AngleSet `json:"joints,omitempty"` // degrees
}

// Progress returns the marker's position on the progress bar in percent,
// inset 1% from each end.
func Progress(t, duration float64) float64 {
	if !(duration > 0) {
		return 1
	}
	return t/duration*98 + 1
}

// Markers is a time-ordered marker list, safe for concurrent use.
type Markers struct {
	mu      sync.RWMutex
	markers []Marker
}

// Add records a marker and returns it with its new ID.
func (m *Markers) Add(t float64, angles, joints pose.AngleSet) Marker {
	mk := Marker{ID: uuid.NewString(), Time: t, Angles: angles, Joints: joints}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := sort.Search(len(m.markers), func(i int) bool { return m.markers[i].Time > t })
	m.markers = append(m.markers, Marker{})
	copy(m.markers[i+1:], m.markers[i:])
	m.markers[i] = mk
	return mk
}

// Get returns a marker by ID.
func (m *Markers) Get(id string) (Marker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mk := range m.markers {
		if mk.ID == id {
			return mk, nil
		}
	}
	return Marker{}, fmt.Errorf("%w: marker %s", ErrNotFound, id)
}

// Remove deletes a marker.
func (m *Markers) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, mk := range m.markers {
		if mk.ID == id {
			m.markers = append(m.markers[:i], m.markers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: marker %s", ErrNotFound, id)
}

// List returns the markers ordered by time.
func (m *Markers) List() []Marker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Marker, len(m.markers))
	copy(out, m.markers)
	return out
}

// Len returns the number of markers.
func (m *Markers) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.markers)
}
