package robot

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/teslashibe/go-urdfpose/pkg/urdf"
)

// Change sources reported to listeners.
const (
	SourceManual    = "manual"
	SourceAnimation = "animation"
	SourcePose      = "pose"
	SourceRemote    = "remote"
)

// ErrNotMovable is returned when setting a fixed, floating or planar joint.
var ErrNotMovable = errors.New("joint is not movable")

// Change describes joint values that changed and who changed them.
type Change struct {
	Values map[string]float64 `json:"values"`
	Source string             `json:"source"`
}

// Listener is notified after joint values change.
type Listener func(Change)

// Model is the joint state of a parsed URDF robot. It is safe for concurrent use.
type Model struct {
	robot *urdf.Robot

	mu           sync.RWMutex
	values       map[string]float64
	ignoreLimits bool
	listeners    map[int]Listener
	nextID       int
}

// NewModel creates a model with every movable joint at zero.
func NewModel(r *urdf.Robot) *Model {
	m := &Model{
		robot:     r,
		values:    make(map[string]float64),
		listeners: make(map[int]Listener),
	}
	for _, j := range r.MovableJoints() {
		m.values[j.Name] = 0
	}
	return m
}

// Robot returns the parsed robot description.
func (m *Model) Robot() *urdf.Robot {
	return m.robot
}

// Subscribe registers fn for change notifications and returns a function that removes it.
func (m *Model) Subscribe(fn Listener) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// IgnoreLimits reports whether joint limits are currently ignored.
func (m *Model) IgnoreLimits() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ignoreLimits
}

// SetIgnoreLimits turns limit clamping off or on. Turning it back on clamps
// every joint into range.
func (m *Model) SetIgnoreLimits(ignore bool) {
	m.mu.Lock()
	m.ignoreLimits = ignore
	changed := map[string]float64{}
	if !ignore {
		for name, v := range m.values {
			if c := urdf.Clamp(m.robot.Joints[name], v); c != v {
				m.values[name] = c
				changed[name] = c
			}
		}
	}
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	notify(listeners, changed, SourceManual)
}

// JointValue returns one joint's value.
func (m *Model) JointValue(name string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	if !ok {
		if _, err := m.robot.Joint(name); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s", ErrNotMovable, name)
	}
	return v, nil
}

// JointValues returns a copy of every movable joint's value.
func (m *Model) JointValues() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]float64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// SetJointValue sets one joint as a manual edit.
// It reports whether any value changed.
func (m *Model) SetJointValue(name string, value float64) (bool, error) {
	return m.Set(SourceManual, map[string]float64{name: value})
}

// SetJointValues sets several joints as a manual edit.
func (m *Model) SetJointValues(values map[string]float64) error {
	_, err := m.Set(SourceManual, values)
	return err
}

// Setter returns a JointSetter whose changes are reported with source.
func (m *Model) Setter(source string) JointSetter {
	return SetterFunc(func(values map[string]float64) error {
		_, err := m.Set(source, values)
		return err
	})
}

// Set applies values, clamping to limits unless they are ignored and
// propagating to mimic joints. Unknown or non-movable joints fail the whole
// call before anything changes. NaN values are rejected.
func (m *Model) Set(source string, values map[string]float64) (bool, error) {
	for name, v := range values {
		j, err := m.robot.Joint(name)
		if err != nil {
			return false, err
		}
		if !j.Type.Movable() {
			return false, fmt.Errorf("%w: %s (%s)", ErrNotMovable, name, j.Type)
		}
		if math.IsNaN(v) {
			return false, fmt.Errorf("joint %s: value is NaN", name)
		}
	}

	m.mu.Lock()
	changed := make(map[string]float64)
	for name, v := range values {
		m.setLocked(name, v, changed, 0)
	}
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	notify(listeners, changed, source)
	return len(changed) > 0, nil
}

// maxMimicDepth bounds mimic chains so cyclic descriptions cannot loop forever.
const maxMimicDepth = 8

func (m *Model) setLocked(name string, v float64, changed map[string]float64, depth int) {
	j := m.robot.Joints[name]
	if !m.ignoreLimits {
		v = urdf.Clamp(j, v)
	}
	if m.values[name] != v {
		m.values[name] = v
		changed[name] = v
	}

	if depth >= maxMimicDepth {
		return
	}
	for _, other := range m.robot.Joints {
		if other.Mimic != nil && other.Mimic.Joint == name && other.Type.Movable() {
			m.setLocked(other.Name, other.Mimic.Multiplier*v+other.Mimic.Offset, changed, depth+1)
		}
	}
}

func (m *Model) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, changed map[string]float64, source string) {
	if len(changed) == 0 {
		return
	}
	for _, fn := range listeners {
		fn(Change{Values: changed, Source: source})
	}
}
