package motion

import (
	"fmt"
	"sync"
)

// Sequence is the ordered keyframe list an animation plays through.
// It is safe for concurrent use. Every edit bumps Version so a running
// Player restarts from the first pair.
type Sequence struct {
	mu        sync.RWMutex
	keyframes []Keyframe
	version   uint64
}

// NewSequence creates an empty sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Add appends a keyframe and returns it with its position (1-based).
func (s *Sequence) Add(kf Keyframe) (Keyframe, int) {
	if kf.ID == "" {
		kf.ID = NewKeyframe(kf.Angles).ID
	}
	if !kf.Mode.Valid() {
		kf.Mode = ModeDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyframes = append(s.keyframes, kf)
	s.version++
	return kf, len(s.keyframes)
}

// Remove deletes the keyframe with the given ID. Later keyframes move up one position.
func (s *Sequence) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.keyframes = append(s.keyframes[:i], s.keyframes[i+1:]...)
	s.version++
	return nil
}

// SetRate changes the rate used to leave keyframe id.
func (s *Sequence) SetRate(id string, rate float64) (Keyframe, error) {
	return s.update(id, func(kf *Keyframe) { kf.Rate = rate })
}

// SetMode changes how the keyframe's rate is interpreted.
func (s *Sequence) SetMode(id string, mode Mode) (Keyframe, error) {
	if !mode.Valid() {
		return Keyframe{}, fmt.Errorf("unknown mode %q", mode)
	}
	return s.update(id, func(kf *Keyframe) { kf.Mode = mode })
}

// ToggleMode flips the keyframe between duration and speed mode.
func (s *Sequence) ToggleMode(id string) (Keyframe, error) {
	return s.update(id, func(kf *Keyframe) { kf.Mode = kf.Mode.Toggle() })
}

// Reset restarts playback from the first pair without changing keyframes.
func (s *Sequence) Reset() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

// Clear removes every keyframe.
func (s *Sequence) Clear() {
	s.mu.Lock()
	s.keyframes = nil
	s.version++
	s.mu.Unlock()
}

// Get returns a keyframe by ID.
func (s *Sequence) Get(id string) (Keyframe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Keyframe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.keyframes[i], nil
}

// Keyframes returns a copy of the keyframes in order.
func (s *Sequence) Keyframes() []Keyframe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Keyframe, len(s.keyframes))
	copy(out, s.keyframes)
	return out
}

// Len returns the number of keyframes.
func (s *Sequence) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keyframes)
}

// Version changes whenever the sequence is edited or reset.
func (s *Sequence) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Sequence) update(id string, fn func(*Keyframe)) (Keyframe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Keyframe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(&s.keyframes[i])
	s.version++
	return s.keyframes[i], nil
}

func (s *Sequence) indexOf(id string) int {
	for i, kf := range s.keyframes {
		if kf.ID == id {
			return i
		}
	}
	return -1
}
