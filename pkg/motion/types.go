// Package motion generates and plays interpolated joint motion between
// keyframes for six-axis arms.
//
// Keyframe angles are in degrees. Frames are handed to the robot in radians.
package motion

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// JointCount is the number of joints a keyframe drives.
const JointCount = 6

// DefaultFrameRate is the playback rate in frames per second.
const DefaultFrameRate = 24.0

// JointNames are the robot joints driven by keyframes, in keyframe order.
var JointNames = [JointCount]string{"joint_1", "joint_2", "joint_3", "joint_4", "joint_5", "joint_6"}

// Angles is one value per joint, in degrees.
type Angles [JointCount]float64

// Frame is one playback step, in degrees.
type Frame = Angles

// Mode selects how a keyframe's rate is interpreted.
type Mode string

const (
	// ModeDuration treats the rate as the transition time in seconds.
	ModeDuration Mode = "s"
	// ModeSpeed treats the rate as a joint speed in degrees per second.
	ModeSpeed Mode = "deg/s"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDuration || m == ModeSpeed
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeSpeed {
		return ModeDuration
	}
	return ModeSpeed
}

// Keyframe is a joint snapshot plus the rate used to move from it to the next keyframe.
type Keyframe struct {
	ID     string  `json:"id"`
	Angles Angles  `json:"angles"`
	Rate   float64 `json:"rate"` // 0 means unset
	Mode   Mode    `json:"mode"`
}

// NewKeyframe creates a keyframe with a fresh ID and duration mode.
func NewKeyframe(angles Angles) Keyframe {
	return Keyframe{
		ID:     uuid.New().String(),
		Angles: angles,
		Mode:   ModeDuration,
	}
}

// HasRate reports whether the keyframe's rate has been filled in.
func (k Keyframe) HasRate() bool {
	return k.Rate != 0 && !math.IsNaN(k.Rate)
}

// Snapshot builds keyframe angles from joint values in radians, rounded to 0.1 degree.
// Joints missing from values are zero.
func Snapshot(values map[string]float64) Angles {
	var a Angles
	for i, name := range JointNames {
		a[i] = round1(values[name] * 180 / math.Pi)
	}
	return a
}

// Radians converts the angles to a joint-name map in radians.
func (a Angles) Radians() map[string]float64 {
	out := make(map[string]float64, JointCount)
	for i, name := range JointNames {
		out[name] = a[i] * math.Pi / 180
	}
	return out
}

// String formats the angles the way the keyframe list shows them.
func (a Angles) String() string {
	s := ""
	for i, v := range a {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%g", v)
	}
	return s
}

// MarshalJSON keeps Mode defaulted when a zero keyframe is encoded.
func (k Keyframe) MarshalJSON() ([]byte, error) {
	type alias Keyframe
	if k.Mode == "" {
		k.Mode = ModeDuration
	}
	return json.Marshal(alias(k))
}

// PlaybackState represents the current state of animation playback.
type PlaybackState int

const (
	// StateStopped means no animation is playing.
	StateStopped PlaybackState = iota

	// StatePlaying means the animation loop is running.
	StatePlaying
)

// String returns a human-readable state name.
func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s PlaybackState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *PlaybackState) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "stopped":
		*s = StateStopped
	case "playing":
		*s = StatePlaying
	default:
		return fmt.Errorf("unknown playback state %q", name)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
