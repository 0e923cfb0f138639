package motion

import "errors"

var (
	// ErrInvalidRate is returned when a keyframe's duration or speed is not positive.
	ErrInvalidRate = errors.New("rate must be a positive number")

	// ErrTooManyFrames is returned when a transition would need more than MaxFrames frames.
	ErrTooManyFrames = errors.New("transition needs too many frames")

	// ErrNotFound is returned when a keyframe or preset is not found.
	ErrNotFound = errors.New("keyframe not found")

	// ErrTooFewKeyframes is returned when playback needs at least two keyframes.
	ErrTooFewKeyframes = errors.New("animation needs at least two keyframes")

	// ErrAlreadyPlaying is returned when starting a player that is running.
	ErrAlreadyPlaying = errors.New("animation already playing")

	// ErrInvalidPreset is returned when a preset file is malformed.
	ErrInvalidPreset = errors.New("invalid preset data")
)
