package motion

import (
	"fmt"
	"math"
)

// rangeEpsilon is the relative tolerance used to decide that a running value
// has reached the end of its range.
const rangeEpsilon = 1e-12

// MaxFrames bounds the frames generated for one transition, a little over an
// hour at the default frame rate.
const MaxFrames = 100000

// Generate interpolates from p1 to p2 and returns the frames in playback order.
//
// In ModeDuration, rate is the transition time in seconds and every joint moves
// (p2-p1)/(rate*fps) per frame. In ModeSpeed, rate is degrees per second and
// every moving joint steps rate/fps toward its target. Each joint's samples
// start at p1 and stop short of p2. Joints with no delta hold p1. All joints
// are padded with their last value to the longest joint's length, and never
// fewer than two frames are produced. A transition longer than MaxFrames fails
// with ErrTooManyFrames before anything is allocated.
func Generate(p1, p2 Angles, rate float64, mode Mode, fps float64) ([]Frame, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	if !(fps > 0) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("frame rate must be positive: %v", fps)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	var stepSizes [JointCount]float64
	for i := 0; i < JointCount; i++ {
		delta := p2[i] - p1[i]
		if delta == 0 {
			continue
		}

		var step float64
		if mode == ModeDuration {
			step = delta / (rate * fps)
		} else {
			step = rate / fps
			if delta < 0 {
				step = -step
			}
		}
		if n := math.Abs(delta / step); !(n <= MaxFrames) {
			return nil, fmt.Errorf("%w: %.0f frames for joint %d, limit %d", ErrTooManyFrames, math.Ceil(n), i+1, MaxFrames)
		}
		stepSizes[i] = step
	}

	var channels [JointCount][]float64
	steps := 2

	for i := 0; i < JointCount; i++ {
		if stepSizes[i] == 0 {
			channels[i] = []float64{p1[i], p1[i]}
			continue
		}

		channels[i] = arange(p1[i], p2[i], stepSizes[i])
		if len(channels[i]) == 0 {
			channels[i] = []float64{p1[i]}
		}
		if len(channels[i]) > steps {
			steps = len(channels[i])
		}
	}

	frames := make([]Frame, steps)
	for i, ch := range channels {
		last := ch[len(ch)-1]
		for k := 0; k < steps; k++ {
			if k < len(ch) {
				frames[k][i] = ch[k]
			} else {
				frames[k][i] = last
			}
		}
	}
	return frames, nil
}

// arange returns start, start+step, ... excluding end. The running value is
// accumulated so results match a cumulative range, and a value within
// rangeEpsilon of end counts as having reached it. step must be non-zero and
// point from start toward end.
func arange(start, end, step float64) []float64 {
	var out []float64
	for x := start; ongoing(x, end, step); x += step {
		out = append(out, x)
	}
	return out
}

func ongoing(x, end, step float64) bool {
	if nearlyEqual(x, end) {
		return false
	}
	if step > 0 {
		return x < end
	}
	return x > end
}

func nearlyEqual(x, y float64) bool {
	if x == y {
		return true
	}
	diff := math.Abs(x - y)
	if diff < 2.220446049250313e-16 {
		return true
	}
	return diff <= math.Max(math.Abs(x), math.Abs(y))*rangeEpsilon
}
