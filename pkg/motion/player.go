package motion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/teslashibe/go-urdfpose/internal/log"
)

// JointSetter receives joint values in radians.
type JointSetter interface {
	SetJointValues(values map[string]float64) error
}

// PlayerOptions configures animation playback.
type PlayerOptions struct {
	// FrameRate is the number of frames applied per second (default: 24).
	FrameRate float64
}

// DefaultPlayerOptions returns the playback defaults.
func DefaultPlayerOptions() PlayerOptions {
	return PlayerOptions{FrameRate: DefaultFrameRate}
}

// Cursor reports where playback is within the sequence.
type Cursor struct {
	Pair   int `json:"pair"`   // index of the keyframe being left
	Frame  int `json:"frame"`  // index of the next frame within the pair
	Frames int `json:"frames"` // frames generated for the current pair
}

// Player walks a Sequence pair by pair, generating frames for each transition
// and applying one frame per tick. After the last pair it wraps to the first.
type Player struct {
	seq    *Sequence
	target JointSetter
	opts   PlayerOptions

	mu      sync.Mutex
	state   PlaybackState
	stopCh  chan struct{}
	done    chan struct{}
	version uint64
	pair    int
	frame   int
	frames  []Frame
}

// NewPlayer creates a player for seq that drives target.
func NewPlayer(seq *Sequence, target JointSetter, opts PlayerOptions) *Player {
	if !(opts.FrameRate > 0) {
		opts.FrameRate = DefaultFrameRate
	}
	return &Player{
		seq:     seq,
		target:  target,
		opts:    opts,
		state:   StateStopped,
		version: seq.Version(),
	}
}

// FrameRate returns the playback frame rate.
func (p *Player) FrameRate() float64 {
	return p.opts.FrameRate
}

// Start begins playback in a goroutine. It fails when fewer than two keyframes exist.
func (p *Player) Start(ctx context.Context) error {
	if p.seq.Len() < 2 {
		return ErrTooFewKeyframes
	}

	p.mu.Lock()
	if p.state == StatePlaying {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}
	p.state = StatePlaying
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	stopCh, done := p.stopCh, p.done
	p.mu.Unlock()

	go p.run(ctx, stopCh, done)
	return nil
}

// Stop halts playback and waits for the loop to exit. The cursor is kept.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.stopCh == nil {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.stopCh = nil
	done := p.done
	p.mu.Unlock()

	<-done
}

// Reset moves the cursor back to the first frame of the first pair.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

// State returns the current playback state.
func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cursor returns the current playback position.
func (p *Player) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Cursor{Pair: p.pair, Frame: p.frame, Frames: len(p.frames)}
}

func (p *Player) run(ctx context.Context, stopCh, done chan struct{}) {
	defer close(done)
	defer func() {
		p.mu.Lock()
		p.state = StateStopped
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / p.opts.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if _, err := p.Step(); err != nil {
				if errors.Is(err, ErrTooFewKeyframes) {
					log.Info("animation stopped", "reason", err)
					return
				}
				log.Debug("animation step skipped", "error", err)
			}
		}
	}
}

// Step applies the next frame and advances the cursor. It returns the applied
// frame, or nil when the current keyframe has no rate yet.
func (p *Player) Step() (*Frame, error) {
	kfs := p.seq.Keyframes()
	version := p.seq.Version()

	p.mu.Lock()
	if len(kfs) < 2 {
		p.mu.Unlock()
		return nil, ErrTooFewKeyframes
	}
	if version != p.version {
		p.version = version
		p.resetLocked()
	}
	if p.pair > len(kfs)-2 {
		p.resetLocked()
	}

	if p.frame == 0 {
		pair := p.pair
		from, to := kfs[pair], kfs[pair+1]
		if !from.HasRate() {
			p.mu.Unlock()
			return nil, nil
		}

		// generate without holding the lock so State and Cursor stay responsive
		p.mu.Unlock()
		frames, err := Generate(from.Angles, to.Angles, from.Rate, from.Mode, p.opts.FrameRate)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		if p.version != version || p.pair != pair || p.frame != 0 {
			// cursor moved meanwhile; pick up from its new position next tick
			p.mu.Unlock()
			return nil, nil
		}
		p.frames = frames
	}

	frame := p.frames[p.frame]
	if p.frame < len(p.frames)-1 {
		p.frame++
	} else {
		p.frame = 0
		p.pair++
		if p.pair > len(kfs)-2 {
			p.pair = 0
		}
	}
	p.mu.Unlock()

	if err := p.target.SetJointValues(frame.Radians()); err != nil {
		return &frame, err
	}
	return &frame, nil
}

func (p *Player) resetLocked() {
	p.pair = 0
	p.frame = 0
	p.frames = nil
}
