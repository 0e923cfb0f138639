// Package video reads uploaded videos frame by frame for pose analysis:
// seeking, low-resolution analysis frames, thumbnails, overlays and
// time markers.
package video

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrOpen is returned when a file cannot be opened as a video.
	ErrOpen = errors.New("cannot open video")

	// ErrSeek is returned when no frame can be read at the requested time.
	ErrSeek = errors.New("no frame at time")

	// ErrNotFound is returned for unknown video or marker IDs.
	ErrNotFound = errors.New("not found")
)

// Info describes a video's stream.
type Info struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	Frames   int     `json:"frames"`
	Duration float64 `json:"duration"` // seconds
}

// AspectRatio returns width/height, or 16:9 when the size is unknown.
func (i Info) AspectRatio() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return 16.0 / 9.0
	}
	return float64(i.Width) / float64(i.Height)
}

// Source is an opened video file. Reads are serialized; one capture handle
// can only seek to one position at a time.
type Source struct {
	path string
	info Info

	mu  sync.Mutex
	cap *gocv.VideoCapture
}

// Open opens the video at path.
func Open(path string) (*Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrOpen, path)
	}

	info := Info{
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    vc.Get(gocv.VideoCaptureFPS),
		Frames: int(vc.Get(gocv.VideoCaptureFrameCount)),
	}
	if info.FPS > 0 && info.Frames > 0 {
		info.Duration = float64(info.Frames) / info.FPS
	}

	return &Source{path: path, info: info, cap: vc}, nil
}

// Path returns the file the source reads.
func (s *Source) Path() string { return s.path }

// Info returns the stream description read at open time.
func (s *Source) Info() Info { return s.info }

// FrameAt decodes the frame shown at t seconds. Times outside the video are
// clamped to its first and last frame. The caller must Close the returned Mat.
func (s *Source) FrameAt(t float64) (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap == nil {
		return gocv.NewMat(), fmt.Errorf("%w: source closed", ErrSeek)
	}

	frame := s.frameIndex(t)
	s.cap.Set(gocv.VideoCapturePosFrames, float64(frame))

	img := gocv.NewMat()
	if ok := s.cap.Read(&img); !ok || img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %.3fs", ErrSeek, t)
	}
	return img, nil
}

func (s *Source) frameIndex(t float64) int {
	if math.IsNaN(t) || t < 0 || s.info.FPS <= 0 {
		return 0
	}
	i := int(math.Floor(t * s.info.FPS))
	if s.info.Frames > 0 && i >= s.info.Frames {
		i = s.info.Frames - 1
	}
	return i
}

// Close releases the capture handle.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cap == nil {
		return nil
	}
	err := s.cap.Close()
	s.cap = nil
	return err
}
