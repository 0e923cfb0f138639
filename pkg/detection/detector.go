// Package detection finds human poses in images using OpenCV's DNN module.
package detection

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-urdfpose/pkg/pose"
	"gocv.io/x/gocv"
)

var (
	// ErrModelNotFound is returned when the model file does not exist.
	ErrModelNotFound = errors.New("pose model not found")

	// ErrEmptyImage is returned for images that decode to nothing.
	ErrEmptyImage = errors.New("empty image")

	// ErrOutputShape is returned when the network output is not 17 (y, x, score) triples.
	ErrOutputShape = errors.New("unexpected model output shape")
)

// Detector is the interface for pose detection backends.
type Detector interface {
	// Detect returns the poses found in img, with keypoints in pixel coordinates.
	Detect(img gocv.Mat) ([]pose.Pose, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath      string  // Path to ONNX model
	InputSize      int     // Square model input, 192 for MoveNet Lightning
	Scale          float64 // Pixel scale applied to the input blob
	SwapRB         bool    // OpenCV decodes BGR; MoveNet expects RGB
	ScoreThreshold float64 // Poses scoring at or below this are dropped
}

// DefaultConfig returns defaults for MoveNet SinglePose Lightning.
func DefaultConfig() Config {
	return Config{
		ModelPath:      "models/movenet_lightning.onnx",
		InputSize:      192,
		Scale:          1.0,
		SwapRB:         true,
		ScoreThreshold: 0,
	}
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(img gocv.Mat) ([]pose.Pose, error)

// Detect calls f(img).
func (f DetectorFunc) Detect(img gocv.Mat) ([]pose.Pose, error) { return f(img) }

// Close does nothing.
func (f DetectorFunc) Close() error { return nil }

// DetectJPEG decodes an encoded image and runs d on it.
func DetectJPEG(d Detector, data []byte) ([]pose.Pose, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, ErrEmptyImage
	}
	return d.Detect(img)
}
