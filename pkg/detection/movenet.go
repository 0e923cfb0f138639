package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-urdfpose/internal/log"
	"github.com/teslashibe/go-urdfpose/pkg/pose"
	"gocv.io/x/gocv"
)

// outputStride is the number of values per MoveNet keypoint: y, x, score.
const outputStride = 3

// MoveNet runs a single-pose MoveNet ONNX model.
type MoveNet struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex
}

// NewMoveNet loads the model named in cfg.
func NewMoveNet(cfg Config) (*MoveNet, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultConfig().InputSize
	}
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load pose model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.Info("pose model loaded", "path", cfg.ModelPath, "input", cfg.InputSize)
	return &MoveNet{net: net, config: cfg}, nil
}

// Detect runs the model on img. MoveNet finds at most one pose.
func (m *MoveNet) Detect(img gocv.Mat) ([]pose.Pose, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	size := image.Pt(m.config.InputSize, m.config.InputSize)
	blob := gocv.BlobFromImage(img, m.config.Scale, size, gocv.NewScalar(0, 0, 0, 0), m.config.SwapRB, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	p, err := ParseOutput(data, img.Cols(), img.Rows())
	if err != nil {
		return nil, err
	}
	if p.Score <= m.config.ScoreThreshold {
		return nil, nil
	}
	log.Debug("pose detected", "score", p.Score)
	return []pose.Pose{p}, nil
}

// Close releases the network.
func (m *MoveNet) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}

// ParseOutput converts a [1,1,17,3] MoveNet tensor of normalized (y, x, score)
// triples into a pose in pixel coordinates of a width x height image. The
// pose score is the mean keypoint score.
func ParseOutput(data []float32, width, height int) (pose.Pose, error) {
	if len(data) != pose.KeypointCount*outputStride {
		return pose.Pose{}, fmt.Errorf("%w: %d values", ErrOutputShape, len(data))
	}

	kps := make([]pose.Keypoint, pose.KeypointCount)
	var total float64
	for i := range kps {
		y := float64(data[i*outputStride])
		x := float64(data[i*outputStride+1])
		s := float64(data[i*outputStride+2])
		kps[i] = pose.Keypoint{
			Name:  pose.Names[i],
			X:     x * float64(width),
			Y:     y * float64(height),
			Score: s,
		}
		total += s
	}
	return pose.Pose{Keypoints: kps, Score: total / float64(len(kps))}, nil
}
