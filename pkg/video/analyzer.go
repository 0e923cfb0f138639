package video

import (
	"fmt"

	"github.com/teslashibe/go-urdfpose/pkg/detection"
	"github.com/teslashibe/go-urdfpose/pkg/pose"
	"github.com/teslashibe/go-urdfpose/pkg/remap"
	"gocv.io/x/gocv"
)

// Analysis is the pose found at one point in a video.
type Analysis struct {
	Time   float64       `json:"time"`
	Pose   *pose.Pose    `json:"pose,omitempty"` // source pixel coordinates
	Angles pose.AngleSet `json:"angles"`
	Joints pose.AngleSet `json:"joints"` // degrees
}

// Analyzer detects poses on low-resolution frames and turns them into body
// angles and joint targets.
type Analyzer struct {
	Detector  detection.Detector
	Angles    []pose.AngleDefinition
	Table     remap.Table
	Threshold float64
	Width     int // analysis frame width
}

// NewAnalyzer creates an analyzer with the MoveNet angle table and the default calibration.
func NewAnalyzer(d detection.Detector) *Analyzer {
	return &Analyzer{
		Detector:  d,
		Angles:    pose.MoveNet2D,
		Table:     remap.DefaultTable(),
		Threshold: pose.DefaultScoreThreshold,
		Width:     AnalysisWidth,
	}
}

// At analyzes the frame at t seconds.
func (a *Analyzer) At(src *Source, t float64) (*Analysis, error) {
	img, err := src.FrameAt(t)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	res, err := a.Frame(img)
	if err != nil {
		return nil, err
	}
	res.Time = t
	return res, nil
}

// Frame analyzes a full-resolution image.
func (a *Analyzer) Frame(img gocv.Mat) (*Analysis, error) {
	if a.Detector == nil {
		return nil, fmt.Errorf("no pose detector configured")
	}

	size := AnalysisSize(Info{Width: img.Cols(), Height: img.Rows()}, a.Width)
	small := Resize(img, size)
	defer small.Close()

	poses, err := a.Detector.Detect(small)
	if err != nil {
		return nil, fmt.Errorf("detect pose: %w", err)
	}

	res := &Analysis{Angles: pose.AngleSet{}, Joints: pose.AngleSet{}}
	best := pose.SelectBest(poses)
	if best == nil {
		return res, nil
	}

	// uniform scale, so 2D angles are unchanged
	full := best.Scale(float64(img.Cols())/float64(size.X), float64(img.Rows())/float64(size.Y))
	res.Pose = &full
	res.Angles = pose.ComputeAngles(full.Keypoints, a.Angles, a.Threshold)
	res.Joints = a.Table.Apply(res.Angles)
	return res, nil
}
