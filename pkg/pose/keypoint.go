// Package pose models body keypoints produced by a pose estimator and derives
// named joint angles from them.
package pose

import "github.com/teslashibe/go-urdfpose/pkg/geometry"

// DefaultScoreThreshold is the minimum keypoint confidence for a keypoint to be used.
const DefaultScoreThreshold = 0.2

// COCO-17 keypoint indices, as produced by MoveNet.
const (
	Nose = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle

	KeypointCount
)

// Names are the COCO-17 keypoint names indexed by keypoint index.
var Names = [KeypointCount]string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

// Keypoint is a detected body landmark. X and Y are in image pixels, Z is optional depth.
type Keypoint struct {
	Name  string  `json:"name,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z,omitempty"`
	Score float64 `json:"score"`
}

// Point converts the keypoint for the geometry functions.
func (k Keypoint) Point() geometry.Point {
	return geometry.Point{X: k.X, Y: k.Y, Z: k.Z, Score: k.Score}
}

// Visible reports whether the keypoint's score clears threshold.
func (k Keypoint) Visible(threshold float64) bool {
	return k.Score > threshold
}

// Pose is one detected person.
type Pose struct {
	Keypoints []Keypoint `json:"keypoints"`
	Score     float64    `json:"score"`
}

// Scale returns a copy with keypoint positions multiplied by sx and sy.
// Used to map keypoints from the low-resolution analysis frame back to display size.
func (p Pose) Scale(sx, sy float64) Pose {
	out := Pose{Score: p.Score, Keypoints: make([]Keypoint, len(p.Keypoints))}
	for i, kp := range p.Keypoints {
		kp.X *= sx
		kp.Y *= sy
		out.Keypoints[i] = kp
	}
	return out
}

// SelectBest picks the highest-scoring pose. Returns nil when there are none.
func SelectBest(poses []Pose) *Pose {
	if len(poses) == 0 {
		return nil
	}

	best := &poses[0]
	for i := 1; i < len(poses); i++ {
		if poses[i].Score > best.Score {
			best = &poses[i]
		}
	}
	return best
}
