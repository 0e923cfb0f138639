package pose

import (
	"errors"
	"fmt"
	"sort"

	"github.com/teslashibe/go-urdfpose/pkg/geometry"
)

// AngleSet maps an angle (or joint) name to a value in degrees.
type AngleSet map[string]float64

// Names returns the set's keys in sorted order.
func (s AngleSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AngleDefinition names an angle and the keypoints it is measured from.
//
// Three points give the included angle at the middle point. Two points with a
// Reference give the bearing of the first->second vector against that axis.
type AngleDefinition struct {
	Name      string             `json:"name" yaml:"name"`
	Points    []int              `json:"points" yaml:"points"`
	Reference geometry.Reference `json:"reference,omitempty" yaml:"reference,omitempty"`
	Spatial   bool               `json:"spatial,omitempty" yaml:"spatial,omitempty"`
}

// Validate checks the definition's shape.
func (d AngleDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("angle definition has no name")
	}
	if !d.Reference.Valid() {
		return fmt.Errorf("angle %q: unknown reference %q", d.Name, d.Reference)
	}
	switch {
	case d.Reference == geometry.None && len(d.Points) != 3:
		return fmt.Errorf("angle %q: needs 3 points, got %d", d.Name, len(d.Points))
	case d.Reference != geometry.None && len(d.Points) != 2:
		return fmt.Errorf("angle %q: bearing needs 2 points, got %d", d.Name, len(d.Points))
	}
	for _, idx := range d.Points {
		if idx < 0 {
			return fmt.Errorf("angle %q: negative keypoint index %d", d.Name, idx)
		}
	}
	return nil
}

// Measure computes the angle from kps. It returns ok=false when a keypoint is
// missing, below threshold, or the points are coincident.
func (d AngleDefinition) Measure(kps []Keypoint, threshold float64) (float64, bool) {
	pts := make([]geometry.Point, len(d.Points))
	for i, idx := range d.Points {
		if idx < 0 || idx >= len(kps) || !kps[idx].Visible(threshold) {
			return 0, false
		}
		pts[i] = kps[idx].Point()
	}

	var (
		v   float64
		err error
	)
	switch {
	case d.Reference != geometry.None:
		v, err = geometry.Bearing(pts[0], pts[1], d.Reference)
	case d.Spatial:
		v, err = geometry.Angle3D(pts[0], pts[1], pts[2])
	default:
		v, err = geometry.Angle2D(pts[0], pts[1], pts[2])
	}
	if err != nil {
		return 0, false
	}
	return v, true
}

// MoveNet2D is the planar angle table used by the video overlay.
var MoveNet2D = []AngleDefinition{
	{Name: "Left Elbow", Points: []int{LeftShoulder, LeftElbow, LeftWrist}},
	{Name: "Right Elbow", Points: []int{RightShoulder, RightElbow, RightWrist}},
	{Name: "Left Shoulder", Points: []int{LeftHip, LeftShoulder, LeftElbow}},
	{Name: "Right Shoulder", Points: []int{RightHip, RightShoulder, RightElbow}},
	{Name: "Left Hip", Points: []int{LeftShoulder, LeftHip, LeftKnee}},
	{Name: "Right Hip", Points: []int{RightShoulder, RightHip, RightKnee}},
	{Name: "Left Knee", Points: []int{LeftHip, LeftKnee, LeftAnkle}},
	{Name: "Right Knee", Points: []int{RightHip, RightKnee, RightAnkle}},
}

// Spatial3D measures the same joints in 3D and adds reference bearings for the
// torso and upper arms.
var Spatial3D = []AngleDefinition{
	{Name: "Left Elbow", Points: []int{LeftShoulder, LeftElbow, LeftWrist}, Spatial: true},
	{Name: "Right Elbow", Points: []int{RightShoulder, RightElbow, RightWrist}, Spatial: true},
	{Name: "Left Shoulder", Points: []int{LeftHip, LeftShoulder, LeftElbow}, Spatial: true},
	{Name: "Right Shoulder", Points: []int{RightHip, RightShoulder, RightElbow}, Spatial: true},
	{Name: "Left Hip", Points: []int{LeftShoulder, LeftHip, LeftKnee}, Spatial: true},
	{Name: "Right Hip", Points: []int{RightShoulder, RightHip, RightKnee}, Spatial: true},
	{Name: "Left Knee", Points: []int{LeftHip, LeftKnee, LeftAnkle}, Spatial: true},
	{Name: "Right Knee", Points: []int{RightHip, RightKnee, RightAnkle}, Spatial: true},
	{Name: "Shoulder Line", Points: []int{LeftShoulder, RightShoulder}, Reference: geometry.Horizontal},
	{Name: "Hip Line", Points: []int{LeftHip, RightHip}, Reference: geometry.Horizontal},
	{Name: "Left Upper Arm", Points: []int{LeftShoulder, LeftElbow}, Reference: geometry.Vertical},
	{Name: "Right Upper Arm", Points: []int{RightShoulder, RightElbow}, Reference: geometry.Vertical},
}

// Table returns a named built-in angle table.
func Table(name string) ([]AngleDefinition, bool) {
	switch name {
	case "", "2d", "movenet":
		return MoveNet2D, true
	case "3d", "spatial":
		return Spatial3D, true
	}
	return nil, false
}

// ComputeAngles measures every definition against kps. Angles that cannot be
// measured are left out of the result rather than failing the whole set.
func ComputeAngles(kps []Keypoint, defs []AngleDefinition, threshold float64) AngleSet {
	angles := make(AngleSet, len(defs))
	for _, def := range defs {
		if v, ok := def.Measure(kps, threshold); ok {
			angles[def.Name] = v
		}
	}
	return angles
}
