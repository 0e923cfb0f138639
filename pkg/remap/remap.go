// Package remap converts body angles into robot joint values using a fixed
// calibration table of clamped, piecewise-linear rules.
package remap

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-urdfpose/pkg/pose"
)

// ErrInvalidRule is returned when a rule cannot be applied.
var ErrInvalidRule = errors.New("invalid remap rule")

// Map linearly maps v from [inMin, inMax] onto [outMin, outMax]. It does not clamp.
func Map(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// Clamp restricts v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Range is a closed interval in degrees.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Common input domains.
var (
	HalfTurn = Range{Min: -90, Max: 90}
	FullTurn = Range{Min: -180, Max: 180}
)

// Rule maps one body angle onto one robot joint.
type Rule struct {
	Joint  string `json:"joint" yaml:"joint"`
	Angle  string `json:"angle" yaml:"angle"`
	Domain Range  `json:"domain" yaml:"domain"` // input is clamped here first
	In     Range  `json:"in" yaml:"in"`
	Out    Range  `json:"out" yaml:"out"`
}

// Validate checks that the rule is usable.
func (r Rule) Validate() error {
	if r.Joint == "" || r.Angle == "" {
		return fmt.Errorf("%w: joint and angle are required", ErrInvalidRule)
	}
	if r.In.Min == r.In.Max {
		return fmt.Errorf("%w: %s has an empty input range", ErrInvalidRule, r.Joint)
	}
	if r.Domain.Min > r.Domain.Max {
		return fmt.Errorf("%w: %s domain min exceeds max", ErrInvalidRule, r.Joint)
	}
	return nil
}

// Apply clamps v to the rule's domain and maps it to the joint's range.
func (r Rule) Apply(v float64) float64 {
	return Map(Clamp(v, r.Domain.Min, r.Domain.Max), r.In.Min, r.In.Max, r.Out.Min, r.Out.Max)
}

// Table is an ordered set of rules.
type Table struct {
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Validate checks every rule.
func (t Table) Validate() error {
	for _, r := range t.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns joint values in degrees for every rule whose angle is present.
// When two rules target the same joint the later one wins.
func (t Table) Apply(angles pose.AngleSet) pose.AngleSet {
	joints := make(pose.AngleSet, len(t.Rules))
	for _, r := range t.Rules {
		v, ok := angles[r.Angle]
		if !ok {
			continue
		}
		joints[r.Joint] = r.Apply(v)
	}
	return joints
}

// Joints lists the joint names the table drives, sorted.
func (t Table) Joints() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range t.Rules {
		if !seen[r.Joint] {
			seen[r.Joint] = true
			names = append(names, r.Joint)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultTable is the calibration used for six-axis arms whose joints are
// named joint_1..joint_6, driven from the right arm and torso.
func DefaultTable() Table {
	return Table{Rules: []Rule{
		// base yaw follows how far the shoulder line is tilted
		{Joint: "joint_1", Angle: "Shoulder Line", Domain: FullTurn, In: FullTurn, Out: Range{Min: -90, Max: 90}},
		// shoulder lift: arm hanging (0) to straight up (180)
		{Joint: "joint_2", Angle: "Right Shoulder", Domain: FullTurn, In: Range{Min: 0, Max: 180}, Out: Range{Min: -90, Max: 90}},
		// elbow: straight arm (180) is joint zero
		{Joint: "joint_3", Angle: "Right Elbow", Domain: FullTurn, In: Range{Min: 180, Max: 0}, Out: Range{Min: 0, Max: 150}},
		{Joint: "joint_4", Angle: "Right Upper Arm", Domain: HalfTurn, In: HalfTurn, Out: Range{Min: -180, Max: 180}},
		{Joint: "joint_5", Angle: "Left Elbow", Domain: FullTurn, In: Range{Min: 180, Max: 0}, Out: Range{Min: -90, Max: 90}},
		{Joint: "joint_6", Angle: "Left Upper Arm", Domain: HalfTurn, In: HalfTurn, Out: HalfTurn},
	}}
}

// LoadTable reads a YAML calibration file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read calibration file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML calibration table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("failed to parse calibration: %w", err)
	}
	if len(t.Rules) == 0 {
		return Table{}, fmt.Errorf("%w: calibration has no rules", ErrInvalidRule)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}
