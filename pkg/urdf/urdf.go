// Package urdf reads Unified Robot Description Format files: the robot's
// links and the joints that connect them.
package urdf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

var (
	// ErrInvalid is returned when a document is not a usable URDF robot.
	ErrInvalid = errors.New("invalid urdf")

	// ErrUnknownJoint is returned when a joint name is not in the robot.
	ErrUnknownJoint = errors.New("unknown joint")
)

// JointType is the URDF joint type attribute.
type JointType string

const (
	Revolute   JointType = "revolute"
	Continuous JointType = "continuous"
	Prismatic  JointType = "prismatic"
	Fixed      JointType = "fixed"
	Floating   JointType = "floating"
	Planar     JointType = "planar"
)

// Movable reports whether the joint is driven by a single scalar value.
func (t JointType) Movable() bool {
	return t == Revolute || t == Continuous || t == Prismatic
}

// Angular reports whether the joint value is an angle in radians.
func (t JointType) Angular() bool {
	return t == Revolute || t == Continuous
}

func (t JointType) valid() bool {
	switch t {
	case Revolute, Continuous, Prismatic, Fixed, Floating, Planar:
		return true
	}
	return false
}

// Limit bounds a joint value. Revolute limits are radians, prismatic limits meters.
type Limit struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Effort   float64 `json:"effort,omitempty"`
	Velocity float64 `json:"velocity,omitempty"`
}

// Mimic makes a joint follow another: value = Multiplier*source + Offset.
type Mimic struct {
	Joint      string  `json:"joint"`
	Multiplier float64 `json:"multiplier"`
	Offset     float64 `json:"offset"`
}

// Origin is the child frame pose relative to the parent link.
type Origin struct {
	XYZ r3.Vector `json:"xyz"`
	RPY r3.Vector `json:"rpy"`
}

// Joint is one URDF joint.
type Joint struct {
	Name   string    `json:"name"`
	Type   JointType `json:"type"`
	Parent string    `json:"parent"`
	Child  string    `json:"child"`
	Origin Origin    `json:"origin"`
	Axis   r3.Vector `json:"axis"`
	Limit  Limit     `json:"limit"`
	Mimic  *Mimic    `json:"mimic,omitempty"`
}

// Link is one URDF link. Only names are kept; geometry is for renderers.
type Link struct {
	Name string `json:"name"`
}

// Robot is a parsed URDF document.
type Robot struct {
	Name   string            `json:"name"`
	Links  []Link            `json:"links"`
	Joints map[string]*Joint `json:"joints"`
}

// Joint returns the named joint.
func (r *Robot) Joint(name string) (*Joint, error) {
	j, ok := r.Joints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJoint, name)
	}
	return j, nil
}

// JointNames returns every joint name in display order.
func (r *Robot) JointNames() []string {
	names := make([]string, 0, len(r.Joints))
	for name := range r.Joints {
		names = append(names, name)
	}
	SortJoints(names)
	return names
}

// MovableJoints returns the joints that take a value, in display order.
func (r *Robot) MovableJoints() []*Joint {
	var out []*Joint
	for _, name := range r.JointNames() {
		if j := r.Joints[name]; j.Type.Movable() {
			out = append(out, j)
		}
	}
	return out
}

type xmlRobot struct {
	XMLName xml.Name   `xml:"robot"`
	Name    string     `xml:"name,attr"`
	Links   []xmlLink  `xml:"link"`
	Joints  []xmlJoint `xml:"joint"`
}

type xmlLink struct {
	Name string `xml:"name,attr"`
}

type xmlJoint struct {
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Parent xmlFrame   `xml:"parent"`
	Child  xmlFrame   `xml:"child"`
	Origin *xmlOrigin `xml:"origin"`
	Axis   *xmlAxis   `xml:"axis"`
	Limit  *xmlLimit  `xml:"limit"`
	Mimic  *xmlMimic  `xml:"mimic"`
}

type xmlFrame struct {
	Link string `xml:"link,attr"`
}

type xmlOrigin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type xmlAxis struct {
	XYZ string `xml:"xyz,attr"`
}

type xmlLimit struct {
	Lower    float64 `xml:"lower,attr"`
	Upper    float64 `xml:"upper,attr"`
	Effort   float64 `xml:"effort,attr"`
	Velocity float64 `xml:"velocity,attr"`
}

type xmlMimic struct {
	Joint      string   `xml:"joint,attr"`
	Multiplier *float64 `xml:"multiplier,attr"`
	Offset     float64  `xml:"offset,attr"`
}

// Load parses the URDF file at path.
func Load(path string) (*Robot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open urdf: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a URDF document.
func Parse(r io.Reader) (*Robot, error) {
	var doc xmlRobot
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	robot := &Robot{
		Name:   doc.Name,
		Joints: make(map[string]*Joint, len(doc.Joints)),
	}
	links := make(map[string]bool, len(doc.Links))
	for _, l := range doc.Links {
		robot.Links = append(robot.Links, Link{Name: l.Name})
		links[l.Name] = true
	}

	for _, xj := range doc.Joints {
		j, err := xj.joint()
		if err != nil {
			return nil, err
		}
		if _, dup := robot.Joints[j.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate joint %q", ErrInvalid, j.Name)
		}
		if !links[j.Parent] || !links[j.Child] {
			return nil, fmt.Errorf("%w: joint %q references unknown link", ErrInvalid, j.Name)
		}
		robot.Joints[j.Name] = j
	}

	for _, j := range robot.Joints {
		if j.Mimic == nil {
			continue
		}
		if _, ok := robot.Joints[j.Mimic.Joint]; !ok {
			return nil, fmt.Errorf("%w: joint %q mimics unknown joint %q", ErrInvalid, j.Name, j.Mimic.Joint)
		}
	}
	return robot, nil
}

func (xj xmlJoint) joint() (*Joint, error) {
	if xj.Name == "" {
		return nil, fmt.Errorf("%w: joint without a name", ErrInvalid)
	}
	t := JointType(xj.Type)
	if !t.valid() {
		return nil, fmt.Errorf("%w: joint %q has unknown type %q", ErrInvalid, xj.Name, xj.Type)
	}

	j := &Joint{
		Name:   xj.Name,
		Type:   t,
		Parent: xj.Parent.Link,
		Child:  xj.Child.Link,
		Axis:   r3.Vector{X: 1},
	}

	var err error
	if xj.Origin != nil {
		if j.Origin.XYZ, err = parseVector(xj.Origin.XYZ); err != nil {
			return nil, fmt.Errorf("%w: joint %q origin xyz: %v", ErrInvalid, xj.Name, err)
		}
		if j.Origin.RPY, err = parseVector(xj.Origin.RPY); err != nil {
			return nil, fmt.Errorf("%w: joint %q origin rpy: %v", ErrInvalid, xj.Name, err)
		}
	}
	if xj.Axis != nil && xj.Axis.XYZ != "" {
		if j.Axis, err = parseVector(xj.Axis.XYZ); err != nil {
			return nil, fmt.Errorf("%w: joint %q axis: %v", ErrInvalid, xj.Name, err)
		}
	}
	if xj.Limit != nil {
		j.Limit = Limit{
			Lower:    xj.Limit.Lower,
			Upper:    xj.Limit.Upper,
			Effort:   xj.Limit.Effort,
			Velocity: xj.Limit.Velocity,
		}
	}
	if xj.Mimic != nil {
		m := &Mimic{Joint: xj.Mimic.Joint, Multiplier: 1, Offset: xj.Mimic.Offset}
		if xj.Mimic.Multiplier != nil {
			m.Multiplier = *xj.Mimic.Multiplier
		}
		j.Mimic = m
	}
	return j, nil
}

// parseVector reads a space-delimited "x y z" attribute. Empty means zero.
func parseVector(s string) (r3.Vector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return r3.Vector{}, nil
	}
	if len(fields) != 3 {
		return r3.Vector{}, fmt.Errorf("want 3 values, got %d", len(fields))
	}

	var v [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vector{}, err
		}
		v[i] = x
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}
