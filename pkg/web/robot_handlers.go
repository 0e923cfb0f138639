package web

import (
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-urdfpose/pkg/robot"
	"github.com/teslashibe/go-urdfpose/pkg/urdf"
)

const (
	unitRadians = "rad"
	unitDegrees = "deg"
)

// fromUnit converts a request value to the joint's native unit. Degrees only
// apply to angular joints; prismatic values are always meters.
func fromUnit(j *urdf.Joint, v float64, unit string) float64 {
	if unit == unitDegrees {
		return urdf.FromDisplay(j, v)
	}
	return v
}

func checkUnit(unit string) error {
	switch unit {
	case "", unitRadians, unitDegrees:
		return nil
	}
	return fmt.Errorf("unknown unit %q", unit)
}

// JointInfo describes one joint for the viewer's control panel.
type JointInfo struct {
	Name    string         `json:"name"`
	Type    urdf.JointType `json:"type"`
	Parent  string         `json:"parent"`
	Child   string         `json:"child"`
	Movable bool           `json:"movable"`
	Min     float64        `json:"min,omitempty"` // slider range, native units
	Max     float64        `json:"max,omitempty"`
	Value   float64        `json:"value"`
	Display float64        `json:"display"` // degrees for angular joints
	Mimic   *urdf.Mimic    `json:"mimic,omitempty"`
}

// RobotResponse is the body of GET /api/robot.
type RobotResponse struct {
	Name         string             `json:"name"`
	IgnoreLimits bool               `json:"ignore_limits"`
	Joints       []JointInfo        `json:"joints"`
	Values       map[string]float64 `json:"values"`
}

func (s *Server) robotState() RobotResponse {
	r := s.model.Robot()
	ignore := s.model.IgnoreLimits()
	values := s.model.JointValues()

	names := r.JointNames()

	joints := make([]JointInfo, 0, len(names))
	for _, name := range names {
		j := r.Joints[name]
		info := JointInfo{
			Name:    j.Name,
			Type:    j.Type,
			Parent:  j.Parent,
			Child:   j.Child,
			Movable: j.Type.Movable(),
			Mimic:   j.Mimic,
		}
		if info.Movable {
			info.Min, info.Max = urdf.SliderRange(j, ignore)
			info.Value = values[name]
			info.Display = urdf.DisplayValue(j, info.Value)
		}
		joints = append(joints, info)
	}

	return RobotResponse{
		Name:         r.Name,
		IgnoreLimits: ignore,
		Joints:       joints,
		Values:       values,
	}
}

func (s *Server) handleGetRobot(c *fiber.Ctx) error {
	return c.JSON(s.robotState())
}

// JointsRequest is the body of PUT /api/robot/joints.
type JointsRequest = robot.JointsRequest

func (s *Server) handleSetJoints(c *fiber.Ctx) error {
	var req JointsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := checkUnit(req.Unit); err != nil {
		return badRequest(err)
	}
	if len(req.Values) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no joint values")
	}

	values := make(map[string]float64, len(req.Values))
	for name, v := range req.Values {
		j, err := s.model.Robot().Joint(name)
		if err != nil {
			return statusError(err)
		}
		values[name] = fromUnit(j, v, req.Unit)
	}

	s.manualEdit()
	if _, err := s.model.Set(robot.SourceManual, values); err != nil {
		return statusError(err)
	}
	return c.JSON(s.robotState())
}

// JointRequest is the body of PUT /api/robot/joints/:name.
type JointRequest struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit,omitempty"` // "rad" (default) or "deg"
}

func (s *Server) handleSetJoint(c *fiber.Ctx) error {
	var req JointRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if req.Value == nil || math.IsNaN(*req.Value) || math.IsInf(*req.Value, 0) {
		return fiber.NewError(fiber.StatusBadRequest, "value must be a number")
	}
	if err := checkUnit(req.Unit); err != nil {
		return badRequest(err)
	}

	name := c.Params("name")
	j, err := s.model.Robot().Joint(name)
	if err != nil {
		return statusError(err)
	}

	s.manualEdit()
	if _, err := s.model.SetJointValue(name, fromUnit(j, *req.Value, req.Unit)); err != nil {
		return statusError(err)
	}

	v, _ := s.model.JointValue(name)
	return c.JSON(fiber.Map{
		"name":    name,
		"value":   v,
		"display": urdf.DisplayValue(j, v),
	})
}

// OptionsRequest is the body of PATCH /api/robot/options.
type OptionsRequest struct {
	IgnoreLimits *bool `json:"ignore_limits"`
}

func (s *Server) handleSetOptions(c *fiber.Ctx) error {
	var req OptionsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if req.IgnoreLimits != nil {
		s.model.SetIgnoreLimits(*req.IgnoreLimits)
	}
	return c.JSON(s.robotState())
}
