package web

import (
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-urdfpose/pkg/motion"
	"github.com/teslashibe/go-urdfpose/pkg/protocol"
)

func validRate(rate float64) error {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", motion.ErrInvalidRate, rate)
	}
	return nil
}

// KeyframeEntry is a keyframe with its 1-based position.
type KeyframeEntry struct {
	ID     string        `json:"id"`
	Index  int           `json:"index"`
	Angles motion.Angles `json:"angles"`
	Rate   float64       `json:"rate"`
	Mode   motion.Mode   `json:"mode"`
}

func entry(kf motion.Keyframe, index int) KeyframeEntry {
	return KeyframeEntry{ID: kf.ID, Index: index, Angles: kf.Angles, Rate: kf.Rate, Mode: kf.Mode}
}

func (s *Server) handleListKeyframes(c *fiber.Ctx) error {
	kfs := s.seq.Keyframes()
	out := make([]KeyframeEntry, len(kfs))
	for i, kf := range kfs {
		out[i] = entry(kf, i+1)
	}
	return c.JSON(fiber.Map{"keyframes": out, "count": len(out)})
}

// KeyframeRequest is the body of POST /api/keyframes. Without angles the
// robot's current joint values are captured.
type KeyframeRequest struct {
	Angles *motion.Angles `json:"angles"`
	Rate   float64        `json:"rate"`
	Mode   motion.Mode    `json:"mode"`
}

func (s *Server) handleAddKeyframe(c *fiber.Ctx) error {
	var req KeyframeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(err)
		}
	}
	if err := validRate(req.Rate); err != nil {
		return statusError(err)
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
	}

	var angles motion.Angles
	if req.Angles != nil {
		angles = *req.Angles
	} else {
		angles = motion.Snapshot(s.model.JointValues())
	}

	kf := motion.NewKeyframe(angles)
	kf.Rate = req.Rate
	if req.Mode != "" {
		kf.Mode = req.Mode
	}
	return s.addKeyframe(c, kf)
}

func (s *Server) addKeyframe(c *fiber.Ctx, kf motion.Keyframe) error {
	kf, index := s.seq.Add(kf)
	s.broadcastKeyframes()
	return c.Status(fiber.StatusCreated).JSON(entry(kf, index))
}

func (s *Server) handleClearKeyframes(c *fiber.Ctx) error {
	s.seq.Clear()
	s.broadcastKeyframes()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleDeleteKeyframe(c *fiber.Ctx) error {
	if err := s.seq.Remove(c.Params("id")); err != nil {
		return statusError(err)
	}
	s.broadcastKeyframes()
	return c.SendStatus(fiber.StatusNoContent)
}

// KeyframeUpdate is the body of PATCH /api/keyframes/:id.
type KeyframeUpdate struct {
	Rate       *float64    `json:"rate"`
	Mode       motion.Mode `json:"mode"`
	ToggleMode bool        `json:"toggle_mode"`
}

func (s *Server) handleUpdateKeyframe(c *fiber.Ctx) error {
	var req KeyframeUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}

	id := c.Params("id")
	kf, err := s.seq.Get(id)
	if err != nil {
		return statusError(err)
	}
	if req.Rate != nil {
		if err := validRate(*req.Rate); err != nil {
			return statusError(err)
		}
		if kf, err = s.seq.SetRate(id, *req.Rate); err != nil {
			return statusError(err)
		}
	}
	switch {
	case req.ToggleMode:
		kf, err = s.seq.ToggleMode(id)
	case req.Mode != "":
		kf, err = s.seq.SetMode(id, req.Mode)
		if err != nil {
			return badRequest(err)
		}
	}
	if err != nil {
		return statusError(err)
	}

	s.broadcastKeyframes()
	return c.JSON(kf)
}

func (s *Server) handleGetAnimation(c *fiber.Ctx) error {
	return c.JSON(s.animationState())
}

func (s *Server) handleStartAnimation(c *fiber.Ctx) error {
	if err := s.player.Start(s.ctx); err != nil {
		return statusError(err)
	}
	s.broadcastAnimation()
	return c.JSON(s.animationState())
}

func (s *Server) handleStopAnimation(c *fiber.Ctx) error {
	s.player.Stop()
	s.broadcastAnimation()
	return c.JSON(s.animationState())
}

func (s *Server) handleResetAnimation(c *fiber.Ctx) error {
	s.player.Reset()
	s.seq.Reset()
	s.broadcastAnimation()
	return c.JSON(s.animationState())
}

// FramesRequest is the body of POST /api/frames.
type FramesRequest struct {
	From      motion.Angles `json:"from"`
	To        motion.Angles `json:"to"`
	Rate      float64       `json:"rate"`
	Mode      motion.Mode   `json:"mode"`
	FrameRate float64       `json:"frame_rate"`
}

func (s *Server) handleFrames(c *fiber.Ctx) error {
	var req FramesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if req.Mode == "" {
		req.Mode = motion.ModeDuration
	}
	if req.FrameRate == 0 {
		req.FrameRate = s.player.FrameRate()
	}

	frames, err := motion.Generate(req.From, req.To, req.Rate, req.Mode, req.FrameRate)
	if err != nil {
		return badRequest(err)
	}
	return c.JSON(fiber.Map{
		"frames":     frames,
		"count":      len(frames),
		"frame_rate": req.FrameRate,
	})
}

func (s *Server) handleAngles(c *fiber.Ctx) error {
	var req protocol.PoseData
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	res, err := s.processPose(&req)
	if err != nil {
		return badRequest(err)
	}
	return c.JSON(res)
}

func (s *Server) handleListPresets(c *fiber.Ctx) error {
	if q := c.Query("q"); q != "" {
		names := s.presets.Search(q)
		out := make([]*motion.Preset, 0, len(names))
		for _, name := range names {
			if p, err := s.presets.Get(name); err == nil {
				out = append(out, p)
			}
		}
		return c.JSON(fiber.Map{"presets": out, "count": len(out)})
	}
	list := s.presets.List()
	return c.JSON(fiber.Map{"presets": list, "count": len(list)})
}

func (s *Server) handleGetPreset(c *fiber.Ctx) error {
	p, err := s.presets.Get(c.Params("name"))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(p)
}

func (s *Server) handlePresetKeyframe(c *fiber.Ctx) error {
	p, err := s.presets.Get(c.Params("name"))
	if err != nil {
		return statusError(err)
	}
	return s.addKeyframe(c, p.Keyframe())
}
