package web

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-urdfpose/pkg/motion"
	"github.com/teslashibe/go-urdfpose/pkg/pose"
	"github.com/teslashibe/go-urdfpose/pkg/robot"
	"github.com/teslashibe/go-urdfpose/pkg/video"
)

func (s *Server) requireVideos(c *fiber.Ctx) error {
	if s.videos == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "video storage not configured")
	}
	return c.Next()
}

func (s *Server) requireAnalyzer(c *fiber.Ctx) error {
	if s.analyzer == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pose detection not configured")
	}
	return c.Next()
}

func (s *Server) video(c *fiber.Ctx) (*video.Video, error) {
	v, err := s.videos.Get(c.Params("id"))
	if err != nil {
		return nil, statusError(err)
	}
	return v, nil
}

func queryTime(c *fiber.Ctx) (float64, error) {
	t, err := strconv.ParseFloat(c.Query("t", "0"), 64)
	if err != nil || t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid time %q", c.Query("t")))
	}
	return t, nil
}

// VideoResponse describes an uploaded video.
type VideoResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Info     video.Info    `json:"info"`
	Uploaded time.Time     `json:"uploaded"`
	Markers  []MarkerEntry `json:"markers"`
}

// MarkerEntry is a marker with its place on the progress bar.
type MarkerEntry struct {
	video.Marker
	Progress float64 `json:"progress"` // percent
}

func markerEntries(v *video.Video) []MarkerEntry {
	list := v.Markers.List()
	out := make([]MarkerEntry, len(list))
	for i, m := range list {
		out[i] = MarkerEntry{Marker: m, Progress: video.Progress(m.Time, v.Info.Duration)}
	}
	return out
}

func describe(v *video.Video) VideoResponse {
	return VideoResponse{
		ID:       v.ID,
		Name:     v.Name,
		Info:     v.Info,
		Uploaded: v.Uploaded,
		Markers:  markerEntries(v),
	}
}

func (s *Server) handleListVideos(c *fiber.Ctx) error {
	list := s.videos.List()
	out := make([]VideoResponse, len(list))
	for i, v := range list {
		out[i] = describe(v)
	}
	return c.JSON(fiber.Map{"videos": out, "count": len(out)})
}

func (s *Server) handleUploadVideo(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file field")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	v, err := s.videos.Save(fh.Filename, f)
	if err != nil {
		return statusError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(describe(v))
}

func (s *Server) handleGetVideo(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	return c.JSON(describe(v))
}

func (s *Server) handleDeleteVideo(c *fiber.Ctx) error {
	if err := s.videos.Delete(c.Params("id")); err != nil {
		return statusError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleThumbnails(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	n := c.QueryInt("n", video.ThumbnailCount)
	if n <= 0 || n > 200 {
		return fiber.NewError(fiber.StatusBadRequest, "n must be between 1 and 200")
	}

	thumbs, err := video.Thumbnails(v.Source(), n, image.Pt(video.ThumbnailWidth, video.ThumbnailHeight))
	if err != nil {
		return statusError(err)
	}
	return c.JSON(fiber.Map{"thumbnails": thumbs, "count": len(thumbs)})
}

// handleVideoFrame returns the frame at t as JPEG, optionally with the
// detected pose drawn on it.
func (s *Server) handleVideoFrame(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	t, err := queryTime(c)
	if err != nil {
		return err
	}
	overlay := c.QueryBool("overlay")
	if overlay && s.analyzer == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pose detection not configured")
	}

	img, err := v.Source().FrameAt(t)
	if err != nil {
		return statusError(err)
	}
	defer img.Close()

	if overlay {
		res, err := s.analyzer.Frame(img)
		if err != nil {
			return err
		}
		if res.Pose != nil {
			video.DrawPose(&img, *res.Pose, res.Angles, s.threshold)
		}
	}

	data, err := video.EncodeJPEG(img)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

func (s *Server) handleVideoPose(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	t, err := queryTime(c)
	if err != nil {
		return err
	}

	res, err := s.analyzer.At(v.Source(), t)
	if err != nil {
		return statusError(err)
	}
	if c.QueryBool("apply") && len(res.Joints) > 0 {
		if err := s.applyDegrees(robot.SourcePose, res.Joints); err != nil {
			return statusError(err)
		}
	}
	return c.JSON(res)
}

func (s *Server) handleListMarkers(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	markers := markerEntries(v)
	return c.JSON(fiber.Map{"markers": markers, "count": len(markers)})
}

// MarkerRequest is the body of POST /api/videos/:id/markers. Angles measured
// by the browser may be sent along; otherwise the frame at Time is analyzed.
type MarkerRequest struct {
	Time   float64       `json:"time"`
	Angles pose.AngleSet `json:"angles"`
}

func (s *Server) handleAddMarker(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	var req MarkerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if req.Time < 0 || math.IsNaN(req.Time) || math.IsInf(req.Time, 0) {
		return badRequest(errors.New("time must be a non-negative number"))
	}

	angles := req.Angles
	if len(angles) == 0 {
		if s.analyzer == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "pose detection not configured")
		}
		res, err := s.analyzer.At(v.Source(), req.Time)
		if err != nil {
			return statusError(err)
		}
		angles = res.Angles
	}

	m := v.Markers.Add(req.Time, angles, s.calibration.Apply(angles))
	return c.Status(fiber.StatusCreated).JSON(MarkerEntry{Marker: m, Progress: video.Progress(m.Time, v.Info.Duration)})
}

func (s *Server) handleDeleteMarker(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	if err := v.Markers.Remove(c.Params("mid")); err != nil {
		return statusError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleMarkerKeyframe turns a marker's joint targets into a keyframe. Joints
// the marker does not drive keep the robot's current values.
func (s *Server) handleMarkerKeyframe(c *fiber.Ctx) error {
	v, err := s.video(c)
	if err != nil {
		return err
	}
	m, err := v.Markers.Get(c.Params("mid"))
	if err != nil {
		return statusError(err)
	}

	values := s.model.JointValues()
	for name, deg := range m.Joints {
		values[name] = deg * math.Pi / 180
	}
	return s.addKeyframe(c, motion.NewKeyframe(motion.Snapshot(values)))
}
