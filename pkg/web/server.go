// Package web serves the robot viewer API: joint control, keyframe
// animation, pose-to-joint conversion and video pose analysis.
package web

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-urdfpose/internal/log"
	"github.com/teslashibe/go-urdfpose/pkg/hub"
	"github.com/teslashibe/go-urdfpose/pkg/ingest"
	"github.com/teslashibe/go-urdfpose/pkg/motion"
	"github.com/teslashibe/go-urdfpose/pkg/pose"
	"github.com/teslashibe/go-urdfpose/pkg/protocol"
	"github.com/teslashibe/go-urdfpose/pkg/remap"
	"github.com/teslashibe/go-urdfpose/pkg/robot"
	"github.com/teslashibe/go-urdfpose/pkg/video"
)

// Options wires the server to its state.
type Options struct {
	Port      string
	FrameRate float64

	Model       *robot.Model
	Presets     *motion.Library
	Calibration remap.Table
	Threshold   float64

	// Videos and Analyzer are optional; their routes answer 503 when unset.
	Videos   *video.Library
	Analyzer *video.Analyzer

	// StaticDir, when set, is served at /.
	StaticDir string

	// Debug logs every request.
	Debug bool
}

// Server is the HTTP/WebSocket front end.
type Server struct {
	app  *fiber.App
	port string

	model       *robot.Model
	seq         *motion.Sequence
	player      *motion.Player
	presets     *motion.Library
	calibration remap.Table
	threshold   float64
	videos      *video.Library
	analyzer    *video.Analyzer

	jointsHub *hub.Hub
	poses     *ingest.Hub

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()
}

// NewServer builds the app and registers every route.
func NewServer(opts Options) *Server {
	if opts.Presets == nil {
		opts.Presets = motion.NewLibrary()
	}
	if opts.Calibration.Rules == nil {
		opts.Calibration = remap.DefaultTable()
	}
	if !(opts.Threshold > 0) {
		opts.Threshold = pose.DefaultScoreThreshold
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		port:        opts.Port,
		model:       opts.Model,
		seq:         motion.NewSequence(),
		presets:     opts.Presets,
		calibration: opts.Calibration,
		threshold:   opts.Threshold,
		videos:      opts.Videos,
		analyzer:    opts.Analyzer,
		jointsHub:   hub.New("joints"),
		poses:       ingest.NewHub(),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.player = motion.NewPlayer(s.seq, robot.SetterFunc(s.applyAnimation), motion.PlayerOptions{FrameRate: opts.FrameRate})

	s.unsub = s.model.Subscribe(s.broadcastChange)
	s.jointsHub.OnMessage(s.handleJointsMessage)
	s.poses.OnPose(s.handlePoseFrame)

	app := fiber.New(fiber.Config{
		AppName:               "go-urdfpose",
		DisableStartupMessage: true,
		BodyLimit:             512 * 1024 * 1024,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if opts.Debug {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"robot":     s.model.Robot().Name,
			"viewers":   s.jointsHub.ClientCount(),
			"sources":   s.poses.Count(),
			"animation": s.player.State(),
		})
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		st := s.poses.Stats()
		return c.SendString(fmt.Sprintf(`# HELP urdfpose_viewers Connected joint viewers
# TYPE urdfpose_viewers gauge
urdfpose_viewers %d

# HELP urdfpose_viewer_drops Viewers dropped for falling behind
# TYPE urdfpose_viewer_drops counter
urdfpose_viewer_drops %d

# HELP urdfpose_pose_sources Connected pose sources
# TYPE urdfpose_pose_sources gauge
urdfpose_pose_sources %d

# HELP urdfpose_poses_received Pose frames received
# TYPE urdfpose_poses_received counter
urdfpose_poses_received %d

# HELP urdfpose_keyframes Keyframes in the animation
# TYPE urdfpose_keyframes gauge
urdfpose_keyframes %d
`, s.jointsHub.ClientCount(), s.jointsHub.Dropped(), st.Sources, st.PosesReceived, s.seq.Len()))
	})

	api := app.Group("/api")

	api.Get("/robot", s.handleGetRobot)
	api.Put("/robot/joints", s.handleSetJoints)
	api.Put("/robot/joints/:name", s.handleSetJoint)
	api.Patch("/robot/options", s.handleSetOptions)

	api.Get("/keyframes", s.handleListKeyframes)
	api.Post("/keyframes", s.handleAddKeyframe)
	api.Delete("/keyframes", s.handleClearKeyframes)
	api.Patch("/keyframes/:id", s.handleUpdateKeyframe)
	api.Delete("/keyframes/:id", s.handleDeleteKeyframe)

	api.Get("/animation", s.handleGetAnimation)
	api.Post("/animation/start", s.handleStartAnimation)
	api.Post("/animation/stop", s.handleStopAnimation)
	api.Post("/animation/reset", s.handleResetAnimation)

	api.Post("/frames", s.handleFrames)
	api.Post("/angles", s.handleAngles)

	api.Get("/presets", s.handleListPresets)
	api.Get("/presets/:name", s.handleGetPreset)
	api.Post("/presets/:name/keyframe", s.handlePresetKeyframe)

	videos := api.Group("/videos", s.requireVideos)
	videos.Get("/", s.handleListVideos)
	videos.Post("/", s.handleUploadVideo)
	videos.Get("/:id", s.handleGetVideo)
	videos.Delete("/:id", s.handleDeleteVideo)
	videos.Get("/:id/thumbnails", s.handleThumbnails)
	videos.Get("/:id/frame", s.handleVideoFrame)
	videos.Get("/:id/pose", s.requireAnalyzer, s.handleVideoPose)
	videos.Get("/:id/markers", s.handleListMarkers)
	videos.Post("/:id/markers", s.handleAddMarker)
	videos.Delete("/:id/markers/:mid", s.handleDeleteMarker)
	videos.Post("/:id/markers/:mid/keyframe", s.handleMarkerKeyframe)

	s.poses.RegisterAPIRoutes(api)

	// WebSocket routes
	app.Get("/ws/joints", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(s.handleJointsWS))
	s.poses.RegisterRoutes(app)

	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}

	s.app = app
	return s
}

// App returns the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Sequence returns the keyframe sequence.
func (s *Server) Sequence() *motion.Sequence { return s.seq }

// Player returns the animation player.
func (s *Server) Player() *motion.Player { return s.player }

// Start runs the broadcast hub and serves until Shutdown.
func (s *Server) Start() error {
	go s.jointsHub.Run(s.ctx)
	log.Info("web server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()
}

// Shutdown stops playback, closes websocket clients and stops the listener.
func (s *Server) Shutdown() error {
	s.player.Stop()
	s.unsub()
	s.cancel()
	return s.app.Shutdown()
}

// applyAnimation drives the model from the player, skipping keyframe joints
// the loaded robot does not have.
func (s *Server) applyAnimation(values map[string]float64) error {
	_, err := s.model.Set(robot.SourceAnimation, s.knownJoints(values))
	return err
}

func (s *Server) knownJoints(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for name, v := range values {
		if j, err := s.model.Robot().Joint(name); err == nil && j.Type.Movable() {
			out[name] = v
		}
	}
	return out
}

// manualEdit stops playback before a user-driven joint change.
func (s *Server) manualEdit() {
	if s.player.State() == motion.StatePlaying {
		s.player.Stop()
		s.broadcastAnimation()
	}
}

func (s *Server) broadcastChange(ch robot.Change) {
	msg, err := protocol.NewJointsMessage(ch.Values, ch.Source)
	if err != nil {
		return
	}
	s.broadcast(msg)
}

func (s *Server) broadcastAnimation() {
	msg, err := protocol.NewMessage(protocol.TypeAnimation, s.animationState())
	if err != nil {
		return
	}
	s.broadcast(msg)
}

func (s *Server) broadcastKeyframes() {
	msg, err := protocol.NewMessage(protocol.TypeKeyframes, protocol.KeyframesData{Keyframes: s.seq.Keyframes()})
	if err != nil {
		return
	}
	s.broadcast(msg)
}

func (s *Server) broadcast(msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		log.Warn("encode broadcast failed", "type", msg.Type, "error", err)
		return
	}
	s.jointsHub.Broadcast(hub.NewJSONMessage(data))
}

func (s *Server) animationState() protocol.AnimationData {
	return protocol.AnimationData{
		State:     s.player.State(),
		Cursor:    s.player.Cursor(),
		Keyframes: s.seq.Len(),
		FrameRate: s.player.FrameRate(),
	}
}

// handleJointsWS sends the current joint state, then serves the client
// through the broadcast hub.
func (s *Server) handleJointsWS(c *websocket.Conn) {
	client := hub.NewClient(s.jointsHub, c)
	if msg, err := protocol.NewJointsMessage(s.model.JointValues(), robot.SourceManual); err == nil {
		if data, err := msg.Bytes(); err == nil {
			client.Send(hub.NewJSONMessage(data))
		}
	}
	client.Run()
}

// handleJointsMessage accepts joint edits and pings from viewers.
func (s *Server) handleJointsMessage(c *hub.Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.reply(c, errorMessage(err))
		return
	}

	switch msg.Type {
	case protocol.TypeJoints:
		jd, err := msg.GetJointsData()
		if err != nil {
			s.reply(c, errorMessage(err))
			return
		}
		s.manualEdit()
		source := jd.Source
		if source == "" {
			source = robot.SourceRemote
		}
		if _, err := s.model.Set(source, jd.Values); err != nil {
			s.reply(c, errorMessage(err))
		}

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			s.reply(c, errorMessage(err))
			return
		}
		if pong, err := protocol.NewPongMessage(*ping); err == nil {
			s.reply(c, pong)
		}

	default:
		s.reply(c, errorMessage(fmt.Errorf("unsupported message type %q", msg.Type)))
	}
}

func (s *Server) reply(c *hub.Client, msg *protocol.Message) {
	if msg == nil {
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	c.Send(hub.NewJSONMessage(data))
}

func errorMessage(err error) *protocol.Message {
	msg, merr := protocol.NewErrorMessage(err)
	if merr != nil {
		return nil
	}
	return msg
}

// handlePoseFrame answers a streamed pose with its angles.
func (s *Server) handlePoseFrame(_ string, pd *protocol.PoseData) (*protocol.Message, error) {
	res, err := s.processPose(pd)
	if err != nil {
		return nil, err
	}
	return protocol.NewAnglesMessage(*res)
}

// processPose computes body angles and joint targets for one pose, applying
// them to the robot when requested.
func (s *Server) processPose(pd *protocol.PoseData) (*protocol.AnglesData, error) {
	if len(pd.Keypoints) == 0 {
		return nil, errors.New("pose has no keypoints")
	}

	defs := pose.MoveNet2D
	if pd.Spatial {
		defs = pose.Spatial3D
	}
	angles := pose.ComputeAngles(pd.Keypoints, defs, s.threshold)
	joints := s.calibration.Apply(angles)

	res := &protocol.AnglesData{Time: pd.Time, Angles: angles, Joints: joints}
	if pd.Apply && len(joints) > 0 {
		if err := s.applyDegrees(robot.SourcePose, joints); err != nil {
			return nil, err
		}
		res.Applied = true
	}
	return res, nil
}

// applyDegrees sets angular joints from degrees, skipping joints the robot lacks.
func (s *Server) applyDegrees(source string, deg map[string]float64) error {
	values := make(map[string]float64, len(deg))
	for name, v := range s.knownJoints(deg) {
		j, _ := s.model.Robot().Joint(name)
		values[name] = fromUnit(j, v, unitDegrees)
	}
	if len(values) == 0 {
		return nil
	}
	s.manualEdit()
	_, err := s.model.Set(source, values)
	return err
}
