// urdfpose serves a URDF robot's joint state over HTTP and WebSocket, plays
// keyframe animations on it and drives it from human pose keypoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/teslashibe/go-urdfpose/internal/config"
	"github.com/teslashibe/go-urdfpose/internal/log"
	"github.com/teslashibe/go-urdfpose/pkg/detection"
	"github.com/teslashibe/go-urdfpose/pkg/motion"
	"github.com/teslashibe/go-urdfpose/pkg/remap"
	"github.com/teslashibe/go-urdfpose/pkg/robot"
	"github.com/teslashibe/go-urdfpose/pkg/urdf"
	"github.com/teslashibe/go-urdfpose/pkg/video"
	"github.com/teslashibe/go-urdfpose/pkg/web"
)

// viewerRate is how often joint changes are pushed to remote viewers.
const viewerRate = 50 * time.Millisecond

func main() {
	cfg := config.Load()

	urdfPath := flag.String("urdf", cfg.URDFPath, "Path to the robot URDF file")
	port := flag.String("port", cfg.Port, "HTTP server port")
	fps := flag.Float64("fps", cfg.FrameRate, "Animation frame rate")
	model := flag.String("model", cfg.PoseModel, "MoveNet ONNX model for video pose detection (optional)")
	calibration := flag.String("calibration", cfg.Calibration, "YAML angle-to-joint calibration (optional)")
	presets := flag.String("presets", cfg.PresetDir, "Directory of extra keyframe presets (optional)")
	videoDir := flag.String("videos", cfg.VideoDir, "Directory for uploaded videos")
	static := flag.String("static", "", "Directory of viewer files served at / (optional)")
	viewerURL := flag.String("viewer-url", cfg.ViewerURL, "Forward joint changes to another server's HTTP API")
	viewerWS := flag.String("viewer-ws", cfg.ViewerWS, "Forward joint changes to another server's /ws/joints")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	log.Init(level)

	if *urdfPath == "" {
		fmt.Fprintln(os.Stderr, "usage: urdfpose -urdf robot.urdf [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	r, err := urdf.Load(*urdfPath)
	if err != nil {
		log.Error("failed to load robot", "path", *urdfPath, "error", err)
		os.Exit(1)
	}
	log.Info("robot loaded", "name", r.Name, "joints", len(r.Joints), "movable", len(r.MovableJoints()))
	m := robot.NewModel(r)

	table := remap.DefaultTable()
	if *calibration != "" {
		if table, err = remap.LoadTable(*calibration); err != nil {
			log.Error("failed to load calibration", "path", *calibration, "error", err)
			os.Exit(1)
		}
	}

	lib := motion.NewLibrary()
	if err := lib.LoadBuiltIn(); err != nil {
		log.Warn("built-in presets unavailable", "error", err)
	}
	if *presets != "" {
		if err := lib.LoadDir(*presets); err != nil {
			log.Warn("failed to load presets", "dir", *presets, "error", err)
		}
	}
	log.Info("presets loaded", "count", lib.Count())

	opts := web.Options{
		Port:        *port,
		FrameRate:   *fps,
		Model:       m,
		Presets:     lib,
		Calibration: table,
		StaticDir:   *static,
		Debug:       *debug,
	}

	if *model != "" {
		dcfg := detection.DefaultConfig()
		dcfg.ModelPath = *model
		det, err := detection.NewMoveNet(dcfg)
		if err != nil {
			log.Warn("pose detection disabled", "model", *model, "error", err)
		} else {
			defer det.Close()
			a := video.NewAnalyzer(det)
			a.Table = table
			opts.Analyzer = a
		}
	}

	videos, err := video.NewLibrary(filepath.Join(*videoDir, "urdfpose-videos"))
	if err != nil {
		log.Warn("video uploads disabled", "error", err)
	} else {
		defer videos.Close()
		opts.Videos = videos
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopForwarding := forwardToViewers(ctx, m, *viewerURL, *viewerWS)
	defer stopForwarding()

	srv := web.NewServer(opts)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", "error", err)
			cancel()
		}
	}()
	log.Info("urdfpose ready",
		"api", fmt.Sprintf("http://localhost:%s/api/robot", *port),
		"joints_ws", fmt.Sprintf("ws://localhost:%s/ws/joints", *port),
		"pose_ws", fmt.Sprintf("ws://localhost:%s/ws/pose", *port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// forwardToViewers mirrors every joint change to the configured remote
// viewers through a rate limiter. It returns a function that stops forwarding.
func forwardToViewers(ctx context.Context, m *robot.Model, httpURL, wsURL string) func() {
	var targets robot.Fanout
	var closers []robot.Controller

	if httpURL != "" {
		c := robot.NewHTTPController(httpURL)
		if st, err := c.State(ctx); err != nil {
			log.Warn("remote viewer not reachable yet", "url", httpURL, "error", err)
		} else {
			log.Info("remote viewer connected", "url", httpURL, "robot", st.Name)
		}
		targets = append(targets, c)
		closers = append(closers, c)
	}
	if wsURL != "" {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		c, err := robot.DialWS(dctx, wsURL)
		cancel()
		if err != nil {
			log.Warn("remote viewer websocket unavailable", "url", wsURL, "error", err)
		} else {
			targets = append(targets, c)
			closers = append(closers, c)
		}
	}
	if len(targets) == 0 {
		return func() {}
	}

	rc := robot.NewRateController(targets, viewerRate)
	go rc.Run()

	unsub := m.Subscribe(func(ch robot.Change) {
		if ch.Source == robot.SourceRemote {
			return
		}
		rc.SetJointValues(ch.Values)
	})

	return func() {
		unsub()
		rc.Stop()
		for _, c := range closers {
			c.Close()
		}
		ticks, skipped, errs := rc.Stats()
		log.Info("viewer forwarding stopped", "ticks", ticks, "skipped", skipped, "errors", errs)
	}
}
