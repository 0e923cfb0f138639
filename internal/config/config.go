// Package config reads go-urdfpose settings from the environment.
// Command-line flags override these values in cmd/urdfpose.
package config

import (
	"os"
	"strconv"
)

// Defaults used when the matching environment variable is unset.
const (
	DefaultPort      = "8080"
	DefaultFrameRate = 24.0
	DefaultLogLevel  = "info"
)

// Config holds the server settings.
type Config struct {
	URDFPath    string  // URDF_PATH
	Port        string  // PORT
	FrameRate   float64 // FRAME_RATE
	PoseModel   string  // POSE_MODEL, path to a MoveNet ONNX file
	Calibration string  // CALIBRATION, YAML remap table
	PresetDir   string  // PRESET_DIR
	VideoDir    string  // VIDEO_DIR, where uploads are stored
	ViewerURL   string  // VIEWER_URL, remote viewer HTTP API
	ViewerWS    string  // VIEWER_WS, remote viewer websocket
	LogLevel    string  // LOG_LEVEL
}

// Load builds a Config from the environment.
func Load() Config {
	return Config{
		URDFPath:    Env("URDF_PATH", ""),
		Port:        Env("PORT", DefaultPort),
		FrameRate:   EnvFloat("FRAME_RATE", DefaultFrameRate),
		PoseModel:   Env("POSE_MODEL", ""),
		Calibration: Env("CALIBRATION", ""),
		PresetDir:   Env("PRESET_DIR", ""),
		VideoDir:    Env("VIDEO_DIR", os.TempDir()),
		ViewerURL:   Env("VIEWER_URL", ""),
		ViewerWS:    Env("VIEWER_WS", ""),
		LogLevel:    Env("LOG_LEVEL", DefaultLogLevel),
	}
}

// Env returns the named variable or def when it is unset or empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvFloat parses the named variable as a float. Unset or malformed values return def.
func EnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}
