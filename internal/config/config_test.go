package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"URDF_PATH", "PORT", "FRAME_RATE", "POSE_MODEL", "VIEWER_URL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.FrameRate != DefaultFrameRate {
		t.Errorf("FrameRate = %v, want %v", cfg.FrameRate, DefaultFrameRate)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.VideoDir != os.TempDir() {
		t.Errorf("VideoDir = %q", cfg.VideoDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("URDF_PATH", "/robots/arm.urdf")
	t.Setenv("PORT", "9000")
	t.Setenv("FRAME_RATE", "30")
	t.Setenv("VIEWER_URL", "http://viewer:8000")

	cfg := Load()
	if cfg.URDFPath != "/robots/arm.urdf" || cfg.Port != "9000" || cfg.ViewerURL != "http://viewer:8000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.FrameRate != 30 {
		t.Errorf("FrameRate = %v, want 30", cfg.FrameRate)
	}
}

func TestEnvFloatRejectsBadValues(t *testing.T) {
	tests := []string{"abc", "-5", "0"}
	for _, v := range tests {
		t.Run(v, func(t *testing.T) {
			t.Setenv("FRAME_RATE", v)
			if got := EnvFloat("FRAME_RATE", 24); got != 24 {
				t.Errorf("EnvFloat = %v, want default", got)
			}
		})
	}
}
