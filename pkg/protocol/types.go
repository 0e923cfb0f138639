package protocol

import (
	"github.com/teslashibe/go-urdfpose/pkg/motion"
	"github.com/teslashibe/go-urdfpose/pkg/pose"
)

// PoseData carries the keypoints detected in one frame.
type PoseData struct {
	Keypoints []pose.Keypoint `json:"keypoints"`
	Width     int             `json:"width,omitempty"`  // source frame size, for display only
	Height    int             `json:"height,omitempty"` //
	Time      float64         `json:"time,omitempty"`   // video time in seconds
	Spatial   bool            `json:"spatial,omitempty"`
	Apply     bool            `json:"apply,omitempty"` // drive the robot with the result
}

// AnglesData reports body angles (degrees) and the joint targets derived from them.
type AnglesData struct {
	Time    float64            `json:"time,omitempty"`
	Angles  map[string]float64 `json:"angles"`
	Joints  map[string]float64 `json:"joints"` // degrees
	Applied bool               `json:"applied"`
}

// JointsData carries joint values in radians.
type JointsData struct {
	Values map[string]float64 `json:"values"`
	Source string             `json:"source,omitempty"` // "manual", "animation", "pose", "remote"
}

// AnimationData reports the playback state.
type AnimationData struct {
	State     motion.PlaybackState `json:"state"`
	Cursor    motion.Cursor        `json:"cursor"`
	Keyframes int                  `json:"keyframes"`
	FrameRate float64              `json:"frame_rate"`
}

// KeyframesData is the keyframe list in playback order.
type KeyframesData struct {
	Keyframes []motion.Keyframe `json:"keyframes"`
}

// ErrorData describes a rejected message.
type ErrorData struct {
	Message string `json:"message"`
}

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
