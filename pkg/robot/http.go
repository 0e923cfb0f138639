package robot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-urdfpose/internal/httpc"
)

// HTTPController pushes joint values to another go-urdfpose server through
// its REST API.
type HTTPController struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPController creates a controller for the server at baseURL, e.g. "http://viewer:8080".
func NewHTTPController(baseURL string) *HTTPController {
	return &HTTPController{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: 2 * time.Second,
	}
}

// JointsRequest is the body of PUT /api/robot/joints.
type JointsRequest struct {
	Values map[string]float64 `json:"values"`
	Unit   string             `json:"unit,omitempty"` // "rad" (default) or "deg"
}

// RemoteState is the subset of GET /api/robot the controller reads.
type RemoteState struct {
	Name   string             `json:"name"`
	Values map[string]float64 `json:"values"`
}

// SetJointValues sends values in radians.
func (r *HTTPController) SetJointValues(values map[string]float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	err := httpc.DoJSON(ctx, http.MethodPut, r.BaseURL+"/api/robot/joints", JointsRequest{Values: values, Unit: "rad"}, nil)
	if err != nil {
		return fmt.Errorf("set joints request failed: %w", err)
	}
	return nil
}

// State fetches the remote robot's name and joint values.
func (r *HTTPController) State(ctx context.Context) (*RemoteState, error) {
	var st RemoteState
	if err := httpc.GetJSON(ctx, r.BaseURL+"/api/robot", &st); err != nil {
		return nil, fmt.Errorf("robot state request failed: %w", err)
	}
	return &st, nil
}

// Close is a no-op; HTTP connections are pooled by the shared client.
func (r *HTTPController) Close() error {
	return nil
}
