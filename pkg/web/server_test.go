package web

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-urdfpose/pkg/detection"
	"github.com/teslashibe/go-urdfpose/pkg/motion"
	"github.com/teslashibe/go-urdfpose/pkg/pose"
	"github.com/teslashibe/go-urdfpose/pkg/protocol"
	"github.com/teslashibe/go-urdfpose/pkg/robot"
	"github.com/teslashibe/go-urdfpose/pkg/urdf"
	"github.com/teslashibe/go-urdfpose/pkg/video"
	"gocv.io/x/gocv"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	r, err := urdf.Load("../urdf/testdata/arm.urdf")
	if err != nil {
		t.Fatalf("load urdf: %v", err)
	}
	opts.Model = robot.NewModel(r)
	if opts.Presets == nil {
		opts.Presets = motion.NewLibrary()
		if err := opts.Presets.LoadBuiltIn(); err != nil {
			t.Fatal(err)
		}
	}
	s := NewServer(opts)
	t.Cleanup(func() { s.player.Stop() })
	return s
}

// do sends a request with an optional JSON body and decodes a JSON response into out.
func do(t *testing.T, s *Server, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode
}

func TestGetRobot(t *testing.T) {
	s := newTestServer(t, Options{})

	var got RobotResponse
	if code := do(t, s, "GET", "/api/robot", nil, &got); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if got.Name != "six_axis_arm" {
		t.Errorf("name = %q", got.Name)
	}

	byName := map[string]JointInfo{}
	var order []string
	for _, j := range got.Joints {
		byName[j.Name] = j
		order = append(order, j.Name)
	}
	if order[0] != "joint_1" || order[1] != "joint_2" {
		t.Errorf("joint order = %v", order)
	}
	if j := byName["joint_1"]; j.Min != -urdf.UnlimitedRange || j.Max != urdf.UnlimitedRange {
		t.Errorf("continuous joint range = [%v, %v]", j.Min, j.Max)
	}
	if j := byName["joint_2"]; j.Min != -1.57 || j.Max != 1.57 {
		t.Errorf("joint_2 range = [%v, %v]", j.Min, j.Max)
	}
	if j := byName["tool_mount"]; j.Movable {
		t.Error("fixed joint reported movable")
	}
	if _, ok := got.Values["tool_mount"]; ok {
		t.Error("fixed joint has a value")
	}
}

func TestSetJoint(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name    string
		joint   string
		body    JointRequest
		code    int
		want    float64
		display float64
	}{
		{name: "radians", joint: "joint_2", body: JointRequest{Value: ptr(0.5)}, code: 200, want: 0.5, display: 28.6},
		{name: "degrees", joint: "joint_3", body: JointRequest{Value: ptr(90), Unit: "deg"}, code: 200, want: math.Pi / 2, display: 90},
		{name: "clamped", joint: "joint_2", body: JointRequest{Value: ptr(3)}, code: 200, want: 1.57, display: 90},
		{name: "prismatic meters", joint: "gripper_10", body: JointRequest{Value: ptr(0.02), Unit: "deg"}, code: 200, want: 0.02, display: 0.02},
		{name: "unknown joint", joint: "elbow", body: JointRequest{Value: ptr(1)}, code: 404},
		{name: "fixed joint", joint: "tool_mount", body: JointRequest{Value: ptr(1)}, code: 400},
		{name: "missing value", joint: "joint_2", body: JointRequest{}, code: 400},
		{name: "bad unit", joint: "joint_2", body: JointRequest{Value: ptr(1), Unit: "grad"}, code: 400},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]any
			code := do(t, s, "PUT", "/api/robot/joints/"+tc.joint, tc.body, &got)
			if code != tc.code {
				t.Fatalf("status = %d, want %d (%v)", code, tc.code, got)
			}
			if code != 200 {
				if got["error"] == nil {
					t.Error("error body missing")
				}
				return
			}
			if v := got["value"].(float64); math.Abs(v-tc.want) > 1e-9 {
				t.Errorf("value = %v, want %v", v, tc.want)
			}
			if d := got["display"].(float64); d != tc.display {
				t.Errorf("display = %v, want %v", d, tc.display)
			}
		})
	}

	// mimic follows the prismatic joint it copies
	if v, _ := s.model.JointValue("gripper_11"); math.Abs(v+0.02) > 1e-9 {
		t.Errorf("gripper_11 = %v, want -0.02", v)
	}
}

func TestSetJointsBatchAndOptions(t *testing.T) {
	s := newTestServer(t, Options{})

	var got RobotResponse
	code := do(t, s, "PUT", "/api/robot/joints", JointsRequest{Values: map[string]float64{"joint_1": 45, "joint_2": 120}, Unit: "deg"}, &got)
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if math.Abs(got.Values["joint_1"]-math.Pi/4) > 1e-9 || got.Values["joint_2"] != 1.57 {
		t.Errorf("values = %v", got.Values)
	}

	if code := do(t, s, "PATCH", "/api/robot/options", OptionsRequest{IgnoreLimits: ptrBool(true)}, &got); code != 200 || !got.IgnoreLimits {
		t.Fatalf("options: status %d, ignore %v", code, got.IgnoreLimits)
	}
	for _, j := range got.Joints {
		if j.Name == "joint_2" && j.Max != urdf.UnlimitedRange {
			t.Errorf("joint_2 max with limits ignored = %v", j.Max)
		}
	}

	do(t, s, "PUT", "/api/robot/joints", JointsRequest{Values: map[string]float64{"joint_2": 3}}, &got)
	if got.Values["joint_2"] != 3 {
		t.Errorf("joint_2 = %v, want unclamped 3", got.Values["joint_2"])
	}

	// re-enabling limits pulls joints back into range
	do(t, s, "PATCH", "/api/robot/options", OptionsRequest{IgnoreLimits: ptrBool(false)}, &got)
	if got.Values["joint_2"] != 1.57 {
		t.Errorf("joint_2 = %v, want 1.57", got.Values["joint_2"])
	}

	if code := do(t, s, "PUT", "/api/robot/joints", JointsRequest{Values: map[string]float64{"nope": 1}}, nil); code != 404 {
		t.Errorf("unknown joint status = %d", code)
	}
}

func TestKeyframes(t *testing.T) {
	s := newTestServer(t, Options{})

	var first KeyframeEntry
	code := do(t, s, "POST", "/api/keyframes", KeyframeRequest{Angles: &motion.Angles{10, 20, 30, 0, 0, 0}, Rate: 2}, &first)
	if code != 201 || first.Index != 1 || first.Mode != motion.ModeDuration || first.Rate != 2 {
		t.Fatalf("add: %d %+v", code, first)
	}

	// without angles the current joint values are captured
	s.model.SetJointValue("joint_2", 0.5)
	var snap KeyframeEntry
	do(t, s, "POST", "/api/keyframes", nil, &snap)
	if snap.Index != 2 || snap.Angles[1] != 28.6 {
		t.Errorf("snapshot = %+v", snap)
	}

	var kf motion.Keyframe
	if code := do(t, s, "PATCH", "/api/keyframes/"+snap.ID, KeyframeUpdate{Rate: ptr(45), ToggleMode: true}, &kf); code != 200 {
		t.Fatalf("patch status = %d", code)
	}
	if kf.Rate != 45 || kf.Mode != motion.ModeSpeed {
		t.Errorf("patched = %+v", kf)
	}

	if code := do(t, s, "PATCH", "/api/keyframes/"+snap.ID, KeyframeUpdate{Rate: ptr(-1)}, nil); code != 400 {
		t.Errorf("negative rate status = %d", code)
	}
	if code := do(t, s, "PATCH", "/api/keyframes/missing", KeyframeUpdate{ToggleMode: true}, nil); code != 404 {
		t.Errorf("missing keyframe status = %d", code)
	}

	var list struct {
		Keyframes []KeyframeEntry `json:"keyframes"`
		Count     int             `json:"count"`
	}
	do(t, s, "GET", "/api/keyframes", nil, &list)
	if list.Count != 2 || list.Keyframes[1].ID != snap.ID {
		t.Errorf("list = %+v", list)
	}

	if code := do(t, s, "DELETE", "/api/keyframes/"+first.ID, nil, nil); code != 204 {
		t.Errorf("delete status = %d", code)
	}
	do(t, s, "GET", "/api/keyframes", nil, &list)
	if list.Count != 1 || list.Keyframes[0].Index != 1 {
		t.Errorf("after delete = %+v", list)
	}
}

func TestAnimation(t *testing.T) {
	s := newTestServer(t, Options{FrameRate: 50})

	var errBody ErrorResponse
	if code := do(t, s, "POST", "/api/animation/start", nil, &errBody); code != 400 || errBody.Error == "" {
		t.Fatalf("start without keyframes: %d %+v", code, errBody)
	}

	do(t, s, "POST", "/api/keyframes", KeyframeRequest{Angles: &motion.Angles{}, Rate: 0.5}, nil)
	do(t, s, "POST", "/api/keyframes", KeyframeRequest{Angles: &motion.Angles{0, 40}, Rate: 0.5}, nil)

	var st protocol.AnimationData
	if code := do(t, s, "POST", "/api/animation/start", nil, &st); code != 200 || st.State != motion.StatePlaying {
		t.Fatalf("start: %d %+v", code, st)
	}
	if code := do(t, s, "POST", "/api/animation/start", nil, nil); code != 409 {
		t.Errorf("second start status = %d", code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if v, _ := s.model.JointValue("joint_2"); v > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("animation never moved joint_2")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// a manual edit stops playback
	do(t, s, "PUT", "/api/robot/joints/joint_1", JointRequest{Value: ptr(0.1)}, nil)
	do(t, s, "GET", "/api/animation", nil, &st)
	if st.State != motion.StateStopped || st.Keyframes != 2 || st.FrameRate != 50 {
		t.Errorf("after manual edit = %+v", st)
	}

	do(t, s, "POST", "/api/animation/start", nil, nil)
	do(t, s, "POST", "/api/animation/stop", nil, &st)
	if st.State != motion.StateStopped {
		t.Errorf("after stop = %+v", st)
	}
	do(t, s, "POST", "/api/animation/reset", nil, &st)
	if st.Cursor.Pair != 0 || st.Cursor.Frame != 0 {
		t.Errorf("after reset = %+v", st.Cursor)
	}
}

func TestFrames(t *testing.T) {
	s := newTestServer(t, Options{})

	var got struct {
		Frames []motion.Frame `json:"frames"`
		Count  int            `json:"count"`
	}
	code := do(t, s, "POST", "/api/frames", FramesRequest{To: motion.Angles{10}, Rate: 1, FrameRate: 10}, &got)
	if code != 200 || got.Count != 10 {
		t.Fatalf("frames: %d count %d", code, got.Count)
	}
	if got.Frames[9][0] != 9 {
		t.Errorf("last frame = %v", got.Frames[9])
	}

	if code := do(t, s, "POST", "/api/frames", FramesRequest{To: motion.Angles{10}, Rate: 0}, nil); code != 400 {
		t.Errorf("zero rate status = %d", code)
	}

	var errResp ErrorResponse
	slow := FramesRequest{To: motion.Angles{180}, Rate: 1e-9, Mode: motion.ModeSpeed, FrameRate: 24}
	if code := do(t, s, "POST", "/api/frames", slow, &errResp); code != 400 {
		t.Errorf("slow speed status = %d", code)
	}
	if !strings.Contains(errResp.Error, "too many frames") {
		t.Errorf("error = %q", errResp.Error)
	}
}

// armKeypoints puts the right arm at a right angle at the elbow.
func armKeypoints() []pose.Keypoint {
	kps := make([]pose.Keypoint, pose.KeypointCount)
	for i := range kps {
		kps[i] = pose.Keypoint{Name: pose.Names[i]}
	}
	kps[pose.RightShoulder] = pose.Keypoint{Name: "right_shoulder", X: 100, Y: 100, Score: 0.9}
	kps[pose.RightElbow] = pose.Keypoint{Name: "right_elbow", X: 100, Y: 200, Score: 0.9}
	kps[pose.RightWrist] = pose.Keypoint{Name: "right_wrist", X: 200, Y: 200, Score: 0.9}
	return kps
}

func TestAngles(t *testing.T) {
	s := newTestServer(t, Options{})

	var got protocol.AnglesData
	if code := do(t, s, "POST", "/api/angles", protocol.PoseData{Keypoints: armKeypoints(), Time: 2}, &got); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if math.Abs(got.Angles["Right Elbow"]-90) > 1e-6 || len(got.Angles) != 1 {
		t.Errorf("angles = %v", got.Angles)
	}
	if math.Abs(got.Joints["joint_3"]-75) > 1e-6 || got.Applied {
		t.Errorf("joints = %v applied=%v", got.Joints, got.Applied)
	}
	if v, _ := s.model.JointValue("joint_3"); v != 0 {
		t.Error("joint changed without apply")
	}

	do(t, s, "POST", "/api/angles", protocol.PoseData{Keypoints: armKeypoints(), Apply: true}, &got)
	if !got.Applied {
		t.Error("applied = false")
	}
	if v, _ := s.model.JointValue("joint_3"); math.Abs(v-75*math.Pi/180) > 1e-9 {
		t.Errorf("joint_3 = %v rad, want 75 deg", v)
	}

	if code := do(t, s, "POST", "/api/angles", protocol.PoseData{}, nil); code != 400 {
		t.Errorf("empty pose status = %d", code)
	}
}

func TestPresets(t *testing.T) {
	s := newTestServer(t, Options{})

	var list struct {
		Presets []motion.Preset `json:"presets"`
		Count   int             `json:"count"`
	}
	do(t, s, "GET", "/api/presets", nil, &list)
	if list.Count != 6 {
		t.Errorf("count = %d, want 6", list.Count)
	}
	do(t, s, "GET", "/api/presets?q=wave", nil, &list)
	if list.Count != 2 {
		t.Errorf("wave matches = %d, want 2", list.Count)
	}

	var kf KeyframeEntry
	if code := do(t, s, "POST", "/api/presets/ready/keyframe", nil, &kf); code != 201 {
		t.Fatalf("status = %d", code)
	}
	if kf.Angles != (motion.Angles{0, -30, 60, 0, -30, 0}) || kf.Rate != 1.5 || kf.Index != 1 {
		t.Errorf("keyframe = %+v", kf)
	}

	if code := do(t, s, "POST", "/api/presets/moonwalk/keyframe", nil, nil); code != 404 {
		t.Errorf("unknown preset status = %d", code)
	}
}

func TestVideosUnavailable(t *testing.T) {
	s := newTestServer(t, Options{})
	var errBody ErrorResponse
	if code := do(t, s, "GET", "/api/videos", nil, &errBody); code != 503 || errBody.Error == "" {
		t.Errorf("status = %d body %+v", code, errBody)
	}
}

func writeClip(t *testing.T, path string) {
	t.Helper()
	w, err := gocv.VideoWriterFile(path, "MJPG", 10, 64, 48, true)
	if err != nil || !w.IsOpened() {
		t.Skipf("video writer unavailable: %v", err)
	}
	defer w.Close()
	img := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer img.Close()
	for i := 0; i < 10; i++ {
		if err := w.Write(img); err != nil {
			t.Fatal(err)
		}
	}
}

func TestVideoWorkflow(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.avi")
	writeClip(t, clip)

	lib, err := video.NewLibrary(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	defer lib.Close()

	det := detection.DetectorFunc(func(img gocv.Mat) ([]pose.Pose, error) {
		return []pose.Pose{{Keypoints: armKeypoints(), Score: 0.9}}, nil
	})
	s := newTestServer(t, Options{Videos: lib, Analyzer: video.NewAnalyzer(det)})

	// upload
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "clip.avi")
	data, _ := os.ReadFile(clip)
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", "/api/videos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnsupportedMediaType {
		t.Skipf("video reader unavailable: %s", body)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("upload status = %d: %s", resp.StatusCode, body)
	}
	var v VideoResponse
	json.Unmarshal(body, &v)
	if v.Info.Width != 64 || v.Name != "clip.avi" {
		t.Errorf("video = %+v", v)
	}
	base := "/api/videos/" + v.ID

	var thumbs struct {
		Count int `json:"count"`
	}
	if code := do(t, s, "GET", base+"/thumbnails?n=3", nil, &thumbs); code != 200 || thumbs.Count != 3 {
		t.Errorf("thumbnails: %d count %d", code, thumbs.Count)
	}

	var an video.Analysis
	if code := do(t, s, "GET", base+"/pose?t=0.5", nil, &an); code != 200 {
		t.Fatalf("pose status = %d", code)
	}
	if math.Abs(an.Angles["Right Elbow"]-90) > 1e-6 {
		t.Errorf("analysis = %+v", an)
	}
	if code := do(t, s, "GET", base+"/pose?t=abc", nil, nil); code != 400 {
		t.Errorf("bad time status = %d", code)
	}

	resp, err = s.App().Test(httptest.NewRequest("GET", base+"/frame?t=0.2&overlay=true", nil), 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("frame: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	// markers: one analyzed, one with browser angles
	var m MarkerEntry
	if code := do(t, s, "POST", base+"/markers", MarkerRequest{Time: 0.5}, &m); code != 201 {
		t.Fatalf("marker status = %d", code)
	}
	if math.Abs(m.Joints["joint_3"]-75) > 1e-6 {
		t.Errorf("marker joints = %v", m.Joints)
	}
	var early MarkerEntry
	do(t, s, "POST", base+"/markers", MarkerRequest{Time: 0.1, Angles: pose.AngleSet{"Right Elbow": 180}}, &early)
	if early.Joints["joint_3"] != 0 {
		t.Errorf("straight arm joint_3 = %v", early.Joints["joint_3"])
	}

	var markers struct {
		Markers []MarkerEntry `json:"markers"`
	}
	do(t, s, "GET", base+"/markers", nil, &markers)
	if len(markers.Markers) != 2 || markers.Markers[0].ID != early.ID {
		t.Errorf("markers = %+v", markers.Markers)
	}

	var kf KeyframeEntry
	if code := do(t, s, "POST", base+"/markers/"+m.ID+"/keyframe", nil, &kf); code != 201 {
		t.Fatalf("marker keyframe status = %d", code)
	}
	if kf.Angles[2] != 75 {
		t.Errorf("keyframe = %+v", kf)
	}

	if code := do(t, s, "DELETE", base+"/markers/"+early.ID, nil, nil); code != 204 {
		t.Errorf("delete marker status = %d", code)
	}
	if code := do(t, s, "DELETE", base, nil, nil); code != 204 {
		t.Errorf("delete video status = %d", code)
	}
	if code := do(t, s, "GET", base, nil, nil); code != 404 {
		t.Errorf("deleted video status = %d", code)
	}
}

func TestJointsWebSocket(t *testing.T) {
	s := newTestServer(t, Options{Port: "18095"})
	s.StartAsync()
	defer s.Shutdown()
	time.Sleep(150 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18095/ws/joints", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	read := func() *protocol.Message {
		t.Helper()
		ws.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return msg
	}

	// current state first
	if msg := read(); msg.Type != protocol.TypeJoints {
		t.Fatalf("first message = %s", msg.Type)
	}

	msg, _ := protocol.NewJointsMessage(map[string]float64{"joint_1": 0.3}, "")
	data, _ := msg.Bytes()
	ws.WriteMessage(websocket.TextMessage, data)

	got := read()
	jd, _ := got.GetJointsData()
	if got.Type != protocol.TypeJoints || jd.Source != robot.SourceRemote || jd.Values["joint_1"] != 0.3 {
		t.Errorf("broadcast = %s %+v", got.Type, jd)
	}
	if v, _ := s.model.JointValue("joint_1"); v != 0.3 {
		t.Errorf("joint_1 = %v", v)
	}

	ping, _ := protocol.NewPingMessage("abc")
	data, _ = ping.Bytes()
	ws.WriteMessage(websocket.TextMessage, data)
	if got := read(); got.Type != protocol.TypePong {
		t.Errorf("reply = %s, want pong", got.Type)
	}

	bad, _ := protocol.NewJointsMessage(map[string]float64{"nope": 1}, "")
	data, _ = bad.Bytes()
	ws.WriteMessage(websocket.TextMessage, data)
	if got := read(); got.Type != protocol.TypeError {
		t.Errorf("reply = %s, want error", got.Type)
	}
}

func TestPoseIngest(t *testing.T) {
	s := newTestServer(t, Options{Port: "18096"})
	s.StartAsync()
	defer s.Shutdown()
	time.Sleep(150 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18096/ws/pose/cam", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	msg, _ := protocol.NewMessage(protocol.TypePose, protocol.PoseData{Keypoints: armKeypoints(), Apply: true})
	data, _ := msg.Bytes()
	ws.WriteMessage(websocket.TextMessage, data)

	ws.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err = ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	reply, _ := protocol.ParseMessage(data)
	ad, _ := reply.GetAnglesData()
	if reply.Type != protocol.TypeAngles || !ad.Applied {
		t.Errorf("reply = %s %+v", reply.Type, ad)
	}
	if v, _ := s.model.JointValue("joint_3"); math.Abs(v-75*math.Pi/180) > 1e-9 {
		t.Errorf("joint_3 = %v", v)
	}
}

func ptr(v float64) *float64 { return &v }

func ptrBool(v bool) *bool { return &v }

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, Options{})

	var health map[string]any
	if code := do(t, s, "GET", "/health", nil, &health); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if health["robot"] != "six_axis_arm" || health["animation"] != "stopped" {
		t.Errorf("health = %v", health)
	}

	resp, err := s.App().Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("urdfpose_keyframes 0")) {
		t.Errorf("metrics = %s", body)
	}
}
