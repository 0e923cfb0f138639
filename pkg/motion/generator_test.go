package motion

import (
	"errors"
	"math"
	"testing"
)

func TestGenerate_DurationMode(t *testing.T) {
	p1 := Angles{}
	p2 := Angles{10, -5, 0, 0, 0, 0}

	frames, err := Generate(p1, p2, 1, ModeDuration, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(frames) != 10 {
		t.Fatalf("got %d frames, want 10", len(frames))
	}
	for k, f := range frames {
		if f[0] != float64(k) {
			t.Errorf("frame %d joint_1 = %v, want %v", k, f[0], k)
		}
		if f[1] != -0.5*float64(k) {
			t.Errorf("frame %d joint_2 = %v, want %v", k, f[1], -0.5*float64(k))
		}
		for i := 2; i < JointCount; i++ {
			if f[i] != 0 {
				t.Errorf("frame %d joint %d = %v, want 0", k, i+1, f[i])
			}
		}
	}
}

func TestGenerate_DurationFrameCount(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		seconds  float64
		fps      float64
		want     int
	}{
		{name: "one second at 24fps", from: 0, to: 10, seconds: 1, fps: 24, want: 24},
		{name: "fractional duration", from: 0, to: 10, seconds: 1.5, fps: 24, want: 36},
		{name: "negative travel", from: 12.3, to: -45.7, seconds: 2, fps: 24, want: 48},
		{name: "wide travel", from: 0, to: 90, seconds: 3, fps: 24, want: 72},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frames, err := Generate(Angles{tc.from}, Angles{tc.to}, tc.seconds, ModeDuration, tc.fps)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(frames) != tc.want {
				t.Errorf("got %d frames, want %d", len(frames), tc.want)
			}
			if frames[0][0] != tc.from {
				t.Errorf("first frame = %v, want %v", frames[0][0], tc.from)
			}
		})
	}
}

func TestGenerate_SpeedModePadsShortChannels(t *testing.T) {
	p1 := Angles{}
	p2 := Angles{10, -3, 0, 0, 0, 0}

	frames, err := Generate(p1, p2, 20, ModeSpeed, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := [][2]float64{{0, 0}, {2, -2}, {4, -2}, {6, -2}, {8, -2}}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d", len(frames), len(want))
	}
	for k, w := range want {
		if frames[k][0] != w[0] || frames[k][1] != w[1] {
			t.Errorf("frame %d = (%v, %v), want (%v, %v)", k, frames[k][0], frames[k][1], w[0], w[1])
		}
	}
}

func TestGenerate_ExcludesTarget(t *testing.T) {
	frames, err := Generate(Angles{0}, Angles{10}, 1, ModeDuration, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	last := frames[len(frames)-1][0]
	if last >= 10 {
		t.Errorf("last frame %v should stop short of the target", last)
	}
}

func TestGenerate_MinimumTwoFrames(t *testing.T) {
	same := Angles{1, 2, 3, 4, 5, 6}

	frames, err := Generate(same, same, 1, ModeDuration, 24)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	for _, f := range frames {
		if f != same {
			t.Errorf("frame = %v, want %v", f, same)
		}
	}

	// one huge step still yields the two-frame floor
	frames, err = Generate(Angles{}, Angles{5}, 1000, ModeSpeed, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0][0] != 0 || frames[1][0] != 0 {
		t.Errorf("frames = %v, want the start value held", frames)
	}
}

func TestGenerate_ZeroDeltaChannelIsConstant(t *testing.T) {
	p1 := Angles{0, 7.5, 0, 0, 0, 0}
	p2 := Angles{30, 7.5, 0, 0, 0, 0}

	frames, err := Generate(p1, p2, 2, ModeDuration, 24)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(frames) != 48 {
		t.Fatalf("got %d frames, want 48", len(frames))
	}
	for k, f := range frames {
		if f[1] != 7.5 {
			t.Fatalf("frame %d joint_2 = %v, want 7.5", k, f[1])
		}
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		mode Mode
		fps  float64
	}{
		{name: "zero rate", rate: 0, mode: ModeDuration, fps: 24},
		{name: "negative rate", rate: -1, mode: ModeSpeed, fps: 24},
		{name: "NaN rate", rate: math.NaN(), mode: ModeDuration, fps: 24},
		{name: "infinite rate", rate: math.Inf(1), mode: ModeDuration, fps: 24},
		{name: "zero fps", rate: 1, mode: ModeDuration, fps: 0},
		{name: "unknown mode", rate: 1, mode: "rpm", fps: 24},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Generate(Angles{}, Angles{1}, tc.rate, tc.mode, tc.fps); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Generate(Angles{}, Angles{1}, 0, ModeDuration, 24); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("err = %v, want ErrInvalidRate", err)
	}
}

func TestGenerate_TooManyFrames(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		mode Mode
	}{
		{name: "crawling speed", rate: 1e-9, mode: ModeSpeed},
		{name: "slow speed", rate: 0.001, mode: ModeSpeed},
		{name: "long duration", rate: 1e6, mode: ModeDuration},
		{name: "subnormal speed", rate: 5e-324, mode: ModeSpeed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frames, err := Generate(Angles{0}, Angles{180}, tc.rate, tc.mode, 24)
			if !errors.Is(err, ErrTooManyFrames) {
				t.Fatalf("err = %v, want ErrTooManyFrames", err)
			}
			if frames != nil {
				t.Errorf("got %d frames", len(frames))
			}
		})
	}

	// right at the limit still works
	frames, err := Generate(Angles{0}, Angles{MaxFrames}, 24, ModeSpeed, 24)
	if err != nil {
		t.Fatalf("Generate at limit: %v", err)
	}
	if len(frames) != MaxFrames {
		t.Errorf("got %d frames, want %d", len(frames), MaxFrames)
	}
}

func TestNearlyEqual(t *testing.T) {
	if !nearlyEqual(10, 10.000000000000002) {
		t.Error("values one ulp apart should be equal")
	}
	if nearlyEqual(10, 10.0001) {
		t.Error("distinct values should not be equal")
	}
}
