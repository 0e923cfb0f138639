package remap

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/teslashibe/go-urdfpose/pkg/pose"
)

const tolerance = 1e-9

func TestMap_Linear(t *testing.T) {
	tests := []struct {
		name                            string
		v, inMin, inMax, outMin, outMax float64
		want                            float64
	}{
		{name: "in min", v: -90, inMin: -90, inMax: 90, outMin: 0, outMax: 3, want: 0},
		{name: "in max", v: 90, inMin: -90, inMax: 90, outMin: 0, outMax: 3, want: 3},
		{name: "midpoint", v: 0, inMin: -90, inMax: 90, outMin: 0, outMax: 3, want: 1.5},
		{name: "quarter", v: 25, inMin: 0, inMax: 100, outMin: 10, outMax: 20, want: 12.5},
		{name: "inverted output", v: 45, inMin: 0, inMax: 180, outMin: 100, outMax: 0, want: 75},
		{name: "unclamped above", v: 200, inMin: 0, inMax: 100, outMin: 0, outMax: 1, want: 2},
		{name: "unclamped below", v: -50, inMin: 0, inMax: 100, outMin: 0, outMax: 1, want: -0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Map(tc.v, tc.inMin, tc.inMax, tc.outMin, tc.outMax)
			if math.Abs(got-tc.want) > tolerance {
				t.Errorf("Map = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRule_ClampsDomain(t *testing.T) {
	r := Rule{Joint: "j", Angle: "a", Domain: HalfTurn, In: HalfTurn, Out: Range{Min: -1, Max: 1}}

	if got := r.Apply(135); math.Abs(got-1) > tolerance {
		t.Errorf("Apply(135) = %v, want 1 (clamped to 90)", got)
	}
	if got := r.Apply(-170); math.Abs(got+1) > tolerance {
		t.Errorf("Apply(-170) = %v, want -1 (clamped to -90)", got)
	}
	if got := r.Apply(45); math.Abs(got-0.5) > tolerance {
		t.Errorf("Apply(45) = %v, want 0.5", got)
	}
}

func TestTable_Apply(t *testing.T) {
	table := DefaultTable()
	if err := table.Validate(); err != nil {
		t.Fatalf("DefaultTable invalid: %v", err)
	}

	joints := table.Apply(pose.AngleSet{
		"Right Elbow":    180,
		"Right Shoulder": 90,
	})

	if len(joints) != 2 {
		t.Fatalf("got %d joints, want 2: %v", len(joints), joints)
	}
	if math.Abs(joints["joint_3"]) > tolerance {
		t.Errorf("joint_3 = %v, want 0 for a straight elbow", joints["joint_3"])
	}
	if math.Abs(joints["joint_2"]) > tolerance {
		t.Errorf("joint_2 = %v, want 0 for a horizontal arm", joints["joint_2"])
	}
	if _, ok := joints["joint_1"]; ok {
		t.Error("joint_1 should be absent when its angle is missing")
	}
}

func TestTable_Joints(t *testing.T) {
	got := DefaultTable().Joints()
	want := []string{"joint_1", "joint_2", "joint_3", "joint_4", "joint_5", "joint_6"}
	if len(got) != len(want) {
		t.Fatalf("Joints = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Joints[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestParseTable(t *testing.T) {
	data := []byte(`
rules:
  - joint: joint_1
    angle: Left Elbow
    domain: {min: -180, max: 180}
    in: {min: 0, max: 180}
    out: {min: -90, max: 90}
`)
	table, err := ParseTable(data)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if len(table.Rules) != 1 || table.Rules[0].Angle != "Left Elbow" {
		t.Fatalf("unexpected table: %+v", table)
	}
	if got := table.Rules[0].Apply(90); math.Abs(got) > tolerance {
		t.Errorf("Apply(90) = %v, want 0", got)
	}
}

func TestParseTable_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "rules: []"},
		{name: "missing joint", data: "rules:\n  - angle: a\n    in: {min: 0, max: 1}"},
		{name: "empty input range", data: "rules:\n  - joint: j\n    angle: a\n    in: {min: 1, max: 1}"},
		{name: "not yaml", data: "rules: [unterminated"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseTable([]byte(tc.data)); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := ParseTable([]byte("rules: []"))
	if !errors.Is(err, ErrInvalidRule) {
		t.Errorf("err = %v, want ErrInvalidRule", err)
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	data := "rules:\n  - joint: joint_2\n    angle: Right Knee\n    domain: {min: -90, max: 90}\n    in: {min: -90, max: 90}\n    out: {min: 0, max: 1}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if table.Rules[0].Joint != "joint_2" {
		t.Errorf("Joint = %s", table.Rules[0].Joint)
	}

	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadTable on a missing file should fail")
	}
}
