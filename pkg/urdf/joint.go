package urdf

import (
	"math"
	"regexp"
	"sort"
	"strconv"
)

// UnlimitedRange is the slider bound used for continuous joints and when
// limits are ignored, roughly one turn either way.
const UnlimitedRange = 6.28

var digitRuns = regexp.MustCompile(`\d+`)

// trailingNumber returns the last run of digits in name.
func trailingNumber(name string) (float64, bool) {
	runs := digitRuns.FindAllString(name, -1)
	if len(runs) == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(runs[len(runs)-1], 64)
	return n, err == nil
}

// SortJoints orders joint names for display. Names whose last numbers differ
// sort numerically ("joint_2" before "joint_10"); everything else sorts
// lexically.
func SortJoints(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a, b := names[i], names[j]
		na, okA := trailingNumber(a)
		nb, okB := trailingNumber(b)
		if okA && okB && na != nb {
			return na < nb
		}
		return a < b
	})
}

// SliderRange returns the bounds a control for j should allow, in the
// joint's native units.
func SliderRange(j *Joint, ignoreLimits bool) (lo, hi float64) {
	if ignoreLimits || j.Type == Continuous {
		return -UnlimitedRange, UnlimitedRange
	}
	return j.Limit.Lower, j.Limit.Upper
}

// Clamp limits value to the joint's range. Continuous joints and joints
// whose limits are both zero are left alone.
func Clamp(j *Joint, value float64) float64 {
	if j.Type != Revolute && j.Type != Prismatic {
		return value
	}
	if j.Limit.Lower == 0 && j.Limit.Upper == 0 {
		return value
	}
	return math.Max(j.Limit.Lower, math.Min(j.Limit.Upper, value))
}

// DisplayValue converts a joint value for display: degrees for angular
// joints, then one decimal place above magnitude 1 and two significant
// digits otherwise.
func DisplayValue(j *Joint, value float64) float64 {
	if j.Type.Angular() {
		value *= 180 / math.Pi
	}

	var s string
	if math.Abs(value) > 1 {
		s = strconv.FormatFloat(value, 'f', 1, 64)
	} else {
		s = strconv.FormatFloat(value, 'g', 2, 64)
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// FromDisplay converts a displayed value back to the joint's native units.
func FromDisplay(j *Joint, value float64) float64 {
	if j.Type.Angular() {
		return value * math.Pi / 180
	}
	return value
}
