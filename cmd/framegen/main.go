// framegen prints the interpolated frames between two keyframes as CSV.
//
//	framegen -from 0,0,0,0,0,0 -to 90,45,0,0,0,0 -rate 2 -mode s -fps 24
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/teslashibe/go-urdfpose/pkg/motion"
)

func main() {
	from := flag.String("from", "0,0,0,0,0,0", "Start keyframe: six joint angles in degrees")
	to := flag.String("to", "", "End keyframe: six joint angles in degrees")
	rate := flag.Float64("rate", 1, "Duration in seconds (mode s) or speed in deg/s (mode deg/s)")
	mode := flag.String("mode", string(motion.ModeDuration), `Rate mode: "s" or "deg/s"`)
	fps := flag.Float64("fps", motion.DefaultFrameRate, "Frame rate")
	header := flag.Bool("header", true, "Print a header row")
	flag.Parse()

	if err := run(*from, *to, *rate, motion.Mode(*mode), *fps, *header); err != nil {
		fmt.Fprintln(os.Stderr, "framegen:", err)
		os.Exit(1)
	}
}

func run(from, to string, rate float64, mode motion.Mode, fps float64, header bool) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	p1, err := parseAngles(from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	p2, err := parseAngles(to)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}

	frames, err := motion.Generate(p1, p2, rate, mode, fps)
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	if header {
		row := append([]string{"frame", "time"}, motion.JointNames[:]...)
		w.Write(row)
	}
	for i, f := range frames {
		row := []string{strconv.Itoa(i), strconv.FormatFloat(float64(i)/fps, 'f', 4, 64)}
		for _, v := range f {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		w.Write(row)
	}
	w.Flush()
	return w.Error()
}

func parseAngles(s string) (motion.Angles, error) {
	var a motion.Angles
	parts := strings.Split(s, ",")
	if len(parts) != motion.JointCount {
		return a, fmt.Errorf("want %d comma-separated angles, got %d", motion.JointCount, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return a, fmt.Errorf("angle %d: %w", i+1, err)
		}
		a[i] = v
	}
	return a, nil
}
