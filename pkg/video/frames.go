package video

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Frame sizes used by the overlay page.
const (
	AnalysisWidth   = 720
	ThumbnailCount  = 20
	ThumbnailWidth  = 160
	ThumbnailHeight = 90
	JPEGQuality     = 85
)

// AnalysisSize returns the size of the low-resolution frame pose detection
// runs on: width pixels wide with the source's aspect ratio.
func AnalysisSize(info Info, width int) image.Point {
	if width <= 0 {
		width = AnalysisWidth
	}
	h := int(math.Round(float64(width) / info.AspectRatio()))
	if h < 1 {
		h = 1
	}
	return image.Pt(width, h)
}

// ThumbnailTimes returns n evenly spaced times starting at zero: i/n*duration.
func ThumbnailTimes(duration float64, n int) []float64 {
	if n <= 0 || !(duration > 0) {
		return nil
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / float64(n) * duration
	}
	return times
}

// Resize returns a copy of img scaled to size. The caller closes it.
func Resize(img gocv.Mat, size image.Point) gocv.Mat {
	out := gocv.NewMat()
	gocv.Resize(img, &out, size, 0, 0, gocv.InterpolationArea)
	return out
}

// EncodeJPEG encodes img as JPEG.
func EncodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory freed by Close
	src := buf.GetBytes()
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}
