package video

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/teslashibe/go-urdfpose/pkg/pose"
	"gocv.io/x/gocv"
)

var (
	keypointColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	limbColor     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	textColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor  = color.RGBA{A: 255}
)

// DrawPose draws visible keypoints, the limbs joining them and the angle
// readout onto img. Keypoint radius and line width scale with the smaller
// image side.
func DrawPose(img *gocv.Mat, p pose.Pose, angles pose.AngleSet, threshold float64) {
	minDim := math.Min(float64(img.Cols()), float64(img.Rows()))
	radius := max(1, int(minDim*0.01))
	thickness := max(1, int(minDim*0.005))

	for _, pair := range pose.VisiblePairs(p.Keypoints, threshold) {
		a, b := p.Keypoints[pair[0]], p.Keypoints[pair[1]]
		gocv.Line(img, pt(a), pt(b), limbColor, thickness)
	}
	for _, kp := range p.Keypoints {
		if kp.Visible(threshold) {
			gocv.Circle(img, pt(kp), radius, keypointColor, -1)
		}
	}

	y := 30
	for _, name := range angles.Names() {
		text := fmt.Sprintf("%s: %.1f deg", name, angles[name])
		gocv.PutText(img, text, image.Pt(10, y), gocv.FontHersheySimplex, 0.5, outlineColor, 3)
		gocv.PutText(img, text, image.Pt(10, y), gocv.FontHersheySimplex, 0.5, textColor, 1)
		y += 20
	}
}

func pt(k pose.Keypoint) image.Point {
	return image.Pt(int(math.Round(k.X)), int(math.Round(k.Y)))
}
