package video

import (
	"fmt"
	"image"
)

// Thumbnail is one JPEG preview for the progress bar.
type Thumbnail struct {
	Time float64 `json:"time"`
	JPEG []byte  `json:"jpeg"` // base64 in JSON
}

// Thumbnails decodes n frames evenly spread over the video and scales each
// to size.
func Thumbnails(src *Source, n int, size image.Point) ([]Thumbnail, error) {
	times := ThumbnailTimes(src.Info().Duration, n)

	thumbs := make([]Thumbnail, 0, len(times))
	for _, t := range times {
		img, err := src.FrameAt(t)
		if err != nil {
			return nil, err
		}
		small := Resize(img, size)
		img.Close()

		data, err := EncodeJPEG(small)
		small.Close()
		if err != nil {
			return nil, fmt.Errorf("thumbnail at %.2fs: %w", t, err)
		}
		thumbs = append(thumbs, Thumbnail{Time: t, JPEG: data})
	}
	return thumbs, nil
}
