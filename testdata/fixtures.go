// Package testdata generates video fixtures for end-to-end tests.
package testdata

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/internal/overlay"
)

// Fixture frame geometry.
const (
	Width  = 320
	Height = 240
	FPS    = 10
)

// WriteVideo encodes one MJPG frame per pose to path. Each frame carries a
// rendering of its pose so the clip is meaningful when inspected by eye; a
// nil pose produces an empty frame.
func WriteVideo(path string, poses []*detector.LandmarkFrame) error {
	writer, err := gocv.VideoWriterFile(path, "MJPG", FPS, Width, Height, true)
	if err != nil {
		return fmt.Errorf("open video writer %s: %w", path, err)
	}
	defer writer.Close()

	if !writer.IsOpened() {
		return fmt.Errorf("open video writer %s: not opened", path)
	}

	for i, pose := range poses {
		frame := renderPose(pose)
		err := writer.Write(frame)
		frame.Close()
		if err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}

func renderPose(pose *detector.LandmarkFrame) gocv.Mat {
	frame := gocv.NewMatWithSize(Height, Width, gocv.MatTypeCV8UC3)
	if pose == nil {
		return frame
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 0}
	for _, p := range pose {
		gocv.Circle(&frame, overlay.ToPixel(p, Width, Height), 3, white, -1)
	}
	gocv.Line(&frame,
		overlay.ToPixel(pose[detector.LeftWrist], Width, Height),
		overlay.ToPixel(pose[detector.RightWrist], Width, Height),
		white, 1)
	gocv.Rectangle(&frame, image.Rect(0, 0, Width-1, Height-1), white, 1)
	return frame
}
