// Package overlay renders the tracked pose and rep count onto video frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/internal/geometry"
	"github.com/ayusman/repcount/internal/pullup"
)

var (
	boneColor     = color.RGBA{R: 245, G: 117, B: 66, A: 0}
	jointColor    = color.RGBA{R: 245, G: 66, B: 230, A: 0}
	textColor     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	straightColor = color.RGBA{R: 0, G: 200, B: 0, A: 0}
	bentColor     = color.RGBA{R: 0, G: 0, B: 220, A: 0}
)

// bones lists the landmark pairs joined by a line.
var bones = [][2]detector.Landmark{
	{detector.LeftShoulder, detector.LeftElbow},
	{detector.LeftElbow, detector.LeftWrist},
	{detector.RightShoulder, detector.RightElbow},
	{detector.RightElbow, detector.RightWrist},
	{detector.LeftShoulder, detector.RightShoulder},
	{detector.LeftShoulder, detector.LeftHip},
	{detector.RightShoulder, detector.RightHip},
	{detector.LeftHip, detector.RightHip},
}

const (
	lineThickness = 2
	jointRadius   = 4
)

// ToPixel converts a normalized landmark to pixel coordinates in a
// width x height image.
func ToPixel(p geometry.Point2D, width, height int) image.Point {
	return image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
}

// Draw renders the skeleton for frame (if any) and a status banner with the
// rep count, phase and elbow angles from st.
func Draw(img *gocv.Mat, frame *detector.LandmarkFrame, st pullup.State) {
	if img == nil || img.Empty() {
		return
	}

	w, h := img.Cols(), img.Rows()

	if frame != nil {
		for _, b := range bones {
			gocv.Line(img, ToPixel(frame[b[0]], w, h), ToPixel(frame[b[1]], w, h), boneColor, lineThickness)
		}
		for _, p := range frame {
			gocv.Circle(img, ToPixel(p, w, h), jointRadius, jointColor, -1)
		}
	}

	phaseColor := bentColor
	if st.Phase == pullup.Straight {
		phaseColor = straightColor
	}

	gocv.Rectangle(img, image.Rect(0, 0, 260, 70), phaseColor, -1)
	gocv.PutText(img, fmt.Sprintf("Reps: %d", st.Reps), image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.9, textColor, 2)
	gocv.PutText(img, Status(st), image.Pt(10, 58),
		gocv.FontHersheySimplex, 0.5, textColor, 1)
}

// Status returns the one-line phase and angle summary shown under the count.
func Status(st pullup.State) string {
	return fmt.Sprintf("%s  L %.0f  R %.0f", st.Phase, st.Left.ArmAngle, st.Right.ArmAngle)
}

// Window displays annotated frames on screen.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a display window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays img and reports whether the user pressed q to stop.
func (w *Window) Show(img *gocv.Mat) bool {
	w.win.IMShow(*img)
	return w.win.WaitKey(10)&0xFF == 'q'
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
