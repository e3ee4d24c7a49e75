// Package trace records per-frame rep-detection measurements and renders them
// as charts for tuning thresholds after a run.
package trace

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ayusman/repcount/internal/pullup"
)

// ErrNoSamples is returned when saving a recorder that has nothing to plot.
var ErrNoSamples = errors.New("no samples recorded")

// Sample is one detected frame.
type Sample struct {
	Frame        int
	Phase        pullup.Phase
	Reps         int
	RepCompleted bool

	LeftAngle  float64
	RightAngle float64
	LeftDelta  float64
	RightDelta float64
	LeftHip    float64
	RightHip   float64
}

// Recorder accumulates samples during a session.
type Recorder struct {
	mu         sync.Mutex
	title      string
	thresholds pullup.Thresholds
	samples    []Sample
}

// NewRecorder creates a recorder. title is printed on every chart; the
// thresholds are drawn as reference lines.
func NewRecorder(title string, t pullup.Thresholds) *Recorder {
	return &Recorder{
		title:      title,
		thresholds: t,
	}
}

// Record captures the counter state after frame frameIdx was processed.
func (r *Recorder) Record(frameIdx int, st pullup.State, repCompleted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, Sample{
		Frame:        frameIdx,
		Phase:        st.Phase,
		Reps:         st.Reps,
		RepCompleted: repCompleted,
		LeftAngle:    st.Left.ArmAngle,
		RightAngle:   st.Right.ArmAngle,
		LeftDelta:    st.Left.DistanceDelta,
		RightDelta:   st.Right.DistanceDelta,
		LeftHip:      st.Left.HipDisplacement,
		RightHip:     st.Right.HipDisplacement,
	})
}

// Samples returns a copy of the recorded samples.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// series describes one line on a chart.
type series struct {
	name  string
	color color.Color
	value func(Sample) float64
}

// reference is a horizontal threshold line.
type reference struct {
	name  string
	value float64
}

var (
	leftColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	rightColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	hipColor   = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	hip2Color  = color.RGBA{R: 148, G: 103, B: 189, A: 255}
	refColor   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	repColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Save writes a PNG of the elbow angles with the bent and straight
// thresholds and a marker at every counted rep.
func (r *Recorder) Save(path string) error {
	return r.save(path, "Elbow Angles", "Angle (deg)",
		[]series{
			{"left", leftColor, func(s Sample) float64 { return s.LeftAngle }},
			{"right", rightColor, func(s Sample) float64 { return s.RightAngle }},
		},
		[]reference{
			{"bent", r.thresholds.BentArmAngle},
			{"straight", r.thresholds.StraightArmAngle},
		},
		func(s Sample) float64 { return s.LeftAngle },
	)
}

// SaveDistances writes a PNG of the wrist distance deltas and hip
// displacements with their thresholds.
func (r *Recorder) SaveDistances(path string) error {
	return r.save(path, "Arm Shortening and Hip Displacement", "Distance (normalized)",
		[]series{
			{"left delta", leftColor, func(s Sample) float64 { return s.LeftDelta }},
			{"right delta", rightColor, func(s Sample) float64 { return s.RightDelta }},
			{"left hip", hipColor, func(s Sample) float64 { return s.LeftHip }},
			{"right hip", hip2Color, func(s Sample) float64 { return s.RightHip }},
		},
		[]reference{
			{"bent distance", r.thresholds.BentArmDistance},
			{"hip distance", r.thresholds.HipDistance},
		},
		func(s Sample) float64 { return s.LeftHip },
	)
}

func (r *Recorder) save(path, name, yLabel string, lines []series, refs []reference, repY func(Sample) float64) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s", r.title, name)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = yLabel

	for _, ln := range lines {
		pts := make(plotter.XYs, len(samples))
		for i, s := range samples {
			pts[i] = plotter.XY{X: float64(s.Frame), Y: ln.value(s)}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s line: %w", ln.name, err)
		}
		line.Color = ln.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(ln.name, line)
	}

	first, last := float64(samples[0].Frame), float64(samples[len(samples)-1].Frame)
	for _, ref := range refs {
		pts := plotter.XYs{{X: first, Y: ref.value}, {X: last, Y: ref.value}}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s reference: %w", ref.name, err)
		}
		line.Color = refColor
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(line)
		p.Legend.Add(ref.name, line)
	}

	var reps plotter.XYs
	for _, s := range samples {
		if s.RepCompleted {
			reps = append(reps, plotter.XY{X: float64(s.Frame), Y: repY(s)})
		}
	}
	if len(reps) > 0 {
		scatter, err := plotter.NewScatter(reps)
		if err != nil {
			return fmt.Errorf("rep markers: %w", err)
		}
		scatter.GlyphStyle.Color = repColor
		scatter.GlyphStyle.Shape = draw.CrossGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(4)
		p.Add(scatter)
		p.Legend.Add("rep", scatter)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
