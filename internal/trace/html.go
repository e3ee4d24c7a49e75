package trace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// SaveHTML writes both charts as a single interactive HTML page.
func (r *Recorder) SaveHTML(path string) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	frames := make([]int, len(samples))
	for i, s := range samples {
		frames[i] = s.Frame
	}

	angles := r.lineChart("Elbow Angles", "Angle (deg)", frames)
	angles.AddSeries("left", lineData(samples, func(s Sample) float64 { return s.LeftAngle })).
		AddSeries("right", lineData(samples, func(s Sample) float64 { return s.RightAngle })).
		AddSeries("rep", repData(samples, func(s Sample) float64 { return s.LeftAngle }))

	distances := r.lineChart("Arm Shortening and Hip Displacement", "Distance (normalized)", frames)
	distances.AddSeries("left delta", lineData(samples, func(s Sample) float64 { return s.LeftDelta })).
		AddSeries("right delta", lineData(samples, func(s Sample) float64 { return s.RightDelta })).
		AddSeries("left hip", lineData(samples, func(s Sample) float64 { return s.LeftHip })).
		AddSeries("right hip", lineData(samples, func(s Sample) float64 { return s.RightHip })).
		AddSeries("rep", repData(samples, func(s Sample) float64 { return s.LeftHip }))

	page := components.NewPage()
	page.AddCharts(angles, distances)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render trace: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (r *Recorder) lineChart(name, yLabel string, frames []int) *charts.Line {
	t := r.thresholds
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: r.title, Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title: name,
			Subtitle: fmt.Sprintf("%s  bent %.0f/%.2f  straight %.0f/%.2f  hip %.2f",
				r.title, t.BentArmAngle, t.BentArmDistance, t.StraightArmAngle, t.StraightArmDistance, t.HipDistance),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel, NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(frames)
	return line
}

func lineData(samples []Sample, value func(Sample) float64) []opts.LineData {
	data := make([]opts.LineData, len(samples))
	for i, s := range samples {
		data[i] = opts.LineData{Value: value(s)}
	}
	return data
}

// repData marks counted reps and leaves a gap at every other frame.
func repData(samples []Sample, value func(Sample) float64) []opts.LineData {
	data := make([]opts.LineData, len(samples))
	for i, s := range samples {
		if s.RepCompleted {
			data[i] = opts.LineData{Value: value(s), Name: fmt.Sprintf("rep %d", s.Reps)}
		} else {
			data[i] = opts.LineData{Value: "-"}
		}
	}
	return data
}
