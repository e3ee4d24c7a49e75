package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrUnavailable reports that the pose tracker could not produce results,
// as opposed to running and finding no body.
var ErrUnavailable = errors.New("pose detector unavailable")

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the tracked body landmarks.
	// Returns nil, nil if no body is detected in the frame.
	Detect(frame *gocv.Mat) (*LandmarkFrame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinDetectionConf is the minimum detection confidence threshold (0.0-1.0).
	MinDetectionConf float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity selects the pose model (0, 1 or 2).
	ModelComplexity int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinDetectionConf: 0.9,
		MinTrackingConf:  0.9,
		ModelComplexity:  1,
	}
}
