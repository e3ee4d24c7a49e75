package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/geometry"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to script the detection results frame by frame.
type MockDetector struct {
	mu     sync.Mutex
	frames []*LandmarkFrame
	fixed  *LandmarkFrame
	index  int
	err    error
	fails  int
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrames sets the sequence returned by successive Detect calls. A nil entry
// reports no detection for that frame. Once the sequence is exhausted Detect
// reports no detection.
func (m *MockDetector) SetFrames(frames []*LandmarkFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.fixed = nil
	m.index = 0
}

// SetFrame makes every Detect call return the same landmarks.
func (m *MockDetector) SetFrame(frame *LandmarkFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed = frame
	m.frames = nil
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.fails = 0
}

// SetFailures makes the next n Detect calls return err. Failed calls do not
// consume scripted frames.
func (m *MockDetector) SetFailures(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails = n
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*LandmarkFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		err := m.err
		if m.fails > 0 {
			m.fails--
			if m.fails == 0 {
				m.err = nil
			}
		}
		return nil, err
	}
	if m.fixed != nil {
		return m.fixed, nil
	}
	if m.index >= len(m.frames) {
		return nil, nil
	}
	lm := m.frames[m.index]
	m.index++
	return lm, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Synthetic body proportions in normalized units. Upper arm and forearm have
// the same length so the elbow always sits halfway between shoulder and wrist.
const (
	barY      = 0.10
	limbLen   = 0.15
	torsoLen  = 0.35
	leftHand  = 0.40
	rightHand = 0.60
)

// ArmSpan returns the wrist-to-shoulder distance of a synthetic arm bent to
// the given elbow angle in degrees.
func ArmSpan(elbowAngle float64) float64 {
	rad := elbowAngle * math.Pi / 180
	return limbLen * math.Sqrt(2-2*math.Cos(rad))
}

// PoseWithArmAngle returns a symmetric hanging pose with both hands on the bar,
// both elbows bent to elbowAngle degrees and the hips raised by hipLift from
// their position in a dead hang.
func PoseWithArmAngle(elbowAngle, hipLift float64) LandmarkFrame {
	span := ArmSpan(elbowAngle)
	// Elbows bend outward, away from the body centre.
	offset := math.Sqrt(math.Max(0, limbLen*limbLen-span*span/4))

	shoulderY := barY + span
	elbowY := barY + span/2
	hipY := barY + 2*limbLen + torsoLen - hipLift

	var f LandmarkFrame
	f[LeftWrist] = geometry.Point2D{X: leftHand, Y: barY}
	f[RightWrist] = geometry.Point2D{X: rightHand, Y: barY}
	f[LeftShoulder] = geometry.Point2D{X: leftHand, Y: shoulderY}
	f[RightShoulder] = geometry.Point2D{X: rightHand, Y: shoulderY}
	f[LeftElbow] = geometry.Point2D{X: leftHand - offset, Y: elbowY}
	f[RightElbow] = geometry.Point2D{X: rightHand + offset, Y: elbowY}
	f[LeftHip] = geometry.Point2D{X: leftHand, Y: hipY}
	f[RightHip] = geometry.Point2D{X: rightHand, Y: hipY}
	return f
}

// HangingPose returns a dead hang: arms fully extended, hips at rest.
func HangingPose() LandmarkFrame {
	return PoseWithArmAngle(180, 0)
}

// PulledUpPose returns the top of a pull-up: elbows at 45 degrees and the
// whole body raised by the amount the arms shortened.
func PulledUpPose() LandmarkFrame {
	return PoseWithArmAngle(45, ArmSpan(180)-ArmSpan(45))
}
