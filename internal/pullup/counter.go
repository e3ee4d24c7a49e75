// Package pullup counts pull-up repetitions from a stream of body landmarks.
//
// The counter is a two-phase state machine. A rep is counted on the
// transition from the straight (dead hang) phase back to not-straight, when
// the arms bend or shorten and the hips have moved away from the position
// recorded when the straight phase was last confirmed.
package pullup

import (
	"math"

	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/internal/geometry"
)

// Phase is the counter's view of whether the athlete's arms are extended.
type Phase int

const (
	// NotStraight is the initial phase and the phase after every counted rep.
	NotStraight Phase = iota
	// Straight means a dead hang has been confirmed and a baseline recorded.
	Straight
)

func (p Phase) String() string {
	if p == Straight {
		return "straight"
	}
	return "not-straight"
}

// Thresholds are the tunable limits of the rep heuristic. Angles are in
// degrees, distances in normalized image units.
type Thresholds struct {
	BentArmAngle        float64
	StraightArmAngle    float64
	BentArmDistance     float64
	StraightArmDistance float64
	HipDistance         float64
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BentArmAngle:        60.0,
		StraightArmAngle:    130.0,
		BentArmDistance:     0.08,
		StraightArmDistance: 0.05,
		HipDistance:         0.15,
	}
}

// Side holds the per-frame measurements and the straight-phase reference
// values for one arm.
type Side struct {
	ArmAngle        float64 // elbow angle in degrees
	WristDistance   float64 // wrist to shoulder
	DistanceDelta   float64 // BaselineDistance - WristDistance
	HipDisplacement float64 // hip to BaselineHip

	// AngleCeiling and DeltaFloor are +Inf until a straight phase is
	// confirmed, then hold the angle and delta observed at the confirmation.
	AngleCeiling float64
	DeltaFloor   float64

	BaselineDistance float64
	BaselineHip      geometry.Point2D
}

// measure recomputes the per-frame values from the joints of one side.
func (s *Side) measure(j detector.Side) {
	s.ArmAngle = geometry.Angle(j.Shoulder, j.Elbow, j.Wrist)
	s.WristDistance = geometry.Distance(j.Wrist, j.Shoulder)
	s.DistanceDelta = s.BaselineDistance - s.WristDistance
	s.HipDisplacement = geometry.Distance(j.Hip, s.BaselineHip)
}

func (s *Side) snapshot(j detector.Side) {
	s.BaselineDistance = s.WristDistance
	s.BaselineHip = j.Hip
	s.AngleCeiling = s.ArmAngle
	s.DeltaFloor = s.DistanceDelta
}

func (s *Side) resetLimits() {
	s.AngleCeiling = math.Inf(1)
	s.DeltaFloor = math.Inf(1)
}

// State is the complete mutable state of a Counter.
type State struct {
	Phase Phase
	Left  Side
	Right Side
	Reps  int
}

// Result reports what a single frame did to the counter.
type Result struct {
	RepCompleted bool
	Straightened bool
	Reps         int
	Phase        Phase
}

// Counter detects pull-up repetitions. It is not safe for concurrent use;
// frames must be fed in source order.
type Counter struct {
	thresholds Thresholds
	state      State
}

// NewCounter creates a Counter with the given thresholds.
func NewCounter(t Thresholds) *Counter {
	c := &Counter{thresholds: t}
	c.Reset()
	return c
}

// NewDefaultCounter creates a Counter with DefaultThresholds.
func NewDefaultCounter() *Counter {
	return NewCounter(DefaultThresholds())
}

// Reset returns the counter to its initial state, clearing the rep count.
func (c *Counter) Reset() {
	c.state = State{Phase: NotStraight}
	c.state.Left.resetLimits()
	c.state.Right.resetLimits()
}

// Thresholds returns the thresholds the counter was created with.
func (c *Counter) Thresholds() Thresholds {
	return c.thresholds
}

// State returns a copy of the current state.
func (c *Counter) State() State {
	return c.state
}

// Reps returns the number of repetitions counted so far.
func (c *Counter) Reps() int {
	return c.state.Reps
}

// Phase returns the current phase.
func (c *Counter) Phase() Phase {
	return c.state.Phase
}

// ProcessFrame updates the counter with the landmarks of one frame.
// A nil frame means the pose tracker found no body; it leaves the state untouched.
func (c *Counter) ProcessFrame(frame *detector.LandmarkFrame) Result {
	if frame == nil {
		return c.result(false, false)
	}

	left, right := frame.Left(), frame.Right()
	next := c.state
	next.Left.measure(left)
	next.Right.measure(right)

	switch {
	case c.pullUpDetected(&next):
		next.Reps++
		next.Phase = NotStraight
		next.Left.resetLimits()
		next.Right.resetLimits()
		c.state = next
		return c.result(true, false)

	case c.straighteningDetected(&next):
		next.Phase = Straight
		next.Left.snapshot(left)
		next.Right.snapshot(right)
		c.state = next
		return c.result(false, true)
	}

	c.state = next
	return c.result(false, false)
}

func (c *Counter) result(rep, straightened bool) Result {
	return Result{
		RepCompleted: rep,
		Straightened: straightened,
		Reps:         c.state.Reps,
		Phase:        c.state.Phase,
	}
}

// pullUpDetected requires a confirmed straight phase, then bent or shortened
// arms together with displaced hips.
func (c *Counter) pullUpDetected(s *State) bool {
	if s.Phase != Straight {
		return false
	}

	t := c.thresholds
	l, r := &s.Left, &s.Right

	armsBent := l.ArmAngle < t.BentArmAngle || r.ArmAngle < t.BentArmAngle
	armsDisplaced := l.DistanceDelta > t.BentArmDistance || r.DistanceDelta > t.BentArmDistance
	hipsDisplaced := l.HipDisplacement > t.HipDistance || r.HipDisplacement > t.HipDistance

	return (armsBent || armsDisplaced) && hipsDisplaced
}

// straighteningDetected uses the fixed thresholds for the first straightening
// after a rep. While already straight it only fires when both arms improve on
// the limits recorded at the last confirmation, ratcheting the baseline.
func (c *Counter) straighteningDetected(s *State) bool {
	l, r := &s.Left, &s.Right

	if s.Phase == NotStraight {
		t := c.thresholds
		armsStraight := l.ArmAngle > t.StraightArmAngle && r.ArmAngle > t.StraightArmAngle
		armsSettled := l.DistanceDelta < t.StraightArmDistance && r.DistanceDelta < t.StraightArmDistance
		return armsStraight && armsSettled
	}

	armsStraight := l.ArmAngle > l.AngleCeiling && r.ArmAngle > r.AngleCeiling
	armsSettled := l.DistanceDelta < l.DeltaFloor && r.DistanceDelta < r.DeltaFloor
	return armsStraight && armsSettled
}
