// Package detector provides pose detection interfaces and landmark types for rep counting.
package detector

import "github.com/ayusman/repcount/internal/geometry"

// Landmark identifies one of the upper-body joints tracked for pull-ups.
type Landmark int

// Tracked landmarks. The values index a LandmarkFrame, not the pose model output.
const (
	LeftShoulder Landmark = iota
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	NumLandmarks
)

// MediaPipe pose landmark indices for each tracked joint.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
var mediaPipeIndex = [NumLandmarks]int{
	LeftShoulder:  11,
	RightShoulder: 12,
	LeftElbow:     13,
	RightElbow:    14,
	LeftWrist:     15,
	RightWrist:    16,
	LeftHip:       23,
	RightHip:      24,
}

var landmarkNames = [NumLandmarks]string{
	LeftShoulder:  "LEFT_SHOULDER",
	RightShoulder: "RIGHT_SHOULDER",
	LeftElbow:     "LEFT_ELBOW",
	RightElbow:    "RIGHT_ELBOW",
	LeftWrist:     "LEFT_WRIST",
	RightWrist:    "RIGHT_WRIST",
	LeftHip:       "LEFT_HIP",
	RightHip:      "RIGHT_HIP",
}

func (l Landmark) String() string {
	if l < 0 || l >= NumLandmarks {
		return "UNKNOWN"
	}
	return landmarkNames[l]
}

// MediaPipeIndex returns the index of l in the 33-point MediaPipe pose model.
func (l Landmark) MediaPipeIndex() int {
	return mediaPipeIndex[l]
}

// LandmarkFrame holds the tracked joint positions for a single video frame,
// in normalized image coordinates.
type LandmarkFrame [NumLandmarks]geometry.Point2D

// Side groups the joints of one side of the body.
type Side struct {
	Shoulder geometry.Point2D
	Elbow    geometry.Point2D
	Wrist    geometry.Point2D
	Hip      geometry.Point2D
}

// Left returns the left-side joints.
func (f *LandmarkFrame) Left() Side {
	return Side{
		Shoulder: f[LeftShoulder],
		Elbow:    f[LeftElbow],
		Wrist:    f[LeftWrist],
		Hip:      f[LeftHip],
	}
}

// Right returns the right-side joints.
func (f *LandmarkFrame) Right() Side {
	return Side{
		Shoulder: f[RightShoulder],
		Elbow:    f[RightElbow],
		Wrist:    f[RightWrist],
		Hip:      f[RightHip],
	}
}
