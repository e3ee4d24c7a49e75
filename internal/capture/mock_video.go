package capture

import (
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// MockVideo plays back pre-recorded frames for testing
type MockVideo struct {
	frames []*gocv.Mat
	index  int
	closed bool
	mu     sync.Mutex
}

func NewMockVideo(frames []*gocv.Mat) *MockVideo {
	return &MockVideo{frames: frames}
}

// NewBlankVideo returns a MockVideo of n black 640x480 frames. The caller
// owns the frames and must release them with CloseFrames.
func NewBlankVideo(n int) *MockVideo {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return NewMockVideo(frames)
}

func (v *MockVideo) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, ErrVideoClosed
	}
	if v.index >= len(v.frames) {
		return nil, io.EOF
	}

	// Clone the frame so the original isn't modified
	frame := v.frames[v.index].Clone()
	v.index++
	return &frame, nil
}

func (v *MockVideo) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

func (v *MockVideo) FPS() float64    { return 30 }
func (v *MockVideo) FrameCount() int { return len(v.frames) }

// Read returns how many frames have been handed out.
func (v *MockVideo) Read() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.index
}

// CloseFrames releases the source frames.
func (v *MockVideo) CloseFrames() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, f := range v.frames {
		f.Close()
	}
	v.frames = nil
}
