// Package capture provides video file decoding using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// ErrVideoNotOpened is returned when a video source cannot be opened.
var ErrVideoNotOpened = errors.New("video could not be opened")

// ErrVideoClosed is returned when reading from a closed video.
var ErrVideoClosed = errors.New("video is closed")

// Source defines the interface for frame sources.
type Source interface {
	// ReadFrame returns the next frame in source order, or io.EOF once the
	// stream is exhausted. The caller is responsible for closing the Mat.
	ReadFrame() (*gocv.Mat, error)
	Close() error
	// FPS is the nominal frame rate, 0 if unknown.
	FPS() float64
	// FrameCount is the number of frames reported by the container, 0 if unknown.
	FrameCount() int
}

// Video reads frames sequentially from a video file.
type Video struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	fps     float64
	frames  int
}

// OpenVideo opens the video file at path. It fails before any frame is read
// if the file is missing or cannot be decoded.
func OpenVideo(path string) (*Video, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVideoNotOpened, err)
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrVideoNotOpened, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", ErrVideoNotOpened, path)
	}

	return &Video{
		path:    path,
		capture: capture,
		fps:     capture.Get(gocv.VideoCaptureFPS),
		frames:  int(capture.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

// Path returns the file the video was opened from.
func (v *Video) Path() string {
	return v.path
}

// ReadFrame reads the next frame from the video.
func (v *Video) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture == nil {
		return nil, ErrVideoClosed
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, io.EOF
	}

	return &mat, nil
}

// Close releases the decoder. Closing twice is a no-op.
func (v *Video) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture == nil {
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	return err
}

// FPS returns the nominal frame rate of the file.
func (v *Video) FPS() float64 {
	return v.fps
}

// FrameCount returns the frame count reported by the container.
func (v *Video) FrameCount() int {
	if v.frames < 0 {
		return 0
	}
	return v.frames
}
