package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/internal/hook"
	"github.com/ayusman/repcount/internal/overlay"
)

// Run processes the video frame by frame until it ends, ctx is cancelled or
// the user quits the preview window. A session can only be run once.
//
// Per frame:
//  1. Read the next frame in source order
//  2. Run pose detection; misses and detector errors skip the frame
//  3. Feed the landmarks to the counter
//  4. Record the trace sample and fire the rep hook
//  5. Draw and show the frame when the preview is enabled
//
// Run fails with detector.ErrUnavailable when frames were read, none of them
// produced landmarks and the detector returned an error for at least one.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	sum := Summary{SessionID: s.id}

	src, det, err := s.open()
	if err != nil {
		return sum, err
	}
	defer func() {
		if err := src.Close(); err != nil {
			s.logger.Printf("Error closing video: %v", err)
		}
		if err := det.Close(); err != nil {
			s.logger.Printf("Error closing detector: %v", err)
		}
	}()

	var win *overlay.Window
	if s.config.Show {
		win = overlay.NewWindow(WindowTitle)
		defer win.Close()
	}

	s.logger.Println("Counting started")
	start := time.Now()

	var lastErr error

loop:
	for {
		select {
		case <-ctx.Done():
			sum.Stopped = true
			break loop
		default:
		}

		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sum.Reps = s.counter.Reps()
			return sum, fmt.Errorf("read frame %d: %w", sum.Frames, err)
		}

		idx := sum.Frames
		sum.Frames++

		lm, err := s.processFrame(ctx, idx, frame, &sum)
		if err != nil {
			lastErr = err
		}

		quit := false
		if win != nil {
			overlay.Draw(frame, lm, s.counter.State())
			quit = win.Show(frame)
		}
		frame.Close()

		if quit {
			sum.Stopped = true
			break
		}
	}

	sum.Reps = s.counter.Reps()
	s.logger.Printf("Counting finished: %d reps in %d frames (%d detected, %d skipped, %d failed) in %s",
		sum.Reps, sum.Frames, sum.Detected, sum.Skipped, sum.Failed, time.Since(start).Round(time.Millisecond))

	s.writeTrace()

	// A zero count is only meaningful if the tracker saw at least one frame.
	if sum.Detected == 0 && sum.Failed > 0 {
		return sum, fmt.Errorf("pose detection failed on all %d frames: %w", sum.Failed, wrapUnavailable(lastErr))
	}

	return sum, nil
}

func wrapUnavailable(err error) error {
	if errors.Is(err, detector.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", detector.ErrUnavailable, err)
}

// processFrame detects the pose in frame and advances the counter. It
// returns the landmarks, nil when the frame was skipped. A detector error is
// logged and returned after the frame has been counted as skipped.
func (s *Session) processFrame(ctx context.Context, idx int, frame *gocv.Mat, sum *Summary) (*detector.LandmarkFrame, error) {
	lm, err := s.detectorFor().Detect(frame)
	if err != nil {
		s.logger.Printf("Frame %d: pose detection failed: %v", idx, err)
		sum.Skipped++
		sum.Failed++
		return nil, err
	}
	if lm == nil {
		sum.Skipped++
		return nil, nil
	}
	sum.Detected++

	res := s.counter.ProcessFrame(lm)
	if s.trace != nil {
		s.trace.Record(idx, s.counter.State(), res.RepCompleted)
	}

	if res.RepCompleted {
		s.logger.Printf("Rep %d at frame %d", res.Reps, idx)
		s.fireHook(ctx, idx, res.Reps)
	}

	return lm, nil
}

func (s *Session) fireHook(ctx context.Context, idx, rep int) {
	if s.hooks == nil {
		return
	}

	ev := hook.RepEvent{
		Session:   s.id,
		Rep:       rep,
		Frame:     idx,
		Timestamp: time.Now().UTC(),
	}
	if err := s.hooks.Execute(ctx, s.config.OnRepCmd, ev); err != nil {
		s.logger.Printf("Rep hook failed: %v", err)
	}
}

func (s *Session) detectorFor() detector.Detector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector
}
