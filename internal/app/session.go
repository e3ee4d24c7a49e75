// Package app runs a rep-counting session over a single video.
package app

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/repcount/internal/capture"
	"github.com/ayusman/repcount/internal/config"
	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/internal/hook"
	"github.com/ayusman/repcount/internal/pullup"
	"github.com/ayusman/repcount/internal/trace"
)

// WindowTitle is the title of the preview window.
const WindowTitle = "repcount"

// ErrAlreadyRun is returned when Run is called on a finished session.
var ErrAlreadyRun = errors.New("session already run")

// Config holds configuration options for a session.
type Config struct {
	// VideoPath is the file to analyze. Ignored when a source is injected
	// with SetSource.
	VideoPath string

	// Thresholds overrides the rep heuristic limits. Nil uses the defaults.
	Thresholds *config.Thresholds

	// Detector configures the MediaPipe pose tracker.
	Detector detector.Config

	// Show displays annotated frames while processing; q stops the session.
	Show bool

	// TracePath, when set, receives a chart of the elbow angles. The
	// distance chart is written next to it with a "-distances" suffix.
	// An .html path gets a single interactive page with both charts.
	TracePath string

	// OnRepCmd is an executable run after every counted rep.
	OnRepCmd string

	// HookTimeout bounds each OnRepCmd invocation.
	HookTimeout time.Duration
}

// Summary is the outcome of a session.
type Summary struct {
	SessionID string
	Reps      int
	Frames    int
	Detected  int
	Skipped   int
	Failed    int // skipped frames where the detector returned an error

	// Stopped is true when the session ended before the end of the video
	// because the context was cancelled or the user quit the preview.
	Stopped bool
}

// Session counts pull-ups in one video.
type Session struct {
	id      string
	config  Config
	counter *pullup.Counter
	hooks   *hook.Executor
	trace   *trace.Recorder
	logger  *log.Logger

	mu       sync.Mutex
	source   capture.Source
	detector detector.Detector
	done     bool
}

// New validates cfg and creates a Session. Nothing is opened until Run.
func New(cfg Config) (*Session, error) {
	th := cfg.Thresholds
	if th == nil {
		th = config.DefaultThresholds()
	}
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	id := uuid.New().String()
	limits := CounterThresholds(th)

	s := &Session{
		id:      id,
		config:  cfg,
		counter: pullup.NewCounter(limits),
		logger:  log.New(log.Writer(), fmt.Sprintf("[Session %s] ", id[:8]), log.Flags()|log.Lmsgprefix),
	}

	if cfg.OnRepCmd != "" {
		s.hooks = hook.NewExecutor(cfg.HookTimeout)
	}
	if cfg.TracePath != "" {
		s.trace = trace.NewRecorder(fmt.Sprintf("%s (%s)", filepath.Base(cfg.VideoPath), id[:8]), limits)
	}

	return s, nil
}

// CounterThresholds converts a threshold file into counter limits, filling
// omitted fields with defaults.
func CounterThresholds(c *config.Thresholds) pullup.Thresholds {
	return pullup.Thresholds{
		BentArmAngle:        c.GetBentArmAngle(),
		StraightArmAngle:    c.GetStraightArmAngle(),
		BentArmDistance:     c.GetBentArmDistance(),
		StraightArmDistance: c.GetStraightArmDistance(),
		HipDistance:         c.GetHipDistance(),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Reps returns the number of reps counted so far.
func (s *Session) Reps() int {
	return s.counter.Reps()
}

// Thresholds returns the limits the counter runs with.
func (s *Session) Thresholds() pullup.Thresholds {
	return s.counter.Thresholds()
}

// SetSource replaces the video file with an already opened frame source.
// The session takes ownership and closes it when Run returns.
func (s *Session) SetSource(src capture.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = src
}

// SetDetector sets the pose detector implementation to use. The session
// closes it when Run returns.
func (s *Session) SetDetector(d detector.Detector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector = d
}

// open prepares the frame source and detector. The video is opened first so
// an unreadable file fails before any pose tracker is started.
func (s *Session) open() (capture.Source, detector.Detector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil, nil, ErrAlreadyRun
	}
	s.done = true

	if s.source == nil {
		v, err := capture.OpenVideo(s.config.VideoPath)
		if err != nil {
			return nil, nil, err
		}
		s.source = v
		s.logger.Printf("Opened %s (%.1f fps, %d frames)", s.config.VideoPath, v.FPS(), v.FrameCount())
	}

	if s.detector == nil {
		mp, err := detector.NewMediaPipeDetector(s.config.Detector)
		if err != nil {
			s.source.Close()
			return nil, nil, fmt.Errorf("%w: %v", detector.ErrUnavailable, err)
		}
		s.detector = mp
		s.logger.Println("Using MediaPipe pose detection")
	}

	return s.source, s.detector, nil
}

// writeTrace saves the trace charts. Failures are logged only.
func (s *Session) writeTrace() {
	if s.trace == nil {
		return
	}

	path := s.config.TracePath
	if strings.EqualFold(filepath.Ext(path), ".html") {
		if err := s.trace.SaveHTML(path); err != nil {
			if errors.Is(err, trace.ErrNoSamples) {
				s.logger.Println("No pose detected, skipping trace")
				return
			}
			s.logger.Printf("Failed to write trace: %v", err)
			return
		}
		s.logger.Printf("Wrote trace to %s", path)
		return
	}

	if err := s.trace.Save(path); err != nil {
		if errors.Is(err, trace.ErrNoSamples) {
			s.logger.Println("No pose detected, skipping trace")
			return
		}
		s.logger.Printf("Failed to write trace: %v", err)
		return
	}

	dist := DistancesPath(path)
	if err := s.trace.SaveDistances(dist); err != nil {
		s.logger.Printf("Failed to write distance trace: %v", err)
		return
	}
	s.logger.Printf("Wrote trace to %s and %s", path, dist)
}

// DistancesPath derives the distance chart path from the angle chart path.
func DistancesPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".png"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + "-distances" + ext
}
