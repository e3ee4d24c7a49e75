package e2e

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/testdata"
)

// workout is a dead hang followed by three pull-ups, with a tracking
// dropout and a half rep that must not count.
func workout() []*detector.LandmarkFrame {
	hang := detector.HangingPose()
	top := detector.PulledUpPose()
	half := detector.PoseWithArmAngle(100, 0.05)

	return []*detector.LandmarkFrame{
		&hang, &hang,
		&half, &top, // rep 1
		&half, &hang,
		nil, &top, // rep 2 after a dropout
		&hang,
		&half, &hang, // half rep, arms never bent far enough
		&half, &top, // rep 3
		&half,
	}
}

func writeWorkout(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workout.avi")
	if err := testdata.WriteVideo(path, workout()); err != nil {
		t.Skipf("skipping e2e test - video writer not available: %v", err)
	}
	return path
}

func TestE2E_CountFromVideoFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	video := writeWorkout(t)
	tracePath := filepath.Join(t.TempDir(), "trace", "workout.png")

	session, err := app.New(app.Config{
		VideoPath: video,
		TracePath: tracePath,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	mock := detector.NewMockDetector()
	mock.SetFrames(workout())
	session.SetDetector(mock)

	sum, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	frames := len(workout())
	if sum.Frames != frames {
		t.Fatalf("decoded %d frames, want %d", sum.Frames, frames)
	}
	if sum.Reps != 3 {
		t.Errorf("Reps = %d, want 3", sum.Reps)
	}
	if sum.Skipped != 1 || sum.Detected != frames-1 {
		t.Errorf("Detected/Skipped = %d/%d, want %d/1", sum.Detected, sum.Skipped, frames-1)
	}
	if sum.Stopped {
		t.Error("session should run to the end of the video")
	}

	for _, p := range []string{tracePath, app.DistancesPath(tracePath)} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("trace %s missing: %v", p, err)
		}
	}
}

func TestE2E_RepHook(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	video := writeWorkout(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "reps.log")
	script := filepath.Join(dir, "on-rep.sh")
	content := "#!/bin/sh\ncat >> \"" + out + "\"\necho >> \"" + out + "\"\n"
	if err := os.WriteFile(script, []byte(content), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	session, err := app.New(app.Config{
		VideoPath:   video,
		OnRepCmd:    script,
		HookTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	mock := detector.NewMockDetector()
	mock.SetFrames(workout())
	session.SetDetector(mock)

	if _, err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook never ran: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("hook ran %d times, want 3", len(lines))
	}
	if !strings.Contains(lines[0], session.ID()) {
		t.Errorf("event %q does not carry the session id", lines[0])
	}
}

func TestE2E_CLI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}

	bin := filepath.Join(t.TempDir(), "repcount")
	build := exec.Command("go", "build", "-o", bin, "../cmd/repcount")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	t.Run("MissingVideo", func(t *testing.T) {
		cmd := exec.Command(bin, "--quiet", filepath.Join(t.TempDir(), "missing.mp4"))
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		err := cmd.Run()
		exitErr, ok := err.(*exec.ExitError)
		if !ok || exitErr.ExitCode() != 1 {
			t.Fatalf("expected exit code 1, got %v", err)
		}
		if !strings.Contains(stderr.String(), "video could not be opened") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("Usage", func(t *testing.T) {
		out, err := exec.Command(bin, "--help").CombinedOutput()
		if err != nil {
			t.Fatalf("--help failed: %v", err)
		}
		if !strings.Contains(string(out), "repcount [flags] <video>") {
			t.Errorf("unexpected usage:\n%s", out)
		}
	})
}
