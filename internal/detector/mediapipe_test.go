package detector

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"
)

// crashingService answers one frame with no landmarks, then exits. Every
// start appends a line to the file named by POSE_STARTS.
const crashingService = `import os, struct, sys
with open(os.environ["POSE_STARTS"], "a") as f:
    f.write("start\n")
stdin = sys.stdin.buffer
header = stdin.read(4)
if len(header) == 4:
    (size,) = struct.unpack(">I", header)
    stdin.read(size)
    sys.stdout.write('{"landmarks": []}\n')
    sys.stdout.flush()
`

func TestMediaPipeDetector_RestartsAfterServiceExit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "pose_service.py")
	starts := filepath.Join(dir, "starts.log")
	if err := os.WriteFile(script, []byte(crashingService), 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	t.Setenv("POSE_STARTS", starts)

	d := &MediaPipeDetector{config: DefaultConfig(), scriptPath: script, python: "python3"}
	defer d.Close()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	lm, err := d.Detect(&frame)
	if err != nil || lm != nil {
		t.Fatalf("first Detect() = %v, %v, want no detection", lm, err)
	}

	// The service has exited; the next exchange fails and stops it.
	if _, err := d.Detect(&frame); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("second Detect() error = %v, want ErrUnavailable", err)
	}

	// A fresh service is started for the following frame.
	lm, err = d.Detect(&frame)
	if err != nil || lm != nil {
		t.Fatalf("third Detect() = %v, %v, want no detection", lm, err)
	}

	data, err := os.ReadFile(starts)
	if err != nil {
		t.Fatalf("service never started: %v", err)
	}
	if n := strings.Count(string(data), "start"); n != 2 {
		t.Errorf("service started %d times, want 2", n)
	}
}

func TestMediaPipeDetector_StartFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	d := &MediaPipeDetector{config: DefaultConfig(), scriptPath: "pose_service.py", python: filepath.Join(t.TempDir(), "no-python")}
	defer d.Close()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if _, err := d.Detect(&frame); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Detect() error = %v, want ErrUnavailable", err)
	}
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, nil, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if got := findFile(filepath.Join(dir, "missing"), present); got != present {
		t.Errorf("findFile() = %q, want %q", got, present)
	}
	if got := findFile(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("findFile() = %q, want empty", got)
	}
}
