// Package hook runs a user-supplied command every time a rep is counted.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single hook invocation.
const DefaultTimeout = 5 * time.Second

// ErrNoCommand is returned when Execute is called without a command path.
var ErrNoCommand = errors.New("no hook command configured")

// RepEvent is the JSON document written to the hook's stdin.
type RepEvent struct {
	Session   string    `json:"session"`
	Rep       int       `json:"rep"`
	Frame     int       `json:"frame"`
	Timestamp time.Time `json:"timestamp"`
}

// Executor runs hook commands with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor. A non-positive timeout selects DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Timeout returns the per-invocation limit.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute runs cmdPath with ev marshaled to JSON on stdin and waits for it
// to exit. The process is killed when the timeout elapses or ctx is done.
func (e *Executor) Execute(ctx context.Context, cmdPath string, ev RepEvent) error {
	if cmdPath == "" {
		return ErrNoCommand
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal rep event: %w", err)
	}

	cmd := exec.CommandContext(ctx, cmdPath)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("hook timed out after %s", e.timeout)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return fmt.Errorf("hook execution failed: %w, stderr: %s", err, s)
		}
		return fmt.Errorf("hook execution failed: %w", err)
	}

	return nil
}
