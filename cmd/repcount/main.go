package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/config"
	"github.com/ayusman/repcount/internal/detector"
	"github.com/ayusman/repcount/internal/hook"
)

type options struct {
	configPath      string
	show            bool
	tracePath       string
	onRep           string
	hookTimeout     time.Duration
	minDetection    float64
	minTracking     float64
	modelComplexity int
	quiet           bool
}

func newRootCmd() *cobra.Command {
	defaults := detector.DefaultConfig()
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "repcount [flags] <video>",
		Short: "Count pull-ups in a video",
		Long: `repcount tracks the body pose in a video of pull-ups or chin-ups and
counts completed repetitions.

A rep is counted when the arms bend or shorten and the hips rise after a
dead hang has been confirmed. Thresholds can be tuned with a JSON file
passed to --config.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "JSON file with rep detection thresholds")
	f.BoolVar(&opts.show, "show", false, "display annotated frames while counting (press q to stop)")
	f.StringVar(&opts.tracePath, "trace", "", "write angle and distance charts to this path (.png, .svg or .html)")
	f.StringVar(&opts.onRep, "on-rep", "", "executable to run after every rep, receives a JSON event on stdin")
	f.DurationVar(&opts.hookTimeout, "hook-timeout", hook.DefaultTimeout, "time limit for each --on-rep invocation")
	f.Float64Var(&opts.minDetection, "min-detection-confidence", defaults.MinDetectionConf, "minimum pose detection confidence (0-1)")
	f.Float64Var(&opts.minTracking, "min-tracking-confidence", defaults.MinTrackingConf, "minimum pose tracking confidence (0-1)")
	f.IntVar(&opts.modelComplexity, "model-complexity", defaults.ModelComplexity, "pose model complexity (0, 1 or 2)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress log output")

	return cmd
}

func run(ctx context.Context, out io.Writer, videoPath string, opts *options) error {
	if opts.quiet {
		log.SetOutput(io.Discard)
	}

	if err := validateConfidence("min-detection-confidence", opts.minDetection); err != nil {
		return err
	}
	if err := validateConfidence("min-tracking-confidence", opts.minTracking); err != nil {
		return err
	}
	if opts.modelComplexity < 0 || opts.modelComplexity > 2 {
		return fmt.Errorf("model-complexity must be 0, 1 or 2, got %d", opts.modelComplexity)
	}

	var thresholds *config.Thresholds
	if opts.configPath != "" {
		t, err := config.LoadThresholds(opts.configPath)
		if err != nil {
			return err
		}
		thresholds = t
	}

	session, err := app.New(app.Config{
		VideoPath:  videoPath,
		Thresholds: thresholds,
		Detector: detector.Config{
			MinDetectionConf: opts.minDetection,
			MinTrackingConf:  opts.minTracking,
			ModelComplexity:  opts.modelComplexity,
		},
		Show:        opts.show,
		TracePath:   opts.tracePath,
		OnRepCmd:    opts.onRep,
		HookTimeout: opts.hookTimeout,
	})
	if err != nil {
		return err
	}

	sum, err := session.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Number of pull-ups: %d\n", sum.Reps)
	return nil
}

func validateConfidence(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", name, v)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
