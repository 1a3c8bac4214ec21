// Command kairos runs a command repeatedly, timing every run, and prints
// the accumulated statistics, e.g.:
//
//	kairos run --runs 5 --emit-each -- sleep 0.1
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/onegii/go-kairos/kairos"
)

var (
	flagRuns     int
	flagEmitEach bool
	flagUnit     string
	flagOuts     []string
	flagSets     []string
	flagVerbose  bool
	flagTask     string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kairos",
		Short:        "Measure the wall-clock cost of commands",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd())
	return root
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command N times and report timing statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTimed,
	}
	cmd.Flags().IntVar(&flagRuns, "runs", 1, "number of times to run the command")
	cmd.Flags().BoolVar(&flagEmitEach, "emit-each", false, "emit one line per completed run")
	cmd.Flags().StringVar(&flagUnit, "unit", kairos.UnitSeconds, "duration unit (s or ms)")
	cmd.Flags().StringArrayVar(&flagOuts, "out", nil, "additional sink path (file or directory), repeatable")
	cmd.Flags().StringArrayVar(&flagSets, "set", nil, "raw tracker option key=value, repeatable")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "route output through a debug-level logger as well")
	cmd.Flags().StringVar(&flagTask, "task", "", "task name to record under (default: command base name)")
	return cmd
}

// newLogger creates a new logger with the appropriate log level based on
// the verbose flag.
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

func runTimed(cmd *cobra.Command, args []string) error {
	tracker := kairos.New()
	defer tracker.Close()

	if flagVerbose {
		tracker.UseLogger(kairos.NewLogrusLogger(newLogger(true)))
	}

	err := tracker.Configure(kairos.Options{
		EmitEach: &flagEmitEach,
		TimeUnit: &flagUnit,
	})
	if err != nil {
		return err
	}
	if err := applySetFlags(tracker, flagSets); err != nil {
		return err
	}

	for _, out := range flagOuts {
		if _, err := tracker.Add(out); err != nil {
			return err
		}
	}

	task := flagTask
	if task == "" {
		task = filepath.Base(args[0])
	}

	var lastErr error
	for i := 0; i < flagRuns; i++ {
		runErr := tracker.Measure(task, func() error {
			c := exec.Command(args[0], args[1:]...)
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			return c.Run()
		})
		if runErr != nil {
			// Keep timing the remaining runs; report the failure at the end.
			lastErr = runErr
		}
	}

	if _, err := tracker.Summary(); err != nil {
		return err
	}
	return lastErr
}

// applySetFlags forwards --set key=value pairs to the tracker's dynamic
// option surface, so typos fail the same way a typo'd option call would.
func applySetFlags(tracker *kairos.Tracker, sets []string) error {
	if len(sets) == 0 {
		return nil
	}
	opts := make(map[string]any, len(sets))
	for _, kv := range sets {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("malformed --set %q, want key=value", kv)
		}
		if b, err := strconv.ParseBool(val); err == nil {
			opts[key] = b
		} else {
			opts[key] = val
		}
	}
	return tracker.ConfigureMap(opts)
}
