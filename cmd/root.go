package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jit-sim/jit-sim/sim/layout"
	"github.com/jit-sim/jit-sim/sim/trace"
)

var (
	// CLI flags for the run command
	layoutID   string            // Layout to simulate
	paramsPath string            // Optional YAML parameter file
	overrides  map[string]string // Individual parameter overrides
	seed       int64             // Seed for the random draws
	traceLevel string            // Per-stage trace verbosity
	logLevel   string            // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "jit-sim",
	Short: "Discrete-event simulator for just-in-time production lines",
}

// runCmd executes one simulation using parameters from the CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a layout simulation and print the JSON result",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		id, params, fileSeed, err := buildRunConfig(paramsPath, layoutID, overrides)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		opts := layout.Options{Seed: fileSeed, Trace: trace.TraceLevel(traceLevel)}
		if cmd.Flags().Changed("seed") {
			opts.Seed = &seed
		}

		startTime := time.Now()
		if err := runSimulation(os.Stdout, id, params, opts); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// layoutsCmd lists every registered layout with its defaults
var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the available layouts and their default parameters",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printLayouts(os.Stdout); err != nil {
			logrus.Fatalf("Failed to list layouts: %v", err)
		}
	},
}

// runSimulation runs one layout and writes its result as indented JSON.
func runSimulation(w io.Writer, id string, params layout.Parameters, opts layout.Options) error {
	res, err := layout.RunWithOptions(id, params, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printLayouts(w io.Writer) error {
	for _, l := range layout.Layouts() {
		fmt.Fprintf(w, "%s", l.ID)
		if len(l.Aliases) > 0 {
			fmt.Fprintf(w, " (aliases: %v)", l.Aliases)
		}
		fmt.Fprintf(w, "\n  %s\n", l.Description)
		defaults := l.Defaults()
		for _, k := range defaults.Keys() {
			fmt.Fprintf(w, "  %-24s %v\n", k, defaults[k])
		}
	}
	return nil
}

func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&layoutID, "layout", "", "Layout to simulate (shoe, car, fabrica)")
	runCmd.Flags().StringVar(&paramsPath, "params", "", "YAML file with layout, seed and parametros keys")
	runCmd.Flags().StringToStringVar(&overrides, "set", nil, "Override one parameter, e.g. --set media_corte=4.6 (repeatable)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the random draws (default: params file seed, else wall clock)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace verbosity (none, stages)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(layoutsCmd)
	rootCmd.AddCommand(serveCmd)
}
