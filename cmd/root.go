package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/floodgate-sim/floodgate-sim/sim"
)

var (
	// CLI flags for the run configuration. Each one overrides the config file (or
	// the defaults) only when set explicitly.
	configPath          string    // Optional YAML config file
	seed                int64     // Seed for depth readings and success draws
	numGates            int       // Number of floodgates
	closureThresholds   []float64 // Per-gate thresholds, or a single global one under uniform-threshold
	policyName          string    // Evaluation policy
	successProbability  float64   // Probability that a gate actuation succeeds
	readInterval        int64     // Ticks between depth readings
	numCycles           int       // Number of driver ticks
	maintenanceDuration int64     // Ticks a repair takes
	initialDepth        float64   // Depth used for the first tick instead of a reading

	// CLI flags for output
	logLevel     string // Log verbosity level
	outPath      string // Optional JSON export of the result
	printMetrics bool   // Print the Prometheus registry after the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "floodgate-sim",
	Short: "Discrete-event simulator for river floodgate control",
}

// runCmd executes the simulation using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the floodgate simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := runSimulation(ctx, cmd, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// buildConfig resolves the run configuration: the config file (or the defaults for
// the selected policy), then every flag the user set explicitly.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	flags := cmd.Flags()

	var cfg sim.Config
	switch {
	case configPath != "":
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return loaded, err
		}
		cfg = loaded
	case flags.Changed("policy") && policyName == sim.PolicyUniformThreshold:
		cfg = sim.DefaultUniformConfig()
	default:
		cfg = sim.DefaultConfig()
	}

	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("gates") {
		cfg.NumGates = numGates
	}
	if flags.Changed("thresholds") {
		cfg.ClosureThresholds = closureThresholds
	}
	if flags.Changed("policy") {
		cfg.Policy = policyName
	}
	if flags.Changed("success-prob") {
		cfg.SuccessProbability = successProbability
	}
	if flags.Changed("interval") {
		cfg.ReadInterval = readInterval
	}
	if flags.Changed("cycles") {
		cfg.NumCycles = numCycles
	}
	if flags.Changed("maintenance") {
		cfg.MaintenanceDuration = maintenanceDuration
	}
	if flags.Changed("initial-depth") {
		d := initialDepth
		cfg.InitialDepth = &d
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runSimulation builds, runs and reports one simulation. The summary is written to w.
func runSimulation(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	s, err := sim.NewSimulator(cfg)
	if err != nil {
		return err
	}

	startTime := time.Now()
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	logrus.Infof("Simulation complete in %v (run %s)", time.Since(startTime), res.RunID)

	res.Summary().Print(w)

	if outPath != "" {
		if err := writeResultJSON(outPath, res); err != nil {
			return err
		}
		logrus.Infof("Result written to %s", outPath)
	}
	if printMetrics {
		if err := writeMetrics(w, s.Metrics()); err != nil {
			return fmt.Errorf("printing metrics: %w", err)
		}
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags attaches the run flags to c.
func registerRunFlags(c *cobra.Command) {
	c.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (flags override its values)")
	c.Flags().Int64Var(&seed, "seed", sim.DefaultSeed, "Seed for depth readings and gate success draws")
	c.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Plant configuration
	c.Flags().IntVar(&numGates, "gates", sim.DefaultNumGates, "Number of floodgates")
	c.Flags().Float64SliceVar(&closureThresholds, "thresholds", nil, "Comma-separated closure thresholds in meters (one per gate, or one under uniform-threshold)")
	c.Flags().StringVar(&policyName, "policy", sim.PolicyPerGateThreshold, "Evaluation policy (per-gate-threshold, uniform-threshold)")
	c.Flags().Float64Var(&successProbability, "success-prob", sim.DefaultSuccessProbability, "Probability that a gate actuation succeeds")
	c.Flags().Float64Var(&initialDepth, "initial-depth", 0, "Depth in meters used for the first tick instead of a reading")

	// Timing
	c.Flags().Int64Var(&readInterval, "interval", sim.DefaultReadInterval, "Ticks between depth readings")
	c.Flags().IntVar(&numCycles, "cycles", sim.DefaultNumCycles, "Number of depth readings")
	c.Flags().Int64Var(&maintenanceDuration, "maintenance", sim.DefaultMaintenanceDuration, "Ticks a maintenance repair takes")

	// Output
	c.Flags().StringVar(&outPath, "out", "", "Write the full result as JSON to this path")
	c.Flags().BoolVar(&printMetrics, "metrics", false, "Print the run's Prometheus metrics after the summary")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
