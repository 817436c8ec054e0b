package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sim "github.com/floodgate-sim/floodgate-sim/sim"
)

var defaultsPolicy string // Policy whose defaults are printed

// defaultsCmd prints a complete config file for one of the built-in configurations.
// The output is accepted unchanged by `run --config`.
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeDefaults(os.Stdout, defaultsPolicy); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// writeDefaults writes the defaults of policy as YAML, with every closure threshold
// spelled out.
func writeDefaults(w io.Writer, policy string) error {
	var cfg sim.Config
	switch policy {
	case "", sim.PolicyPerGateThreshold:
		cfg = sim.DefaultConfig()
		cfg.ClosureThresholds = cfg.Thresholds()
	case sim.PolicyUniformThreshold:
		cfg = sim.DefaultUniformConfig()
		cfg.ClosureThresholds = []float64{cfg.UniformThreshold()}
	default:
		return fmt.Errorf("unknown policy %q", policy)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&cfg); err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}
	return encoder.Close()
}

func init() {
	defaultsCmd.Flags().StringVar(&defaultsPolicy, "policy", sim.PolicyPerGateThreshold, "Policy whose defaults to print (per-gate-threshold, uniform-threshold)")
	rootCmd.AddCommand(defaultsCmd)
}
