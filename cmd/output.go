package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/prometheus/common/expfmt"

	sim "github.com/floodgate-sim/floodgate-sim/sim"
)

// writeResultJSON writes res to path as indented JSON.
func writeResultJSON(path string, res *sim.SimulationResult) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// writeMetrics prints every metric family of m in the Prometheus text format.
func writeMetrics(w io.Writer, m *sim.Metrics) error {
	families, err := m.Registry().Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "=== Metrics ===")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
