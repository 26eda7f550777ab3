package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/r04nx/soft-CAC/sim/cac"
	"github.com/r04nx/soft-CAC/sim/observe"
	"github.com/r04nx/soft-CAC/sim/scenario"
	"github.com/r04nx/soft-CAC/sim/trace"
)

var (
	// CLI flags for the scenario run
	scenarioPath     string  // Scenario YAML; empty runs the reference mix
	configPath       string  // Engine config YAML applied to every access point
	seed             int64   // Seed for traffic generation
	horizon          float64 // Simulated seconds
	logLevel         string  // Log verbosity level
	resultsPath      string  // JSON results file
	admissionCSVPath string  // Admission log CSV
	traceLevel       string  // Decision trace level
	metricsAddr      string  // Prometheus listen address

	// Engine overrides, applied only when the flag is set
	policy        string  // Admission policy name
	threshold     float64 // Uniform utilization ceiling
	softPreset    bool    // Per-class soft ceilings
	channelWidth  int     // Channel width in MHz
	spatialStream int     // Number of spatial streams
	guardInterval int     // Guard interval in ns
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "soft-cac",
	Short: "Airtime-based call admission control for 802.11ax access points",
}

// runCmd drives the admission engines with a simulated traffic scenario
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an admission control scenario",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, decisions", traceLevel)
		}

		spec, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		overlay, err := buildOverlay(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		opts := []scenario.RunnerOption{scenario.WithOverlay(overlay)}
		if dt := trace.NewDecisionTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)}); dt != nil {
			opts = append(opts, scenario.WithTrace(dt))
		}
		var server *metricsServer
		if metricsAddr != "" {
			reg := prometheus.NewRegistry()
			opts = append(opts, scenario.WithObserver(observe.NewPromObserver(reg)))
			server = startMetricsServer(metricsAddr, reg)
		}

		runner, err := scenario.NewRunner(spec, opts...)
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		startTime := time.Now()
		res := runner.Run()
		logrus.Infof("Scenario finished in %s", time.Since(startTime))
		res.Print(cmd.OutOrStdout())

		if resultsPath != "" {
			if err := res.SaveResults(resultsPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		if admissionCSVPath != "" {
			if err := writeAdmissionCSV(res, admissionCSVPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}

		if server != nil {
			logrus.Infof("Serving final metrics on %s; interrupt to exit", metricsAddr)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			<-ctx.Done()
			stop()
			server.shutdown()
		}
		logrus.Info("Simulation complete.")
	},
}

// loadScenario reads --scenario (or the reference mix) and applies the
// --seed and --horizon overrides when those flags are set.
func loadScenario(cmd *cobra.Command) (*scenario.Spec, error) {
	spec := scenario.DefaultSpec()
	if scenarioPath != "" {
		loaded, err := scenario.LoadSpec(scenarioPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}
	if cmd.Flags().Changed("seed") {
		spec.Seed = seed
	}
	if cmd.Flags().Changed("horizon") {
		spec.HorizonS = horizon
	}
	return spec, nil
}

// buildOverlay merges --config with the engine flags that were explicitly set.
// Flags win over the file.
func buildOverlay(cmd *cobra.Command) (*cac.Bundle, error) {
	overlay := &cac.Bundle{}
	if configPath != "" {
		b, err := cac.LoadBundle(configPath)
		if err != nil {
			return nil, err
		}
		overlay = b
	}
	flags := cmd.Flags()
	if flags.Changed("policy") {
		overlay.Policy = policy
	}
	if softPreset {
		soft := cac.SoftThresholds()
		overlay.Thresholds.All = nil
		overlay.Thresholds.Voice = &soft[cac.Voice]
		overlay.Thresholds.Video = &soft[cac.Video]
		overlay.Thresholds.Bursty = &soft[cac.Bursty]
		overlay.Thresholds.Background = &soft[cac.Background]
	}
	if flags.Changed("threshold") {
		overlay.Thresholds = cac.ThresholdsBundle{All: &threshold}
	}
	if flags.Changed("channel-width") {
		overlay.Phy.ChannelWidthMHz = &channelWidth
	}
	if flags.Changed("nss") {
		overlay.Phy.SpatialStreams = &spatialStream
	}
	if flags.Changed("guard-interval") {
		overlay.Phy.GuardIntervalNs = &guardInterval
	}
	if err := overlay.Validate(); err != nil {
		return nil, err
	}
	return overlay, nil
}

func writeAdmissionCSV(res *scenario.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := res.WriteAdmissionCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	logrus.Infof("Admission log written to %s", path)
	return f.Close()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file (default: built-in reference mix)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Engine config YAML applied to every access point")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for traffic generation (overrides scenario seed)")
	runCmd.Flags().Float64Var(&horizon, "horizon", 60, "Simulated seconds (overrides scenario horizon)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Write JSON results to this file")
	runCmd.Flags().StringVar(&admissionCSVPath, "admission-csv", "", "Write the admission log as CSV to this file")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9100)")

	// Engine overrides
	runCmd.Flags().StringVar(&policy, "policy", "static", "Admission policy (static, adaptive)")
	runCmd.Flags().Float64Var(&threshold, "threshold", 0.80, "Utilization ceiling for every class")
	runCmd.Flags().BoolVar(&softPreset, "soft", false, "Use per-class soft ceilings (voice 0.90, video 0.80, bursty 0.95, background 0.80)")
	runCmd.Flags().IntVar(&channelWidth, "channel-width", 80, "Channel width in MHz (20, 40, 80, 160)")
	runCmd.Flags().IntVar(&spatialStream, "nss", 2, "Number of spatial streams")
	runCmd.Flags().IntVar(&guardInterval, "guard-interval", 800, "Guard interval in ns")
	runCmd.MarkFlagsMutuallyExclusive("soft", "threshold")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(airtimeCmd)
	rootCmd.AddCommand(erlangCmd)
}
