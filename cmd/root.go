package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sim "github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/provision"
)

var (
	// CLI flags for the simulation run
	scenarioPath  string  // Path to the scenario YAML file
	algorithm     string  // Provisioning algorithm (rt-csp or rt-csp+)
	alpha         float64 // Weight of local resources in the node score
	beta          float64 // Weight of global resources in the node score
	epsilon       float64 // Small constant guarding divisions in the ranking
	kPaths        int     // Number of candidate paths per slice link
	maxTime       float64 // Virtual time bound (0 = run to queue exhaustion)
	snapshotEvery int     // Events between metric snapshots
	logLevel      string  // Log verbosity level
	outputPath    string  // Where to write the YAML results (empty = stdout)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "slice-sim",
	Short: "Discrete-event simulator for network slice provisioning",
}

// newProvisioner maps the --algorithm flag to a configured provisioner.
func newProvisioner(name string) (*provision.Provisioner, error) {
	cfg := provision.Config{Alpha: alpha, Beta: beta, Epsilon: epsilon, K: kPaths}
	switch name {
	case "rt-csp":
		return provision.New(cfg), nil
	case "rt-csp+":
		cfg.UseMinMax = true
		return provision.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q (want rt-csp or rt-csp+)", name)
	}
}

func writeResults(results any) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return err
	}
	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func loadScenarioOrDie() *Scenario {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	sc, err := LoadScenario(scenarioPath)
	if err != nil {
		logrus.Fatalf("unable to load scenario: %v", err)
	}
	return sc
}

// simulate builds a fresh simulator for the scenario and runs it to
// completion under the named algorithm. Slice requests carry lifecycle
// state, so every run gets a freshly built set.
func simulate(sc *Scenario, algoName string) sim.Results {
	pn, err := sc.BuildNetwork()
	if err != nil {
		logrus.Fatalf("invalid substrate network: %v", err)
	}
	reqs, err := sc.BuildRequests()
	if err != nil {
		logrus.Fatalf("invalid slice request: %v", err)
	}
	algo, err := newProvisioner(algoName)
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	s := sim.NewSimulator(pn, algo)
	s.MaxTime = maxTime
	if snapshotEvery > 0 {
		s.SnapshotEvery = snapshotEvery
	}
	s.AddRequests(reqs)

	logrus.Infof("Loaded scenario %q: %d substrate nodes, %d requests", sc.Name, pn.NumNodes(), len(reqs))
	return s.Run()
}

// runCmd executes one simulation with the configured algorithm.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the slice provisioning simulation",
	Run: func(cmd *cobra.Command, args []string) {
		sc := loadScenarioOrDie()
		results := simulate(sc, algorithm)
		if err := writeResults(results); err != nil {
			logrus.Fatalf("unable to write results: %v", err)
		}
	},
}

// compareCmd runs the same scenario under RT-CSP and RT-CSP+ back to back
// and reports both results.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the scenario under both algorithms and report both results",
	Run: func(cmd *cobra.Command, args []string) {
		sc := loadScenarioOrDie()
		var all []sim.Results
		for _, name := range []string{"rt-csp", "rt-csp+"} {
			all = append(all, simulate(sc, name))
		}
		if err := writeResults(all); err != nil {
			logrus.Fatalf("unable to write results: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, compareCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
		c.Flags().Float64Var(&alpha, "alpha", 0.5, "Weight of local resources in the node score")
		c.Flags().Float64Var(&beta, "beta", 0.5, "Weight of global resources in the node score")
		c.Flags().Float64Var(&epsilon, "epsilon", 1e-5, "Small constant guarding divisions in the ranking")
		c.Flags().IntVar(&kPaths, "k", 3, "Number of candidate paths per slice link")
		c.Flags().Float64Var(&maxTime, "max-time", 0, "Virtual time bound (0 = run to queue exhaustion)")
		c.Flags().IntVar(&snapshotEvery, "snapshot-every", 100, "Events between metric snapshots")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&outputPath, "output", "", "Write YAML results to this file (default stdout)")
		_ = c.MarkFlagRequired("scenario")
	}
	runCmd.Flags().StringVar(&algorithm, "algorithm", "rt-csp", "Provisioning algorithm (rt-csp or rt-csp+)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
