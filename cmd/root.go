package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/scale-contest/scale-eval/sim"
	"github.com/scale-contest/scale-eval/sim/replay"
)

var (
	// CLI flags for the engine configuration
	logLevel            string // Log verbosity level
	policyName          string // Dispatch policy selector
	gracePeriod         int64  // Grace period after the first event (seconds)
	seed                int64  // Seed for the randomized dispatch policy
	admitBeforeDispatch bool   // Launch-command ordering variant

	// CLI flags for reporting
	showMetrics bool   // Print the metrics block after the result
	testCaseID  int    // Test case id for tier classification
	tiersFile   string // Optional YAML tier table overriding the built-in classification
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "scale-eval",
	Short: "Discrete-event evaluator for the cloud-autoscaling contest",
}

// evaluateCmd replays a submission log and prints the billed total
// (or -1 on disqualification, with exit status 1).
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [logfile]",
	Short: "Replay a submission log and print the billed machine-hours",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		in, closeIn := openInput(args)
		defer closeIn()

		result, metrics, err := evaluateStream(in)
		if err != nil {
			logrus.Fatalf("evaluation failed: %v", err)
		}
		fmt.Println(result.Sentinel())
		if showMetrics {
			metrics.Print()
		}
		if result.Disqualified {
			os.Exit(1)
		}
	},
}

// scoreCmd evaluates a submission and prints the scoring front end's two
// lines: the score and the space-separated per-test-case validity flags.
var scoreCmd = &cobra.Command{
	Use:   "score <submission.log>",
	Short: "Evaluate a submission and print its score and validity flags",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		in, closeIn := openInput(args)
		defer closeIn()

		result, _, err := evaluateStream(in)
		if err != nil {
			logrus.Fatalf("evaluation failed: %v", err)
		}

		tier := sim.ClassifyTestCase(testCaseID)
		if tiersFile != "" {
			table, err := LoadTierTable(tiersFile)
			if err != nil {
				logrus.Fatalf("could not load tier table: %v", err)
			}
			tier = table.Classify(testCaseID)
		}

		score := 0.0
		flags := []string{"0"}
		if !result.Disqualified {
			score = sim.Score(float64(result.BilledUnits), tier)
			flags = []string{"1"}
		}
		fmt.Printf("%g\n", score)
		fmt.Println(strings.Join(flags, " "))
		if result.Disqualified {
			os.Exit(1)
		}
	},
}

// setupLogging applies the --log flag to the process-wide logrus level.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
}

// openInput returns the submission log reader: the named file, or stdin
// when no argument was given.
func openInput(args []string) (io.Reader, func()) {
	if len(args) == 0 {
		return os.Stdin, func() {}
	}
	f, err := os.Open(args[0])
	if err != nil {
		logrus.Fatalf("could not open log: %v", err)
	}
	return f, func() { f.Close() }
}

// engineConfig builds the engine configuration from the CLI flags.
func engineConfig() sim.EngineConfig {
	cfg := sim.DefaultEngineConfig()
	cfg.Policy = policyName
	cfg.GracePeriod = gracePeriod
	cfg.Seed = seed
	cfg.AdmitBeforeDispatch = admitBeforeDispatch
	return cfg
}

// evaluateStream feeds the log through the engine one event at a time,
// stopping early on disqualification, and drains.
func evaluateStream(r io.Reader) (sim.Result, *sim.Metrics, error) {
	state, err := sim.NewState(engineConfig(), logrus.StandardLogger(), nil)
	if err != nil {
		return sim.Result{}, nil, err
	}
	reader := replay.NewLogReader(r)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sim.Result{}, nil, err
		}
		state.Receive(ev)
		if state.Disqualified() {
			break
		}
	}
	return state.Evaluate(), state.Metrics(), nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&policyName, "policy", sim.PolicyBestFit, "Dispatch policy (best-fit, random-first-fit)")
	rootCmd.PersistentFlags().Int64Var(&gracePeriod, "grace-period", sim.DefaultGracePeriod, "Grace period after the first event (seconds)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for the randomized dispatch policy")
	rootCmd.PersistentFlags().BoolVar(&admitBeforeDispatch, "admit-before-dispatch", false, "Admit a launched machine before the dispatch pass on its launch command")

	evaluateCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print evaluation metrics after the result")

	scoreCmd.Flags().IntVar(&testCaseID, "test-case", 3, "Test case id used for tier classification")
	scoreCmd.Flags().StringVar(&tiersFile, "tiers", "", "YAML tier table overriding the built-in test case classification")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(scoreCmd)
}
