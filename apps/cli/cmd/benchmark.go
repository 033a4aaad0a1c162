package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/benchmark"
	"github.com/abdul-hamid-achik/apictl/packages/export/metrics"
	"github.com/abdul-hamid-achik/apictl/packages/history"
	"github.com/abdul-hamid-achik/apictl/packages/output"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <request>...",
	Short: "Benchmark a sequence of requests",
	Long: `Run a sequence of requests many times across concurrent workers and
report latency statistics, percentiles and a histogram.

Each iteration sends every named request in order. Failed requests are
counted as errors and left out of the latency figures.

Examples:
  apictl benchmark me
  apictl benchmark -n 1000 -p 32 login me
  apictl benchmark -n 500 --rate 50 --ramp-up 10s me
  apictl benchmark me --thresholds "p95<200ms,errors<1%"
  apictl benchmark me --metrics prometheus --metrics-file apictl.prom --history`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: benchmarkCommand,
}

var (
	benchContextsFlag    []string
	benchIterationsFlag  int
	benchWorkersFlag     int
	benchBucketsFlag     int
	benchRateFlag        float64
	benchRampUpFlag      time.Duration
	benchThresholdsFlag  string
	benchJSONFlag        bool
	benchXLSXFlag        string
	benchMetricsFlag     string
	benchMetricsFileFlag string
	benchHistoryFlag     bool
	benchNoProgressFlag  bool
)

func init() {
	defaults := benchmark.DefaultConfig()
	flags := benchmarkCmd.Flags()
	flags.StringArrayVarP(&benchContextsFlag, "context", "c", nil, "Context to apply, may be repeated; later contexts win")
	flags.IntVarP(&benchIterationsFlag, "iterations", "n", getEnvInt("APICTL_ITERATIONS", defaults.Iterations), "Number of iterations (env: APICTL_ITERATIONS)")
	flags.IntVarP(&benchWorkersFlag, "workers", "p", getEnvInt("APICTL_WORKERS", defaults.Workers), "Number of concurrent workers (env: APICTL_WORKERS)")
	flags.IntVar(&benchBucketsFlag, "buckets", defaults.Buckets, "Number of latency histogram buckets")
	flags.Float64Var(&benchRateFlag, "rate", getEnvFloat("APICTL_RATE", 0), "Maximum iterations per second, 0 for unlimited (env: APICTL_RATE)")
	flags.DurationVar(&benchRampUpFlag, "ramp-up", 0, "Time to ramp up to --rate")
	flags.StringVar(&benchThresholdsFlag, "thresholds", "", "Pass/fail thresholds (e.g., \"p95<200ms,errors<1%,rps>50\")")
	flags.BoolVar(&benchJSONFlag, "json", false, "Print the summary as JSON")
	flags.StringVar(&benchXLSXFlag, "xlsx", "", "Also write the statistics to an Excel workbook")
	flags.StringVar(&benchMetricsFlag, "metrics", "", "Export metrics (json|prometheus)")
	flags.StringVar(&benchMetricsFileFlag, "metrics-file", "", "Write exported metrics to a file instead of stdout")
	flags.BoolVar(&benchHistoryFlag, "history", getEnvBool("APICTL_HISTORY", false), "Record the run in the benchmark history (env: APICTL_HISTORY)")
	flags.BoolVar(&benchNoProgressFlag, "no-progress", false, "Disable the live progress display")

	benchmarkCmd.ValidArgsFunction = completeNames(requestNames)
	benchmarkCmd.AddCommand(benchmarkHistoryCmd)
}

func benchmarkCommand(cmd *cobra.Command, args []string) error {
	thresholds, err := benchmark.ParseThresholds(benchThresholdsFlag)
	if err != nil {
		return usageError(err)
	}

	var exporter metrics.Exporter
	if benchMetricsFlag != "" {
		kind, err := metrics.ParseKind(benchMetricsFlag)
		if err != nil {
			return usageError(err)
		}
		exporter, err = metrics.NewExporter(kind, benchMetricsFileFlag, cmd.OutOrStdout())
		if err != nil {
			return usageError(err)
		}
		defer exporter.Close()
	}

	cfg := &benchmark.Config{
		Requests:   args,
		Workers:    benchWorkersFlag,
		Iterations: benchIterationsFlag,
		Buckets:    benchBucketsFlag,
		Rate:       benchRateFlag,
		RampUp:     benchRampUpFlag,
		Thresholds: thresholds,
	}
	if err := cfg.Validate(); err != nil {
		return usageError(err)
	}

	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	for _, name := range args {
		if _, err := ws.config.Requests.Get(name); err != nil {
			return configError(err)
		}
	}
	vars, err := ws.context(benchContextsFlag)
	if err != nil {
		return err
	}

	// Machine readable output on stdout leaves no room for the live display.
	quiet := benchJSONFlag || (exporter != nil && benchMetricsFileFlag == "")
	reporter := benchmark.NewReporter(
		benchmark.WithWriter(cmd.OutOrStdout()),
		benchmark.WithNoColor(noColorFlag),
		benchmark.WithNoProgress(benchNoProgressFlag || quiet),
	)
	if !quiet {
		reporter.Header(cfg)
	}

	r := benchmark.NewRunner(cfg, ws.config.Requests,
		benchmark.WithClient(ws.client()),
		benchmark.WithContext(vars),
		benchmark.WithResponses(ws.responses),
		benchmark.WithReporter(reporter),
		benchmark.WithLogger(ws.logger),
		benchmark.WithBaseDir(ws.baseDir),
	)

	stats, runErr := r.Run(cmd.Context())
	if stats == nil {
		return runErr
	}

	thresholdResults := thresholds.Evaluate(stats)
	switch {
	case benchJSONFlag:
		if err := reporter.JSONSummary(stats, thresholdResults); err != nil {
			return err
		}
	case !quiet:
		reporter.Summary(stats)
		reporter.Thresholds(thresholdResults)
	}

	if exporter != nil {
		if err := exporter.Export(stats); err != nil {
			return fmt.Errorf("exporting metrics: %w", err)
		}
	}
	if benchXLSXFlag != "" {
		if err := output.SaveWorkbook(benchXLSXFlag, output.BenchmarkTables(stats)...); err != nil {
			return err
		}
	}
	if benchHistoryFlag && runErr == nil {
		if err := recordHistory(cmd, ws, stats); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if !benchmark.AllPassed(thresholdResults) {
		return testFailure()
	}
	return nil
}

func recordHistory(cmd *cobra.Command, ws *workspace, stats *benchmark.Stats) error {
	store, err := history.Open(history.Path(ws.cacheDir))
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Save(cmd.Context(), stats)
	if err != nil {
		return err
	}
	ws.logger.Info("recorded benchmark", "id", run.ID)
	return nil
}

var benchmarkHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded benchmark runs",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  benchmarkHistoryCommand,
}

var benchmarkHistoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the summary of a recorded run",
	Long: `Print the summary of a recorded run. Any unique prefix of the run ID
is accepted.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: benchmarkHistoryShowCommand,
}

var benchmarkHistoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded run",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  benchmarkHistoryDeleteCommand,
}

var (
	historyFormatFlag string
	historyFileFlag   string
	historyLimitFlag  int
	historyJSONFlag   bool
)

func init() {
	addListFlags(benchmarkHistoryCmd, &historyFormatFlag, &historyFileFlag, output.ListTable)
	benchmarkHistoryCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of runs to list, 0 for all")
	benchmarkHistoryShowCmd.Flags().BoolVar(&historyJSONFlag, "json", false, "Print the summary as JSON")

	benchmarkHistoryCmd.AddCommand(benchmarkHistoryShowCmd)
	benchmarkHistoryCmd.AddCommand(benchmarkHistoryDeleteCmd)
}

func openHistory() (*history.Store, error) {
	return history.Open(history.Path(cacheFlag))
}

func benchmarkHistoryCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}

	t := output.NewTable("history", "ID", "Started", "Requests", "Iterations", "Errors", "Throughput", "p50", "p95", "p99")
	for _, run := range runs {
		s := run.Stats
		t.Append(
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			strings.Join(s.Requests, ","),
			strconv.Itoa(s.Iterations),
			strconv.Itoa(s.Errors),
			strconv.FormatFloat(s.Throughput, 'f', 1, 64),
			s.Percentile(50).String(),
			s.Percentile(95).String(),
			s.Percentile(99).String(),
		)
	}
	return writeTable(cmd, t, historyFormatFlag, historyFileFlag)
}

func benchmarkHistoryShowCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return historyError(err)
	}

	reporter := benchmark.NewReporter(
		benchmark.WithWriter(cmd.OutOrStdout()),
		benchmark.WithNoColor(noColorFlag),
		benchmark.WithNoProgress(true),
	)
	if historyJSONFlag {
		return reporter.JSONSummary(run.Stats, nil)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s at %s\n", run.ID, run.StartedAt.Local().Format(time.DateTime))
	reporter.Summary(run.Stats)
	return nil
}

func benchmarkHistoryDeleteCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return historyError(err)
	}
	if err := store.Delete(cmd.Context(), run.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", run.ID)
	return nil
}

func historyError(err error) error {
	if errors.Is(err, history.ErrRunNotFound) {
		return usageError(err)
	}
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
