package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/core/runner"
	"github.com/abdul-hamid-achik/apictl/packages/output"
	"github.com/abdul-hamid-achik/apictl/packages/results"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List, describe and run tests",
}

var testsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured tests",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  testsListCommand,
}

var testsDescribeCmd = &cobra.Command{
	Use:   "describe <name>...",
	Short: "Print the steps and asserts of tests",
	Args:  usageArgs(cobra.MinimumNArgs(1)),
	RunE:  testsDescribeCommand,
}

var testsRunCmd = &cobra.Command{
	Use:   "run [name|pattern]...",
	Short: "Run tests and show their results",
	Long: `Run tests in order, redrawing the results tree as each assert completes.

Names may end or start with '*' to select every matching test. With no
arguments every test runs.

Examples:
  apictl tests run
  apictl tests run -c staging auth
  apictl tests run 'users*' --report junit --report-file report.xml
  apictl tests run --watch`,
	RunE: testsRunCommand,
}

var (
	testsListFormatFlag string
	testsListFileFlag   string
	testsContextsFlag   []string
	testsVerboseFlag    bool
	testsReportFlag     string
	testsReportFileFlag string
	testsJUnitFlag      string
	testsWatchFlag      bool
)

func init() {
	addListFlags(testsListCmd, &testsListFormatFlag, &testsListFileFlag, output.ListTable)

	testsRunCmd.Flags().StringArrayVarP(&testsContextsFlag, "context", "c", nil, "Context to apply, may be repeated; later contexts win")
	testsRunCmd.Flags().BoolVarP(&testsVerboseFlag, "verbose", "v", false, "Show failure reasons")
	testsRunCmd.Flags().StringVarP(&testsReportFlag, "report", "r", getEnvString("APICTL_REPORT", string(output.ReportConsole)), "Report format (console|json|junit|tap) (env: APICTL_REPORT)")
	testsRunCmd.Flags().StringVar(&testsReportFileFlag, "report-file", "", "Write the report to a file")
	testsRunCmd.Flags().StringVar(&testsJUnitFlag, "junit", "", "Also write a JUnit XML report to this file")
	testsRunCmd.Flags().BoolVarP(&testsWatchFlag, "watch", "w", false, "Re-run tests when the config changes")

	testsRunCmd.ValidArgsFunction = completeNames(testNames)
	testsDescribeCmd.ValidArgsFunction = completeNames(testNames)
	testsCmd.AddCommand(testsListCmd)
	testsCmd.AddCommand(testsDescribeCmd)
	testsCmd.AddCommand(testsRunCmd)
}

func testsListCommand(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	t := output.NewTable("tests", "Name", "Steps", "Description")
	for _, name := range ws.config.Tests.Names() {
		test := ws.config.Tests[name]
		t.Append(name, fmt.Sprint(len(test.Steps)), test.Description)
	}
	return writeTable(cmd, t, testsListFormatFlag, testsListFileFlag)
}

func testsDescribeCommand(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	names, err := ws.config.Tests.Expand(args)
	if err != nil {
		return configError(err)
	}
	for _, name := range names {
		fmt.Fprint(cmd.OutOrStdout(), ws.config.Tests[name].Describe(name))
	}
	return nil
}

func testsRunCommand(cmd *cobra.Command, args []string) error {
	report, err := output.ParseReportFormat(testsReportFlag)
	if err != nil {
		return usageError(err)
	}

	if testsWatchFlag {
		return watchTests(cmd, args, report)
	}

	anyFailed, err := runTests(cmd, args, report)
	if err != nil {
		return err
	}
	if anyFailed {
		return testFailure()
	}
	return nil
}

// runTests loads the workspace afresh, runs the tests matched by patterns
// and writes the requested reports. It reports whether any test failed.
func runTests(cmd *cobra.Command, patterns []string, report output.ReportFormat) (bool, error) {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return false, err
	}
	vars, err := ws.context(testsContextsFlag)
	if err != nil {
		return false, err
	}

	opts := []runner.Option{
		runner.WithClient(ws.client()),
		runner.WithContext(vars),
		runner.WithResponses(ws.responses),
		runner.WithLogger(ws.logger),
		runner.WithBaseDir(ws.baseDir),
	}
	// A machine readable report on stdout replaces the tree.
	if report == output.ReportConsole || testsReportFileFlag != "" {
		opts = append(opts, runner.WithPrinter(results.NewPrinter(
			results.WithWriter(cmd.OutOrStdout()),
			results.WithVerbose(testsVerboseFlag),
			results.WithNoColor(noColorFlag),
		)))
	}

	start := time.Now()
	r := runner.NewRunner(ws.config.Requests, ws.config.Tests, opts...)
	root, err := r.Run(cmd.Context(), patterns)
	if err != nil {
		if root == nil {
			return false, configError(err)
		}
		return false, err
	}
	total := time.Since(start)

	reportWriter, closeReport, err := openOutput(cmd, testsReportFileFlag)
	if err != nil {
		return false, err
	}
	if err := newReportFormatter(report, reportWriter).Format(root, total); err != nil {
		closeReport()
		return false, err
	}
	if err := closeReport(); err != nil {
		return false, fmt.Errorf("cannot write report: %w", err)
	}
	if testsJUnitFlag != "" {
		if err := writeJUnit(testsJUnitFlag, root, total); err != nil {
			return false, err
		}
	}

	return root.Failed(), nil
}

func newReportFormatter(format output.ReportFormat, w io.Writer) output.Formatter {
	switch format {
	case output.ReportJSON:
		return output.NewJSONFormatter(output.JSONWithWriter(w))
	case output.ReportJUnit:
		return output.NewJUnitFormatter(output.JUnitWithWriter(w))
	case output.ReportTAP:
		return output.NewTAPFormatter(output.TAPWithWriter(w))
	default:
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(testsVerboseFlag),
			output.WithNoColor(noColorFlag || testsReportFileFlag != ""),
		)
	}
}

func writeJUnit(path string, root *results.Node, total time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create junit report: %w", err)
	}
	if err := output.NewJUnitFormatter(output.JUnitWithWriter(f)).Format(root, total); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
