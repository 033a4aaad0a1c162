package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/abdul-hamid-achik/apictl/packages/core/config"
	"github.com/abdul-hamid-achik/apictl/packages/http"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag     string
	cacheFlag      string
	envFileFlag    string
	logLevelFlag   string
	structuredFlag bool
	noColorFlag    bool
	insecureFlag   bool
	proxyFlag      string
)

var rootCmd = &cobra.Command{
	Use:   "apictl",
	Short: "Run HTTP requests and tests described in YAML",
	Long: `apictl sends HTTP requests described in a YAML config file, chains
them into tests with assertions and benchmarks them.

Requests may reference context variables as ${name} and values from earlier
responses as ${response.<request>.<path>}.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(structuredFlag, logLevelFlag, cmd.Flags().Changed("log-level"), cmd.ErrOrStderr())
		if err != nil {
			return usageError(err)
		}
		if proxyFlag != "" {
			if _, err := http.ParseProxy(proxyFlag); err != nil {
				return usageError(err)
			}
		}
		cmd.SetContext(pslog.ContextWithLogger(cmd.Context(), logger))
		return nil
	},
}

// Execute runs the root command and exits with the code matching the
// returned error. SIGINT and SIGTERM cancel the command's context.
func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) || ee.err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", getEnvString("APICTL_CONFIG", config.DefaultPath), "Config file or directory (env: APICTL_CONFIG)")
	flags.StringVar(&cacheFlag, "cache", getEnvString("APICTL_CACHE", config.DefaultCacheDir), "Directory for saved responses and benchmark history (env: APICTL_CACHE)")
	flags.StringVar(&envFileFlag, "env-file", getEnvString("APICTL_ENV_FILE", ""), "Dotenv file loaded below the selected contexts (env: APICTL_ENV_FILE)")
	flags.StringVar(&logLevelFlag, "log-level", "warn", "Log level (trace|debug|info|warn|error)")
	flags.BoolVar(&structuredFlag, "structured", getEnvBool("APICTL_STRUCTURED", false), "Emit structured JSON logs (env: APICTL_STRUCTURED)")
	flags.BoolVar(&noColorFlag, "no-color", getEnvBool("NO_COLOR", false), "Disable colored output (env: NO_COLOR)")
	flags.BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("APICTL_INSECURE", false), "Disable SSL certificate validation (env: APICTL_INSECURE)")
	flags.StringVar(&proxyFlag, "proxy", getEnvString("APICTL_PROXY", ""), "Proxy URL for HTTP requests (env: APICTL_PROXY)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(contextsCmd)
	rootCmd.AddCommand(responsesCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the stderr logger. An explicit --log-level wins over
// LOG_LEVEL, which wins over the flag default.
func newLogger(structured bool, level string, flagSet bool, w io.Writer) (pslog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	opts := pslog.Options{}
	if structured {
		opts.Mode = pslog.ModeStructured
	}
	logger := pslog.NewWithOptions(w, opts).LogLevel(pslog.WarnLevel)

	if flagSet {
		if lvl, ok := pslog.ParseLevel(level); ok {
			return logger.LogLevel(lvl), nil
		}
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	if lvl, ok := pslog.LevelFromEnv("LOG_LEVEL"); ok {
		return logger.LogLevel(lvl), nil
	}
	if lvl, ok := pslog.ParseLevel(level); ok {
		return logger.LogLevel(lvl), nil
	}
	return logger, nil
}

func loggerFromCmd(cmd *cobra.Command) pslog.Logger {
	if ctx := cmd.Context(); ctx != nil {
		if logger := pslog.LoggerFromContext(ctx); logger != nil {
			return logger
		}
	}
	// Commands executed directly, as in tests, skip PersistentPreRunE.
	logger, err := newLogger(structuredFlag, logLevelFlag, false, cmd.ErrOrStderr())
	if err != nil {
		return pslog.NewWithOptions(cmd.ErrOrStderr(), pslog.Options{}).LogLevel(pslog.WarnLevel)
	}
	return logger
}
