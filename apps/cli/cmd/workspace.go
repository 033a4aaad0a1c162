package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/abdul-hamid-achik/apictl/packages/core/config"
	"github.com/abdul-hamid-achik/apictl/packages/core/env"
	"github.com/abdul-hamid-achik/apictl/packages/http"
	"github.com/abdul-hamid-achik/apictl/packages/output"
	"github.com/abdul-hamid-achik/apictl/packages/response"
)

// workspace is everything a command loads from --config and --cache.
type workspace struct {
	config    *config.Config
	baseDir   string
	cacheDir  string
	responses *response.Store
	logger    pslog.Logger
}

func loadWorkspace(cmd *cobra.Command) (*workspace, error) {
	logger := loggerFromCmd(cmd)

	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, configError(err)
	}
	logger.Debug("loaded config", "path", configFlag, "files", len(cfg.Files))
	for _, issue := range cfg.Validate() {
		if issue.Severity == config.SeverityWarning {
			logger.Warn("config warning", "location", issue.Location, "message", issue.Message)
		}
	}

	responses, err := config.LoadResponses(cacheFlag)
	if err != nil {
		return nil, fmt.Errorf("loading responses: %w", err)
	}

	return &workspace{
		config:    cfg,
		baseDir:   config.BaseDir(configFlag),
		cacheDir:  cacheFlag,
		responses: responses,
		logger:    logger,
	}, nil
}

// context merges the --env-file layer with the named contexts on top.
func (w *workspace) context(names []string) (env.Context, error) {
	base := env.Context{}
	if envFileFlag != "" {
		dotenv, err := env.LoadDotEnv(envFileFlag)
		if err != nil {
			return nil, configError(err)
		}
		base = dotenv
	}

	ctx, err := w.config.Context(base, names...)
	if err != nil {
		return nil, configError(err)
	}
	return ctx, nil
}

func (w *workspace) client() *http.Client {
	return http.NewClient(
		http.WithValidateSSL(!insecureFlag),
		http.WithProxy(proxyFlag),
		http.WithBaseDir(w.baseDir),
		http.WithLogger(w.logger),
	)
}

// openOutput returns stdout, or the file at path when it is set.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, f.Close, nil
}

// writeTable renders t in the format named by format, to path or stdout.
func writeTable(cmd *cobra.Command, t *output.Table, format, path string) error {
	f, err := output.ParseListFormat(format)
	if err != nil {
		return usageError(err)
	}
	w, closeFn, err := openOutput(cmd, path)
	if err != nil {
		return err
	}

	lister := output.NewLister(
		output.ListerWithWriter(w),
		output.ListerWithNoColor(noColorFlag || path != ""),
	)
	if err := lister.Write(t, f); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

// addListFlags registers -o and --output-file on a listing command.
func addListFlags(cmd *cobra.Command, format *string, path *string, defaultFormat output.ListFormat) {
	cmd.Flags().StringVarP(format, "output", "o", string(defaultFormat), "Output format (table|tsv|yaml|xlsx)")
	cmd.Flags().StringVar(path, "output-file", "", "Write output to a file instead of stdout")
}
