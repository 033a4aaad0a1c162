package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/core/config"
	"github.com/abdul-hamid-achik/apictl/packages/core/env"
	"github.com/abdul-hamid-achik/apictl/packages/output"
	"github.com/abdul-hamid-achik/apictl/packages/request"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List and run requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured requests",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  requestsListCommand,
}

var requestsRunCmd = &cobra.Command{
	Use:   "run <name>...",
	Short: "Send requests and print their responses",
	Long: `Send one or more requests in order and print each response body.

Every response is saved to the cache so later requests, tests and benchmarks
can reference it as ${response.<name>.<path>}.

Examples:
  apictl requests run login
  apictl requests run -c staging login me
  apictl requests run -v --no-save me`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: requestsRunCommand,
}

var (
	requestsListFormatFlag string
	requestsListFileFlag   string
	requestsContextsFlag   []string
	requestsVerboseFlag    bool
	requestsQuietFlag      bool
	requestsNoSaveFlag     bool
)

func init() {
	addListFlags(requestsListCmd, &requestsListFormatFlag, &requestsListFileFlag, output.ListTable)

	requestsRunCmd.Flags().StringArrayVarP(&requestsContextsFlag, "context", "c", nil, "Context to apply, may be repeated; later contexts win")
	requestsRunCmd.Flags().BoolVarP(&requestsVerboseFlag, "verbose", "v", false, "Print the status line and headers before the body")
	requestsRunCmd.Flags().BoolVarP(&requestsQuietFlag, "quiet", "q", false, "Print nothing")
	requestsRunCmd.Flags().BoolVar(&requestsNoSaveFlag, "no-save", getEnvBool("APICTL_NO_SAVE", false), "Do not save responses to the cache (env: APICTL_NO_SAVE)")
	requestsRunCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	requestsRunCmd.ValidArgsFunction = completeNames(requestNames)
	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsRunCmd)
}

func requestsListCommand(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	t := output.NewTable("requests", "Name", "Method", "URL", "Description")
	for _, name := range ws.config.Requests.Names() {
		r := ws.config.Requests[name]
		t.Append(name, r.Method, r.URL, r.Description)
	}
	return writeTable(cmd, t, requestsListFormatFlag, requestsListFileFlag)
}

func requestsRunCommand(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	templates := make([]*request.Template, len(args))
	for i, name := range args {
		t, err := ws.config.Requests.Get(name)
		if err != nil {
			return configError(err)
		}
		templates[i] = t
	}

	vars, err := ws.context(requestsContextsFlag)
	if err != nil {
		return err
	}

	client := ws.client()
	app := env.NewApplicator(vars, ws.responses)
	out := cmd.OutOrStdout()

	for i, name := range args {
		rendered := request.Render(templates[i], app)
		resp, err := client.Execute(cmd.Context(), rendered)
		if err != nil {
			return fmt.Errorf("request %s: %w", name, err)
		}
		app.AddResponse(name, resp)
		if !resp.IsSuccess() {
			ws.logger.Warn("unsuccessful response", "request", name, "status", resp.StatusCode)
		}

		if !requestsNoSaveFlag {
			if err := config.SaveResponse(ws.cacheDir, name, resp); err != nil {
				return err
			}
			ws.logger.Info("saved response", "request", name, "status", resp.StatusCode)
		}

		switch {
		case requestsQuietFlag:
		case requestsVerboseFlag:
			fmt.Fprintln(out, strings.TrimRight(resp.String(), "\n"))
		default:
			fmt.Fprintln(out, strings.TrimRight(resp.Body, "\n"))
		}
	}
	return nil
}
