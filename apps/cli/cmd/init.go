package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config",
	Long: `Write an example config to the --config path (default .apictl.yaml)
with two contexts, a login request, a request chaining the login token and
a test tying them together.

Examples:
  apictl init
  apictl init --force
  apictl init --config api.yaml`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config")
}

func initCommand(cmd *cobra.Command, args []string) error {
	if err := config.WriteExample(configFlag, forceInit); err != nil {
		return configError(fmt.Errorf("%w (use --force to overwrite)", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFlag)
	return nil
}
