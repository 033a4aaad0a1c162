package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/output"
)

var contextsCmd = &cobra.Command{
	Use:   "contexts",
	Short: "Inspect the configured contexts",
}

var contextsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List context names",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  contextsListCommand,
}

var (
	contextsFormatFlag string
	contextsFileFlag   string
)

func init() {
	addListFlags(contextsListCmd, &contextsFormatFlag, &contextsFileFlag, output.ListTSV)
	contextsCmd.AddCommand(contextsListCmd)
}

func contextsListCommand(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	t := output.NewTable("contexts", "Name")
	for _, name := range ws.config.ContextNames() {
		t.Append(name)
	}
	return writeTable(cmd, t, contextsFormatFlag, contextsFileFlag)
}
