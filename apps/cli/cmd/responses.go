package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/output"
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Inspect saved responses",
}

var responsesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List responses saved in the cache",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  responsesListCommand,
}

var responsesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved response",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  responsesShowCommand,
}

var (
	responsesFormatFlag string
	responsesFileFlag   string
)

func init() {
	addListFlags(responsesListCmd, &responsesFormatFlag, &responsesFileFlag, output.ListTSV)
	responsesCmd.AddCommand(responsesListCmd)
	responsesCmd.AddCommand(responsesShowCmd)
}

func responsesListCommand(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	t := output.NewTable("responses", "Name", "Status")
	for _, name := range ws.responses.Names() {
		resp, _ := ws.responses.Get(name)
		t.Append(name, strconv.Itoa(int(resp.StatusCode)))
	}
	return writeTable(cmd, t, responsesFormatFlag, responsesFileFlag)
}

func responsesShowCommand(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	resp, ok := ws.responses.Get(args[0])
	if !ok {
		return configError(fmt.Errorf("no saved response named %q", args[0]))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(resp.String(), "\n"))
	return nil
}
