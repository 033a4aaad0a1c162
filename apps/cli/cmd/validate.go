package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/core/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config for errors without sending anything",
	Long: `Load the config and check it without sending any request.

Errors:
  - requests without a url or with an unsupported method
  - test steps naming undefined requests
  - asserts with missing values or regexes that do not compile

Warnings:
  - duplicate step names within a test
  - tests without steps

Examples:
  apictl validate
  apictl validate --config ./apictl.d/`,
	Args: usageArgs(cobra.NoArgs),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return configError(err)
	}

	issues := cfg.Validate()
	for _, issue := range issues {
		fmt.Fprintln(cmd.OutOrStdout(), issue)
	}

	if config.HasErrors(issues) {
		return configError(errors.New("validation failed"))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "valid: %d requests, %d tests, %d contexts\n",
		len(cfg.Requests), len(cfg.Tests), len(cfg.Contexts))
	return nil
}
