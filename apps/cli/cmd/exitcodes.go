package cmd

import (
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/core/config"
	"github.com/abdul-hamid-achik/apictl/packages/core/env"
	"github.com/abdul-hamid-achik/apictl/packages/core/runner"
	"github.com/abdul-hamid-achik/apictl/packages/http"
	"github.com/abdul-hamid-achik/apictl/packages/request"
)

// Exit codes for apictl CLI
const (
	// ExitSuccess indicates the command succeeded
	ExitSuccess = 0

	// ExitTestFailure indicates one or more tests or thresholds failed
	ExitTestFailure = 1

	// ExitConfigError indicates a missing or invalid configuration
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for err. A nil err exits without
// printing anything.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: ExitUsageError, err: err}
}

func configError(err error) error {
	return &exitError{code: ExitConfigError, err: err}
}

// testFailure reports test or threshold failures that were already printed.
func testFailure() error {
	return &exitError{code: ExitTestFailure}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	var netErr net.Error
	switch {
	case errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, config.ErrConfigExists),
		errors.Is(err, env.ErrContextNotFound),
		errors.Is(err, request.ErrNotFound),
		errors.Is(err, runner.ErrTestNotFound):
		return ExitConfigError
	case errors.Is(err, http.ErrUnsupportedMethod),
		errors.Is(err, http.ErrNonASCIIHeader),
		errors.As(err, &netErr):
		return ExitNetworkError
	}
	return ExitTestFailure
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
