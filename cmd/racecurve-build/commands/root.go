// Package commands implements the CLI commands for racecurve-build.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/racecurve/internal/build"
	"github.com/okian/racecurve/pkg/logger"
)

// CLI represents the command line interface for racecurve-build.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the build and verify logic.
type Application interface {
	Build(ctx context.Context, opts build.BuildOptions) (build.Report, error)
	Verify(ctx context.Context, opts build.VerifyOptions) (build.VerifyReport, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "racecurve-build",
		Short:         "Render race summaries to static JSON and verify a running server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return logger.SetLevelString(level)
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newVerifyCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
