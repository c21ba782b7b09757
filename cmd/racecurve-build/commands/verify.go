package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/racecurve/internal/build"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a running server's summaries against the aggregation invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url, _ := cmd.Flags().GetString("url")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			report, err := c.app.Verify(cmd.Context(), build.VerifyOptions{BaseURL: url, Timeout: timeout})
			for _, v := range report.Violations {
				fmt.Fprintln(cmd.ErrOrStderr(), v)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d datasets, %d entries\n", report.Datasets, report.Entries)
			return nil
		},
	}
	cmd.Flags().StringP("url", "u", "http://localhost:9080", "Base URL of the service")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	return cmd
}
