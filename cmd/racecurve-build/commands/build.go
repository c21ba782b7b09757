package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/racecurve/internal/build"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write <out>/data/<dataset>.json, <dataset>-pareto.json and all-time.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			report, err := c.app.Build(cmd.Context(), build.BuildOptions{Out: out})
			if err != nil {
				return err
			}
			for _, f := range report.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "build", "Output directory")
	return cmd
}
