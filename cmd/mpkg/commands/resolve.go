package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mpkg/internal/ui/report"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the dependency graph and print every package's addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := c.app.Resolve(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return report.GraphJSON(cmd.OutOrStdout(), g)
			}
			return report.Graph(cmd.OutOrStdout(), g)
		},
	}
	cmd.Flags().BoolP("dev", "d", false, "Resolve in development mode")
	cmd.Flags().Bool("json", false, "Print the graph as JSON")
	return cmd
}
