package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mpkg/internal/ui/report"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the root manifest without fetching dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := options(cmd)
			res, err := c.app.Check(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return report.Check(cmd.OutOrStdout(), res.Manifest, opts.Mode(), res.Dependencies)
		},
	}
	cmd.Flags().BoolP("dev", "d", false, "Check in development mode")
	return cmd
}
