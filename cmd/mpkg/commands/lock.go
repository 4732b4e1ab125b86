package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mpkg/internal/ui/report"
)

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve the dependency graph and write Move.lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.Lock(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			return report.Lock(cmd.OutOrStdout(), res.Lock, res.Changed)
		},
	}
	cmd.Flags().BoolP("dev", "d", false, "Resolve in development mode")
	return cmd
}
