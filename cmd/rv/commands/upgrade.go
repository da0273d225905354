package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Re-resolve every dependency against current repositories, ignoring the lockfile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parallelism, _ := cmd.Flags().GetInt("parallelism")
			report, _, err := c.app.Upgrade(cmd.Context(), project(cmd), parallelism)
			if err != nil {
				return err
			}
			return renderSyncReport(cmd, report, jsonRequested(cmd))
		},
	}
	cmd.Flags().Int("parallelism", 0, "Maximum number of concurrent installs (0 lets the engine choose)")
	return cmd
}
