package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the disk cache",
	}
	cmd.AddCommand(c.newCacheRootCmd(), c.newCacheClearCmd())
	return cmd
}

func (c *CLI) newCacheRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "root",
		Short: "Print the disk cache's root directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.app.CacheRoot())
			return nil
		},
	}
}

func (c *CLI) newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from the disk cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.ClearCache()
		},
	}
}
