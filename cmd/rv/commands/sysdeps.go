package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func (c *CLI) newSysDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sysdeps",
		Short: "Print the system package names each resolved package's dependency hints map to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			osName, _ := cmd.Flags().GetString("os")
			osVersion, _ := cmd.Flags().GetString("os-version")
			hints, err := c.app.SysDepHints(cmd.Context(), project(cmd), osName, osVersion)
			if err != nil {
				return err
			}
			return renderSysDeps(cmd, hints, jsonRequested(cmd))
		},
	}
	cmd.Flags().String("os", "ubuntu", "Target distribution name used to resolve system package names")
	cmd.Flags().String("os-version", "22.04", "Target distribution version used to resolve system package names")
	return cmd
}

func renderSysDeps(cmd *cobra.Command, hints map[string][]string, asJSON bool) error {
	out := cmd.OutOrStdout()
	names := make([]string, 0, len(hints))
	for name := range hints {
		names = append(names, name)
	}
	sort.Strings(names)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hints)
	}

	for _, name := range names {
		fmt.Fprintf(out, "%s: %s\n", name, hints[name])
	}
	return nil
}
