package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"go.rv.dev/rv/internal/core/domain"
)

func (c *CLI) newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Report each resolved package's version, source, and install status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.app.Summary(cmd.Context(), project(cmd))
			if err != nil {
				return err
			}
			return renderSummary(cmd, entries, jsonRequested(cmd))
		},
	}
}

type summaryEntryJSON struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Source    string `json:"source"`
	Origin    string `json:"origin,omitempty"`
	Installed bool   `json:"installed"`
}

func renderSummary(cmd *cobra.Command, entries []domain.SummaryEntry, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		rows := make([]summaryEntryJSON, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, summaryEntryJSON{
				Name: e.Name.String(), Version: e.Version.String(), Source: e.Source.String(),
				Origin: e.Origin, Installed: e.Installed,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	for _, e := range entries {
		status := "installed"
		if !e.Installed {
			status = "not installed"
		}
		fmt.Fprintf(out, "%s %s (%s, %s) [%s]\n", e.Name, e.Version, e.Source, e.Origin, status)
	}
	return nil
}
