package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"go.rv.dev/rv/internal/app"
	"go.rv.dev/rv/internal/core/domain"
)

func (c *CLI) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Install, remove, and keep packages to match the resolved manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parallelism, _ := cmd.Flags().GetInt("parallelism")
			report, _, err := c.app.Sync(cmd.Context(), project(cmd), app.SyncOptions{Parallelism: parallelism})
			if err != nil {
				return err
			}
			return renderSyncReport(cmd, report, jsonRequested(cmd))
		},
	}
	cmd.Flags().Int("parallelism", 0, "Maximum number of concurrent installs (0 lets the engine choose)")
	return cmd
}

type outcomeJSON struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`
}

func renderSyncReport(cmd *cobra.Command, report *domain.SyncReport, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		entries := make([]outcomeJSON, 0, len(report.Outcomes))
		for _, o := range report.Outcomes {
			e := outcomeJSON{Name: o.Name.String(), Kind: o.Kind.String()}
			if o.Err != nil {
				e.Error = o.Err.Error()
			}
			entries = append(entries, e)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, o := range report.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(out, "%s %s: %s\n", o.Kind, o.Name, o.Err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", o.Kind, o.Name)
	}
	fmt.Fprintf(out,
		"%d installed, %d failed, %d skipped, %d removed, %d kept, %d dependencies_only\n",
		report.CountByKind(domain.OutcomeInstalled),
		report.CountByKind(domain.OutcomeFailed),
		report.CountByKind(domain.OutcomeSkippedFailedDependency),
		report.CountByKind(domain.OutcomeRemoved),
		report.CountByKind(domain.OutcomeKept),
		report.CountByKind(domain.OutcomeDependenciesOnly),
	)
	return nil
}
