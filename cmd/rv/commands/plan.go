package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"go.rv.dev/rv/internal/core/domain"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the actions a sync would take, without executing them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, _, err := c.app.Plan(cmd.Context(), project(cmd))
			if err != nil {
				return err
			}
			return renderPlan(cmd, plan, jsonRequested(cmd))
		},
	}
}

type planEntryJSON struct {
	Name   string `json:"name"`
	Action string `json:"action"`
	Version string `json:"version,omitempty"`
}

func renderPlan(cmd *cobra.Command, plan *domain.Plan, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		entries := make([]planEntryJSON, 0, len(plan.Actions))
		for _, a := range plan.Actions {
			e := planEntryJSON{Name: a.Name.String(), Action: a.Kind.String()}
			if a.Kind == domain.ActionInstall {
				e.Version = a.Node.Version.String()
			}
			entries = append(entries, e)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, a := range plan.Actions {
		switch a.Kind {
		case domain.ActionInstall:
			fmt.Fprintf(out, "install %s %s\n", a.Name, a.Node.Version)
		default:
			fmt.Fprintf(out, "%s %s\n", a.Kind, a.Name)
		}
	}
	fmt.Fprintf(out, "%d to install, %d to remove\n", plan.InstallCount(), plan.RemoveCount())
	return nil
}
