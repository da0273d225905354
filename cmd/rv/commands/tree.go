package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"go.rv.dev/rv/internal/core/domain"
)

func (c *CLI) newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the resolved dependency graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolution, _, err := c.app.Tree(cmd.Context(), project(cmd))
			if err != nil {
				return err
			}
			return renderTree(cmd, resolution, jsonRequested(cmd))
		},
	}
}

type treeNodeJSON struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Source       string   `json:"source"`
	Dependencies []string `json:"dependencies,omitempty"`
}

func renderTree(cmd *cobra.Command, resolution *domain.Resolution, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		var nodes []treeNodeJSON
		for node := range resolution.All() {
			deps := make([]string, 0, len(node.Dependencies))
			for _, d := range node.Dependencies {
				deps = append(deps, d.String())
			}
			nodes = append(nodes, treeNodeJSON{
				Name:         node.Name.String(),
				Version:      node.Version.String(),
				Source:       node.Source.String(),
				Dependencies: deps,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	}

	for node := range resolution.All() {
		fmt.Fprintf(out, "%s %s (%s)\n", node.Name, node.Version, node.Source)
		for _, dep := range node.Dependencies {
			fmt.Fprintf(out, "  %s\n", dep)
		}
	}
	return nil
}
