package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"go.rv.dev/rv/internal/core/domain"
)

func (c *CLI) newLibraryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "library",
		Short: "List the currently installed packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := c.app.Library(project(cmd))
			if err != nil {
				return err
			}
			return renderLibrary(cmd, lib, jsonRequested(cmd))
		},
	}
}

type libraryEntryJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

func renderLibrary(cmd *cobra.Command, lib *domain.Library, asJSON bool) error {
	out := cmd.OutOrStdout()

	names := lib.Names()
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })

	if asJSON {
		entries := make([]libraryEntryJSON, 0, len(names))
		for _, name := range names {
			e, _ := lib.Entry(name)
			entries = append(entries, libraryEntryJSON{Name: e.Name.String(), Version: e.Version.String(), Source: e.Source.String()})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, name := range names {
		e, _ := lib.Entry(name)
		fmt.Fprintf(out, "%s %s (%s)\n", e.Name, e.Version, e.Source)
	}
	return nil
}
