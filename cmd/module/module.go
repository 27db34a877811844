package module

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/git"
	"github.com/odooup/odooup/internal/modulegraph"
	"github.com/odooup/odooup/internal/project"
)

var Cmd = &cobra.Command{
	Use:   "module",
	Short: "Inspect Odoo modules",
	Long:  `Commands for listing Odoo modules under the workspace root and inspecting their dependencies.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(depsCmd)
	Cmd.AddCommand(graphCmd)
}

// loadGraph detects the workspace from the --root flag and builds its
// module graph, printing unparsable manifests as warnings
func loadGraph(cmd *cobra.Command) (project.Context, *modulegraph.Graph, error) {
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		root = "."
	}

	pc, err := project.Detect(cmd.Context(), git.ExecRunner{}, root)
	if err != nil {
		return pc, nil, err
	}

	g, err := modulegraph.Build(pc.Root)
	if g == nil {
		return pc, nil, fmt.Errorf("failed to build module graph: %w", err)
	}
	if err != nil {
		warn := cmd.ErrOrStderr()
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				fmt.Fprintf(warn, "%s %v\n", color.YellowString("⚠"), e)
			}
		} else {
			fmt.Fprintf(warn, "%s %v\n", color.YellowString("⚠"), err)
		}
	}
	return pc, g, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
