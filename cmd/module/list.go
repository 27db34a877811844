package module

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/module"
	"github.com/odooup/odooup/internal/modulegraph"
)

var flagMissing bool

var listCmd = &cobra.Command{
	Use:   "list [pattern...]",
	Short: "List modules found under the workspace root",
	Long: `Lists every module found under the workspace root with its namespace.
Patterns may use shell wildcards.

Examples:
  odooup module list
  odooup module list 'web_*' sale
  odooup module list --missing`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&flagMissing, "missing", false, "Only list modules referenced as dependency but not found")
}

func runList(cmd *cobra.Command, args []string) error {
	pc, g, err := loadGraph(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	nodes := g.Nodes()
	if len(args) > 0 {
		names := make([]string, len(nodes))
		for i, n := range nodes {
			names[i] = n.Name
		}
		nodes = nodes[:0]
		for _, name := range module.ExpandPatterns(args, names) {
			if n, ok := g.Node(name); ok {
				nodes = append(nodes, n)
			}
		}
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	header := pc.Name
	if pc.Branch != "" {
		header += " (" + pc.Branch + ")"
	}
	fmt.Fprintf(out, "\n%s Modules in %s\n\n", color.GreenString("📦"), cyan(header))

	count := 0
	for _, n := range nodes {
		if flagMissing != n.Missing() {
			continue
		}
		count++
		if n.Missing() {
			fmt.Fprintf(out, "  %-35s %s\n", n.Name, color.RedString("missing"))
			continue
		}
		fmt.Fprintf(out, "  %-35s %-40s %s\n", n.Name, relPath(pc.Root, n.Namespace), describe(n))
	}

	fmt.Fprintf(out, "\n%d module(s)\n", count)
	return nil
}

func describe(n *modulegraph.Node) string {
	var tags []string
	if n.Native() {
		tags = append(tags, "native")
	}
	if n.Manifest.AutoInstall {
		tags = append(tags, "auto_install")
	}
	if !n.Manifest.Installable {
		tags = append(tags, "not installable")
	}
	if n.Manifest.Application {
		tags = append(tags, "application")
	}
	return color.New(color.Faint).Sprint(strings.Join(tags, ", "))
}
