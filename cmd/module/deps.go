package module

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var flagDirect bool

var depsCmd = &cobra.Command{
	Use:   "deps <module>",
	Short: "Show the dependencies of a module",
	Long: `Shows every module a module depends on, directly or not, in
installation order. Dependencies found nowhere under the root are marked.

Examples:
  odooup module deps sale_management
  odooup module deps web_responsive --direct`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().BoolVar(&flagDirect, "direct", false, "Only show direct dependencies")
}

func runDeps(cmd *cobra.Command, args []string) error {
	name := args[0]

	pc, g, err := loadGraph(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, ok := g.Node(name); !ok {
		return fmt.Errorf("unknown module: '%s' is not in the module graph built from %s", name, pc.Root)
	}

	var deps []string
	if flagDirect {
		deps, err = g.Dependencies(name)
	} else {
		deps, err = g.Ancestors(name)
	}
	if err != nil {
		return err
	}

	order, err := g.Subgraph(deps).TopologicalOrder()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s Dependencies of %s\n\n", color.GreenString("🔗"), color.CyanString(name))
	missing := 0
	for _, n := range order {
		switch {
		case n.Missing():
			missing++
			fmt.Fprintf(out, "  %s %-35s %s\n", color.RedString("✗"), n.Name, color.RedString("missing"))
		case n.Native():
			fmt.Fprintf(out, "  %s %-35s %s\n", color.GreenString("✓"), n.Name, color.New(color.Faint).Sprint("native"))
		default:
			fmt.Fprintf(out, "  %s %-35s %s\n", color.GreenString("✓"), n.Name, relPath(pc.Root, n.Namespace))
		}
	}

	fmt.Fprintf(out, "\n%d dependencies", len(order))
	if missing > 0 {
		fmt.Fprintf(out, ", %s", color.RedString("%d missing", missing))
	}
	fmt.Fprintln(out)

	if !flagDirect {
		if n, err := g.Subgraph(append(deps, name)).LongestPathLength(); err == nil {
			fmt.Fprintf(out, "Longest dependency path: %d\n", n)
		}
	}
	return nil
}
