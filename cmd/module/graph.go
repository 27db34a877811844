package module

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [module]",
	Short: "Print the module dependency graph in Graphviz DOT format",
	Long: `Prints the dependency graph of all modules, or of one module and its
dependencies, in Graphviz DOT format. Missing modules are drawn dashed.

Examples:
  odooup module graph | dot -Tsvg > modules.svg
  odooup module graph sale_management`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	_, g, err := loadGraph(cmd)
	if err != nil {
		return err
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	}
	out, err := g.DOT(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
