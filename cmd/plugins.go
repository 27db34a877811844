package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List odooup plugins found on PATH",
	Args:  cobra.NoArgs,
	RunE:  runPlugins,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

func runPlugins(cmd *cobra.Command, args []string) error {
	plugins := plugin.List()
	if len(plugins) == 0 {
		fmt.Printf("No plugins found. Install an executable named %s<name> on your PATH.\n", plugin.Prefix)
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	for _, p := range plugins {
		fmt.Printf("  %-20s %s\n", cyan(p.Name), p.Path)
	}
	return nil
}
