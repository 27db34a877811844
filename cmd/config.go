package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global odooup configuration",
	Long: `Manage settings shared by every workspace.

Available keys:
  skip-native            Default answer for excluding native modules (true/false)
  path-length-threshold  Longest dependency chain before a warning is shown
  dockerignore           Dockerignore file, relative to the workspace root
  log-level              debug, info, warn or error

Settings live in the user config directory unless ODOOUP_CONFIG points
elsewhere. ODOOUP_<KEY> environment variables override saved values.

Examples:
  odooup config show
  odooup config set skip-native false
  odooup config get path-length-threshold
  odooup config unset dockerignore`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all configuration values",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, cfg, err := loadConfigFile()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	v, _ := cfg.Get(key)
	fmt.Printf("%s %s set to: %s\n", color.GreenString("✓"), key, v)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	v, err := settings.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := args[0]

	path, cfg, err := loadConfigFile()
	if err != nil {
		return err
	}
	if err := cfg.Unset(key); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Printf("%s %s unset\n", color.GreenString("✓"), key)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Printf("\n%s Global configuration (%s)\n\n", green("⚙"), path)

	for _, key := range config.Keys() {
		v, _ := settings.Get(key)
		fmt.Printf("  %-23s %s\n", key+":", cyan(v))
	}

	fmt.Println()
	return nil
}

func loadConfigFile() (string, *config.Settings, error) {
	path, err := config.Path()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}
