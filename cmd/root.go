package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odooup/odooup/cmd/module"
	"github.com/odooup/odooup/internal/config"
	"github.com/odooup/odooup/internal/logging"
	"github.com/odooup/odooup/internal/plugin"
)

var version = "0.1.0"

var (
	flagVerbose bool
	flagRoot    string

	// settings is loaded before any command runs
	settings *config.Settings
)

// errReported is returned by commands that already printed their failure
var errReported = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "odooup",
	Short: "Tooling for Odoo project workspaces",
	Long: `odooup manages Odoo project workspaces built from vendored addon repositories.

Executables named odooup-<name> on your PATH are available as "odooup <name>".`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func execute(ctx context.Context) error {
	if ran, err := runPlugin(ctx, os.Args[1:]); ran {
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		}
		return err
	}

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprintf("Error: %v", err))
	}
	return err
}

// exitCode passes a plugin's exit status through
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "V", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "Workspace root to search for modules")

	rootCmd.AddCommand(module.Cmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	settings, err = config.LoadGlobal()
	if err != nil {
		return err
	}

	level := settings.LogLevel
	if flagVerbose {
		level = "debug"
	}
	_, err = logging.New(level)
	return err
}

// runPlugin hands the command line to an odooup-<name> executable when
// the first argument is not a built-in command
func runPlugin(ctx context.Context, args []string) (bool, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return false, nil
	}

	rootCmd.InitDefaultHelpCmd()
	rootCmd.InitDefaultCompletionCmd()
	if found, _, err := rootCmd.Find(args); err == nil && found != rootCmd {
		return false, nil
	}

	p, ok := plugin.Lookup(args[0])
	if !ok {
		return false, nil
	}
	return true, p.Run(ctx, args[1:])
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("odooup %s\n", version)
	},
}
