package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/odooup/odooup/internal/git"
	"github.com/odooup/odooup/internal/whitelist"
	"github.com/odooup/odooup/pkg/prompt"
)

var flagSkipNative bool

var whitelistCmd = &cobra.Command{
	Use:   "whitelist <module>",
	Short: "Whitelist a module and its dependencies for sparse checkout",
	Long: `Whitelist a module and its whole dependency tree in the git sparse
checkout of every vendored repository providing them.

Each repository gets a .<name> file next to it listing the checked out
modules; its sparse-checkout file is linked to it. Modules with
auto_install that become installable are added too, and the project
.dockerignore is regenerated below its placeholder line.

Examples:
  odooup whitelist sale_management
  odooup whitelist web_responsive --skip-native=false
  odooup whitelist acme_sale --root ~/src/acme`,
	Args: cobra.ExactArgs(1),
	RunE: runWhitelist,
}

func init() {
	whitelistCmd.Flags().BoolVar(&flagSkipNative, "skip-native", true, "Leave native Odoo modules out of the sparse checkout")
	rootCmd.AddCommand(whitelistCmd)
}

func runWhitelist(cmd *cobra.Command, args []string) error {
	skipNative := flagSkipNative
	if !cmd.Flags().Changed("skip-native") {
		var err error
		skipNative, err = prompt.ConfirmOr("Ignore native modules from sparse checkout config?", settings.SkipNative)
		if err != nil {
			return err
		}
	}

	opts := whitelist.Options{
		Root:                flagRoot,
		Module:              args[0],
		SkipNative:          skipNative,
		PathLengthThreshold: settings.PathLengthThreshold,
		Dockerignore:        settings.Dockerignore,
	}

	res, err := whitelist.New(git.ExecRunner{}).Run(cmd.Context(), opts)
	if res != nil {
		printManifestErrors(cmd.ErrOrStderr(), res.ManifestErrors)
		printLongPath(cmd.OutOrStdout(), res.LongPath, opts.PathLengthThreshold)
	}
	if err != nil {
		return reportWhitelistError(err)
	}

	printWhitelistResult(res)
	return nil
}

func reportWhitelistError(err error) error {
	red := color.New(color.FgRed, color.Bold)

	var merr *multierror.Error
	switch {
	case errors.As(err, &merr):
		for _, e := range merr.Errors {
			red.Printf("MISSING DEPENDENCY: %s\n", capitalize(e.Error()))
		}
	case errors.Is(err, whitelist.ErrUnknownModule):
		red.Printf("UNKNOWN MODULE: %s\n", detail(err, whitelist.ErrUnknownModule))
	case errors.Is(err, whitelist.ErrMissingModule):
		red.Printf("MISSING MODULE BUT REFERENCED: %s\n", detail(err, whitelist.ErrMissingModule))
	default:
		return err
	}
	return errReported
}

func printWhitelistResult(res *whitelist.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	namespaces := make([]string, 0, len(res.Added))
	for ns := range res.Added {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	if len(namespaces) == 0 {
		fmt.Printf("%s %s and its dependencies are already whitelisted\n", green("✓"), cyan(res.Module))
	}
	for _, ns := range namespaces {
		fmt.Printf("%s %s: %s\n", green("✓"), relPath(res.Root, ns), strings.Join(res.Added[ns], ", "))
	}
	for _, m := range res.AutoInstalled {
		fmt.Printf("%s %s whitelisted (auto_install)\n", green("✓"), cyan(m))
	}
	if res.Dockerignore != "" {
		fmt.Printf("%s %s updated\n", green("✓"), relPath(res.Root, res.Dockerignore))
	}

	yellow := color.New(color.FgYellow, color.Bold)
	for _, m := range res.Missing {
		yellow.Printf("DEPENDENCY INFO: ")
		fmt.Printf("The dependency '%s' was found nowhere under %s\n", m, res.Root)
	}
}

func printLongPath(w io.Writer, path []string, threshold int) {
	if len(path) == 0 {
		return
	}
	if threshold <= 0 {
		threshold = whitelist.PathLengthWarningThreshold
	}
	color.New(color.FgWhite, color.BgHiRed, color.Bold).Fprintf(w,
		"The dependency graph of this module is particularly long (>%d), consider refactoring.\nLongest path: ", threshold)
	fmt.Fprintln(w)
	color.New(color.FgWhite, color.Bold).Fprintln(w, strings.Join(path, " > "))
}

// printManifestErrors reports unparsable manifests as warnings on w
func printManifestErrors(w io.Writer, err error) {
	if err == nil {
		return
	}
	errs := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	}
	for _, e := range errs {
		fmt.Fprintf(w, "%s %v\n", color.YellowString("⚠"), e)
	}
}

// detail strips the sentinel prefix wrapped into err
func detail(err, sentinel error) string {
	return capitalize(strings.TrimPrefix(err.Error(), sentinel.Error()+": "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
