// Command teeny is the Cobra-based driver for the Teeny scripting
// language: run a script file, drop into an interactive REPL, or
// install a package directory into the global package path, per
// spec.md §6's "External interfaces" and SPEC_FULL.md §5.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IANYEYZ/teeny/stdlib"
)

// globalPackagePath is resolved once from flags/env and read by
// run.go/repl.go/install.go.
var globalPackagePath string

func main() {
	var (
		debug      bool
		noColor    bool
		globalPath string
	)

	rootCmd := &cobra.Command{
		Use:           "teeny [path] [-- args...]",
		Short:         "Run Teeny scripts, or start the interactive REPL",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if globalPath != "" {
				globalPackagePath = globalPath
			} else {
				globalPackagePath = stdlib.DefaultGlobalPackagePath()
			}

			if len(args) == 0 {
				if !isTerminal(os.Stdin) {
					return &CLIError{
						Type:    "usage",
						Message: "no script path given and stdin is not a terminal",
						Hint:    "run `teeny <path>` or attach a terminal for the REPL",
					}
				}
				os.Exit(runREPL(debug, noColor))
			}

			extraArgs := cmd.Flags().Args()[1:]
			os.Exit(runFile(args[0], debug, noColor, extraArgs))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable slog debug output for the interpreter")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	rootCmd.PersistentFlags().StringVar(&globalPath, "global-path", "", "override the global package path searched by import (default $TEENY_HOME/lib or ~/.teeny/lib)")

	installCmd := &cobra.Command{
		Use:   "install <dir>",
		Short: "Copy a directory into the global package path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if globalPath != "" {
				globalPackagePath = globalPath
			} else {
				globalPackagePath = stdlib.DefaultGlobalPackagePath()
			}
			os.Exit(runInstall(args[0], noColor))
			return nil
		},
	}
	rootCmd.AddCommand(installCmd)

	if err := rootCmd.Execute(); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(noColor))
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}
}
