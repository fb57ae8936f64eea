// Package cli implements the petridish command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/petridish/petridish/internal/config"
	"github.com/petridish/petridish/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	verbose        bool
	quiet          bool
	nonInteractive bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "petridish",
	Short: "Scaffold projects from templates",
	Long: `petridish scaffolds new projects from template repositories.

A template repository carries a petridish.yaml describing the variables to
prompt for, and a directory named with the entry template (by default
"{{ project_name }}") holding the project tree. Path names and file contents
are rendered with Jinja2-style template syntax.

Quick start:
  petridish new gh:acme/starter        Scaffold from a GitHub template
  petridish new ./my-template -o out   Scaffold from a local template
  petridish list                       List cached templates`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It returns a process exit code; user
// cancellation is not an error.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/petridish/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "never prompt; answer every question with its default")

	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig loads the config file and wires the global logger.
func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	cfg = loaded

	logging.Setup(cfg.LogLevel, verbose, quiet)
}
