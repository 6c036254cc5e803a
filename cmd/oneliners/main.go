package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	cfgPath string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "oneliners",
	Short: "Summarize community form entries through an OpenAI assistant",
	Long: `oneliners pulls active entries from a Gravity Forms installation,
summarizes each through an OpenAI assistant, stores a vector embedding of the
entry text in a vector store, and produces a cumulative three-sentence summary
across all processed entries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/oneliners/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd, processCmd, entriesCmd, validateCmd, statusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
