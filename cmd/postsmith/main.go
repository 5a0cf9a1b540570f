// Package main provides the postsmith CLI: generate LinkedIn posts and comments from a profile page.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "postsmith",
		Short: "Generate LinkedIn posts and comments from a profile page",
		Long: `postsmith reads a LinkedIn profile (profession and about section), composes a prompt
from your chosen tone, length and topic, and generates a post or a comment on an article
with OpenAI or Gemini.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to config.yaml (default: ./config.yaml or ~/.postsmith/config.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print detailed debug information")

	root.AddCommand(
		newGenerateCmd(flags),
		newProfileCmd(flags),
		newPromptCmd(flags),
		newKeysCmd(flags),
		newServeCmd(flags),
		newHistoryCmd(flags),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
