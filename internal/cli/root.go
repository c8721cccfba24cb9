// Package cli implements the emailclassifier command line.
package cli

import (
	"fmt"
	"os"

	"github.com/email-classifier/internal/domain"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	debug bool
	env   string
	mock  bool
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "emailclassifier",
		Short: "Email classification client",
		Long: `emailclassifier sends email text or .txt/.pdf files to a remote classification
service and shows the category (PRODUTIVO or IMPRODUTIVO), the confidence and
a suggested reply. It can also run a small operator console over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "", "Override the detected environment (local, hosted)")
	rootCmd.PersistentFlags().BoolVar(&opts.mock, "mock", false, "Use canned responses instead of the classification service")

	rootCmd.AddCommand(NewClassifyCommand(opts))
	rootCmd.AddCommand(NewHealthCommand(opts))
	rootCmd.AddCommand(NewEndpointsCommand(opts))
	rootCmd.AddCommand(NewServeCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", domain.UserMessage(err))
		os.Exit(1)
	}
}
