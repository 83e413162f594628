// Package main implements the signup command: the HTTP registration service
// plus its database migration and token tooling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Configuration is loaded once, before
// any subcommand runs, from the --config file and SIGNUP_* variables.
func newRootCommand() *cobra.Command {
	var configPath string
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:           "signup",
		Short:         "User registration service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file path (default: ./config.yaml when present)")

	rootCmd.AddCommand(
		serveCommand(state),
		migrateCommand(state),
		tokenCommand(state),
	)
	return rootCmd
}
