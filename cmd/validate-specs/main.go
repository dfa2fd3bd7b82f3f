// Package main provides the validate-specs binary.
//
// validate-specs loads metric specification packages, resolves their
// inheritance and reports problems:
//   - lint checks that a package tree resolves
//   - show prints resolved specifications as JSON or YAML
//   - check tests a measurement against a specification
//   - watch reloads the tree whenever it changes
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "validate-specs"
)

func main() {
	if err := rootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalOptions struct {
	logLevel string
	logOut   io.Writer
}

func (o *globalOptions) logger() *slog.Logger {
	level := slog.LevelInfo

	switch strings.ToLower(o.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(o.logOut, &slog.HandlerOptions{Level: level}))
}

func rootCmd(logOut io.Writer) *cobra.Command {
	opts := &globalOptions{logOut: logOut}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Resolve and validate metric specification packages",
		Long: `validate-specs loads metric specification YAML files, resolves
their base inheritance into fully-qualified specifications and reports
unresolvable references with suggestions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		lintCmd(opts),
		showCmd(opts),
		checkCmd(opts),
		watchCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}
