package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/internal/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	noColor  bool
	logLevel string

	// out receives command output; set per invocation from cmd.OutOrStdout.
	out io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "espgc",
	Short: "Exercise and inspect the arena allocator and collector",
	Long: `espgc drives the cell-arena allocator and mark-sweep collector
outside of an interpreter. It can replay the reference allocation scenario,
run seeded random workloads under invariant checking, and draw arena maps.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log level on stderr (trace, debug, info, warn, error); default from "+logger.EnvVar)
}

// setup wires output and logging before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	out = cmd.OutOrStdout()
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		noColor = true
	}
	switch {
	case logLevel != "":
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		return logger.Init(logger.Options{Enabled: true, Output: cmd.ErrOrStderr(), Level: level})
	case verbose:
		return logger.Init(logger.Options{Enabled: true, Output: cmd.ErrOrStderr(), Level: slog.LevelDebug})
	default:
		return logger.InitFromEnv()
	}
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parseBacking maps a --backing flag value to an arena backing.
func parseBacking(s string) (arena.Backing, error) {
	switch s {
	case "pages", "":
		return arena.BackingPages, nil
	case "go":
		return arena.BackingGo, nil
	}
	return 0, fmt.Errorf("unknown backing %q (want pages or go)", s)
}
