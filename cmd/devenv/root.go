package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devenv-tools/devenv/internal/config"
	"github.com/devenv-tools/devenv/internal/log"
	"github.com/devenv-tools/devenv/internal/output"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	logFile string

	// Shared state injected into commands
	cfg config.Config
)

// Command group IDs for organizing help output
const (
	GroupAnalysis = "analysis"
	GroupCleanup  = "cleanup"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devenv",
	Short: "Developer-experience doctor for project repositories",
	Long: `devenv detects a project's technology stack, compares it against a table
of best practices, emits a prioritized hardening plan, and applies idempotent
cleanup rules to strip template-only code after project generation.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		return nil
	},
	// Run is not set - shows help when no subcommand provided
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = loadedCfg

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create logger (stderr for diagnostics)
	logger := log.New(os.Stderr, verbose, quiet)
	if logFile != "" {
		logger = logger.Tee(log.FileSink(logFile))
	}
	ctx = log.WithLogger(ctx, logger)

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, os.Stdout)

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'devenv -h' for help")
		os.Exit(1)
	}
}

// projectDir resolves the optional [dir] positional argument.
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug detail on stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to a rotating file")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupAnalysis, Title: "Analysis Commands:"},
		&cobra.Group{ID: GroupCleanup, Title: "Cleanup Commands:"},
	)

	// Analysis commands
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newGapsCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newDoctorCmd())

	// Cleanup commands
	rootCmd.AddCommand(newCleanupCmd())
}
