package main

import (
	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	var opts cleanupOptions

	cmd := &cobra.Command{
		Use:     "cleanup [dir]",
		Short:   "Strip template-only code from a generated project",
		GroupID: GroupCleanup,
		Args:    cobra.MaximumNArgs(1),
		Long: `Apply declarative cleanup rules to a project: delete marker-delimited
blocks, drop tagged lines, prune template dependencies from manifests and
remove placeholder files.

Dry-run is the default; every pending action is recorded without touching
the tree. Pass --apply to make the changes.

Rules are read from devenv.cleanup.yaml (or .devenv/cleanup.yaml) unless
--config points elsewhere.

Examples:
  devenv cleanup                       # Preview with the default profile
  devenv cleanup --diff                # Preview with unified diffs
  devenv cleanup --apply               # Apply the default profile
  devenv cleanup --profile minimal --apply
  devenv cleanup --feature no-docs --exclude drop-demo-deps --apply
  devenv cleanup --apply --parallel --performance`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd.Context(), projectDir(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Apply changes instead of previewing them")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Rule profile to run (default from config)")
	cmd.Flags().StringSliceVar(&opts.features, "feature", nil, "Enable feature-gated rules")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "Run only these rule ids")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "Skip these rule ids")
	cmd.Flags().StringSliceVar(&opts.keep, "keep", nil, "Never delete paths matching these globs")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Process files with a worker pool")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Worker count for --parallel (default NumCPU)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Disable the content cache")
	cmd.Flags().BoolVar(&opts.performance, "performance", false, "Print per-phase timing")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "Print unified diffs of pending edits")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write the run report as JSON to this path")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Rule config file")

	return cmd
}
