package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/log"
	"github.com/devenv-tools/devenv/internal/output"
)

func newDetectCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "detect [dir]",
		Short:   "Detect the project's technology stack",
		GroupID: GroupAnalysis,
		Args:    cobra.MaximumNArgs(1),
		Long: `Scan a project directory for manifests, tooling configuration and CI
workflows, write the stack report and print a summary.

Examples:
  devenv detect              # Scan the current directory
  devenv detect ./app        # Scan a specific directory
  devenv detect --json       # Print the full report as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			report, err := detect.Scan(projectDir(args))
			if err != nil {
				return err
			}

			path, err := detect.Write(report, cfg.ReportDir)
			if err != nil {
				return err
			}
			l.Debug("stack report written", "path", path)

			if jsonOut {
				enc := json.NewEncoder(p.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			printStackSummary(p, report)
			l.Printf("Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full report as JSON")

	return cmd
}
