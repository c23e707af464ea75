package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/gap"
	"github.com/devenv-tools/devenv/internal/log"
	"github.com/devenv-tools/devenv/internal/output"
	"github.com/devenv-tools/devenv/internal/plan"
	"github.com/devenv-tools/devenv/internal/ui/styles"
)

func newPlanCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "plan [dir]",
		Short:   "Generate a prioritized hardening plan",
		GroupID: GroupAnalysis,
		Args:    cobra.MaximumNArgs(1),
		Long: `Detect the stack, analyze gaps and order them into a hardening plan by
priority (severity weighted by effort), with prerequisite tasks hoisted first.
Writes the plan as markdown.

Examples:
  devenv plan
  devenv plan ./app --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)
			dir := projectDir(args)

			report, err := detect.Scan(dir)
			if err != nil {
				return err
			}
			hardening := plan.Build(gap.Analyze(report))
			l.Debug("plan built", "tasks", len(hardening.Tasks))

			mdPath := filepath.Join(dir, cfg.ReportDir, "hardening-plan.md")
			if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(mdPath, []byte(hardening.RenderMarkdown()), 0o644); err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(p.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(hardening)
			}

			if len(hardening.Tasks) == 0 {
				p.Println(styles.OK() + " Nothing to do")
				return nil
			}
			p.Printf("Hardening plan (%d tasks):\n", len(hardening.Tasks))
			for i, t := range hardening.Tasks {
				p.Printf("  %d. %s %s\n", i+1, t.Title,
					styles.MutedStyle.Render("(priority "+strconv.Itoa(t.Priority)+")"))
			}
			l.Printf("Plan written to %s\n", mdPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the plan as JSON")

	return cmd
}
