package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/gap"
	"github.com/devenv-tools/devenv/internal/log"
	"github.com/devenv-tools/devenv/internal/output"
	"github.com/devenv-tools/devenv/internal/ui/styles"
)

func newGapsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "gaps [dir]",
		Short:   "List missing best practices",
		GroupID: GroupAnalysis,
		Args:    cobra.MaximumNArgs(1),
		Long: `Detect the stack and compare it against the best-practice table.
Writes a markdown gaps report and prints the gaps grouped by severity.

Examples:
  devenv gaps
  devenv gaps --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)
			dir := projectDir(args)

			report, err := detect.Scan(dir)
			if err != nil {
				return err
			}
			gaps := gap.Analyze(report)
			l.Debug("gap analysis complete", "gaps", len(gaps))

			md := gap.RenderMarkdown(report, gaps)
			mdPath := filepath.Join(dir, cfg.ReportDir, "gaps-report.md")
			if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(p.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(gaps)
			}

			if len(gaps) == 0 {
				p.Println(styles.OK() + " No gaps found")
				return nil
			}
			p.Printf("Found %d gaps:\n", len(gaps))
			byCategory := make(map[gap.Category][]gap.Gap)
			var order []gap.Category
			for _, g := range gaps {
				if len(byCategory[g.Category]) == 0 {
					order = append(order, g.Category)
				}
				byCategory[g.Category] = append(byCategory[g.Category], g)
			}
			for _, cat := range order {
				p.Println(styles.Bold.Render(string(cat)) + ":")
				for _, g := range byCategory[cat] {
					p.Printf("  %s [%s/%s] %s\n", styles.Warn(), g.Severity, g.Effort, g.Title)
				}
			}
			l.Printf("Report written to %s\n", mdPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print gaps as JSON")

	return cmd
}
