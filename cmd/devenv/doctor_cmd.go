package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/doctor"
	"github.com/devenv-tools/devenv/internal/output"
)

func newDoctorCmd() *cobra.Command {
	var fix bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "doctor [dir]",
		Short:   "Check project health and score it",
		GroupID: GroupAnalysis,
		Args:    cobra.MaximumNArgs(1),
		Long: `Run health checks against the detected stack: repository structure,
workspace hygiene, tooling and CI. Issues are weighted into a 0-100 health
score with a letter grade.

The [doctor] fail_below config setting turns a low score into a non-zero
exit, for use as a CI gate.

Examples:
  devenv doctor            # Check and score
  devenv doctor --fix      # Also apply quick fixes (dotfiles, CI seed)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := projectDir(args)

			stack, err := detect.Scan(dir)
			if err != nil {
				return err
			}

			res, err := doctor.Run(ctx, dir, stack, doctor.Options{
				ReportDir: cfg.ReportDir,
				Fix:       fix,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				p := output.FromContext(ctx)
				enc := json.NewEncoder(p.Writer())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			}

			if cfg.Doctor.FailBelow > 0 && res.Score < cfg.Doctor.FailBelow {
				return fmt.Errorf("health score %d below threshold %d", res.Score, cfg.Doctor.FailBelow)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Apply quick fixes for fixable issues")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Also print the result as JSON")

	return cmd
}
