package main

import (
	"strings"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/output"
	"github.com/devenv-tools/devenv/internal/ui/styles"
)

// printStackSummary renders the human-readable stack overview.
func printStackSummary(p *output.Printer, r *detect.StackReport) {
	if len(r.Technologies) == 0 {
		p.Println(styles.Warn() + " No recognized technology stack")
		return
	}

	p.Println(styles.Bold.Render("Stack"))
	for _, t := range r.Technologies {
		line := "  " + styles.OK() + " " + t.Name
		if t.Version != "" {
			line += " " + t.Version
		}
		line += styles.MutedStyle.Render(" ("+t.Ecosystem+", "+t.Manifest+")")
		p.Println(line)
	}

	if len(r.Configurations) > 0 {
		names := make([]string, 0, len(r.Configurations))
		for _, c := range r.Configurations {
			names = append(names, c.Name)
		}
		p.Println(styles.Bold.Render("Configuration") + " " + strings.Join(names, ", "))
	}

	p.Println(styles.Bold.Render("Quality"))
	p.Println("  " + boolLine(r.Quality.HasTests, "tests", r.Quality.TestFramework))
	p.Println("  " + boolLine(r.Quality.HasLinter, "linter", r.Quality.Linter))
	p.Println("  " + boolLine(r.Quality.HasFormatter, "formatter", r.Quality.Formatter))

	if r.CI.HasCI {
		p.Printf("%s %s (%d workflows)\n",
			styles.Bold.Render("CI"), strings.Join(r.CI.Providers, ", "), r.CI.WorkflowCount)
	} else {
		p.Println(styles.Bold.Render("CI") + " " + styles.Warn() + " none")
	}

	for _, w := range r.Warnings {
		p.Println(styles.Warn() + " " + w)
	}
}

func boolLine(ok bool, what, detail string) string {
	if !ok {
		return styles.Warn() + " no " + what
	}
	if detail != "" {
		return styles.OK() + " " + what + styles.MutedStyle.Render(" ("+detail+")")
	}
	return styles.OK() + " " + what
}
