// Package doctor runs health checks against a scanned project and scores
// the result. Checks are grouped into categories mirroring what a reviewer
// would look at first: repository structure, workspace hygiene, tooling and
// CI. Quick wins (missing dotfiles, empty report dir, absent CI workflow)
// are fixable in place with --fix; everything else stays a recommendation.
package doctor

import (
	"context"
	"strconv"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/gap"
	"github.com/devenv-tools/devenv/internal/log"
	"github.com/devenv-tools/devenv/internal/output"
	"github.com/devenv-tools/devenv/internal/ui/styles"
)

// Options configures a doctor run.
type Options struct {
	ReportDir string // relative report directory, e.g. ".devenv"
	Fix       bool
}

// Run checks the project at root against its detected stack and prints a
// categorized summary. The returned result carries the health score; the
// caller decides whether a low score fails the invocation.
func Run(ctx context.Context, root string, stack *detect.StackReport, opts Options) (*Result, error) {
	l := log.FromContext(ctx)
	p := output.FromContext(ctx)

	var issues []Issue
	p.Println("Checking repository structure...")
	issues = append(issues, categorize(checkStructure(stack), CategoryStructure)...)
	p.Println("Checking workspace hygiene...")
	issues = append(issues, categorize(checkHygiene(root, opts.ReportDir, stack), CategoryHygiene)...)
	p.Println("Checking tooling...")
	issues = append(issues, categorize(checkTooling(stack), CategoryTooling)...)
	p.Println("Checking CI...")
	issues = append(issues, categorize(checkCI(stack), CategoryCI)...)
	l.Debug("checks complete", "issues", len(issues))

	res := &Result{Issues: issues, Stats: tally(issues)}
	res.Score = score(issues)
	res.Grade = grade(res.Score)

	printSummary(p, res)

	if len(issues) == 0 {
		p.Println("\n" + styles.OK() + " No issues found")
		return res, nil
	}

	p.Printf("\nFound %d issues:\n", len(issues))
	printIssuesByCategory(p, issues)

	if opts.Fix {
		res.Fixed, res.Failed = applyFixes(p, root, opts.ReportDir, stack, issues)
		if res.Failed > 0 {
			p.Printf("\nFixed %d issues, %d failed.\n", res.Fixed, res.Failed)
		} else {
			p.Printf("\nFixed %d issues.\n", res.Fixed)
		}
		return res, nil
	}

	if res.Stats.Fixable > 0 {
		p.Println("\nRun 'devenv doctor --fix' to apply quick fixes.")
	}
	return res, nil
}

func categorize(issues []Issue, cat Category) []Issue {
	for i := range issues {
		issues[i].Category = cat
	}
	return issues
}

func tally(issues []Issue) Stats {
	var s Stats
	for _, i := range issues {
		switch i.Severity {
		case gap.SeverityCritical:
			s.Critical++
		case gap.SeverityHigh:
			s.High++
		case gap.SeverityMedium:
			s.Medium++
		case gap.SeverityLow:
			s.Low++
		}
		if i.FixAction != "" {
			s.Fixable++
		}
	}
	return s
}

// printSummary prints the score line and severity counts.
func printSummary(p *output.Printer, res *Result) {
	p.Println()

	scoreStyle := styles.SuccessStyle
	switch {
	case res.Score < 60:
		scoreStyle = styles.ErrorStyle
	case res.Score < 90:
		scoreStyle = styles.WarningStyle
	}
	p.Printf("  Health score: %s\n", scoreStyle.Render(styles.Bold.Render(
		res.Grade+" ("+strconv.Itoa(res.Score)+"/100)")))

	if res.Stats.Critical > 0 {
		p.Printf("  %s %d critical\n", styles.Fail(), res.Stats.Critical)
	}
	if res.Stats.High > 0 {
		p.Printf("  %s %d high\n", styles.Fail(), res.Stats.High)
	}
	if res.Stats.Medium > 0 {
		p.Printf("  %s %d medium\n", styles.Warn(), res.Stats.Medium)
	}
	if res.Stats.Low > 0 {
		p.Printf("  %s %d low\n", styles.Warn(), res.Stats.Low)
	}
}

// printIssuesByCategory groups and prints issues.
func printIssuesByCategory(p *output.Printer, issues []Issue) {
	byCategory := make(map[Category][]Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	categoryNames := map[Category]string{
		CategoryStructure: "Structure",
		CategoryHygiene:   "Hygiene",
		CategoryTooling:   "Tooling",
		CategoryCI:        "CI",
	}

	for _, cat := range []Category{CategoryStructure, CategoryHygiene, CategoryTooling, CategoryCI} {
		catIssues := byCategory[cat]
		if len(catIssues) == 0 {
			continue
		}
		p.Printf("\n%s:\n", categoryNames[cat])
		for _, issue := range catIssues {
			marker := "•"
			if issue.FixAction != "" {
				marker = styles.PrimaryStyle.Render("+")
			}
			p.Printf("  %s [%s] %s\n", marker, issue.Severity, issue.Description)
		}
	}
}
