// Package gap compares a stack report against a fixed table of best
// practices and emits the gaps it finds.
package gap

import (
	"fmt"
	"strings"

	"github.com/devenv-tools/devenv/internal/detect"
)

// Severity ranks how much a gap hurts.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Effort estimates how much work closing a gap takes.
type Effort string

const (
	EffortTrivial Effort = "trivial"
	EffortSmall   Effort = "small"
	EffortMedium  Effort = "medium"
	EffortLarge   Effort = "large"
)

// Category groups gaps by concern.
type Category string

const (
	CategoryTesting    Category = "testing"
	CategoryLinting    Category = "linting"
	CategoryFormatting Category = "formatting"
	CategoryCI         Category = "ci"
	CategoryDocs       Category = "docs"
	CategorySecurity   Category = "security"
	CategoryTooling    Category = "tooling"
)

// Gap is one missing practice.
type Gap struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Effort   Effort   `json:"effort"`
	Detail   string   `json:"detail"`
	Snippet  string   `json:"snippet,omitempty"`
}

// rule is one row of the fixed practice table.
type rule struct {
	gap     Gap
	applies func(*detect.StackReport) bool
}

// rules is the fixed practice table. Order is the report order.
var rules = []rule{
	{
		gap: Gap{
			ID:       "add-tests",
			Title:    "No test framework configured",
			Category: CategoryTesting,
			Severity: SeverityCritical,
			Effort:   EffortMedium,
			Detail:   "The project has no detectable test framework. Untested code makes every later improvement riskier.",
		},
		applies: func(r *detect.StackReport) bool {
			return len(r.Technologies) > 0 && !r.Quality.HasTests
		},
	},
	{
		gap: Gap{
			ID:       "add-ci",
			Title:    "No CI pipeline",
			Category: CategoryCI,
			Severity: SeverityHigh,
			Effort:   EffortSmall,
			Detail:   "No CI workflow was found. Changes are only validated on developer machines.",
			Snippet:  "# .github/workflows/ci.yml\non: [push, pull_request]\njobs:\n  test:\n    runs-on: ubuntu-latest\n    steps:\n      - uses: actions/checkout@v4\n      # add build and test steps for your stack\n",
		},
		applies: func(r *detect.StackReport) bool {
			return len(r.Technologies) > 0 && !r.CI.HasCI
		},
	},
	{
		gap: Gap{
			ID:       "add-lint-ci",
			Title:    "Linter not wired into CI",
			Category: CategoryCI,
			Severity: SeverityMedium,
			Effort:   EffortTrivial,
			Detail:   "A linter is configured but there is no CI to run it, so violations only surface locally.",
		},
		applies: func(r *detect.StackReport) bool {
			return r.Quality.HasLinter && !r.CI.HasCI
		},
	},
	{
		gap: Gap{
			ID:       "add-linter",
			Title:    "No linter configured",
			Category: CategoryLinting,
			Severity: SeverityHigh,
			Effort:   EffortSmall,
			Detail:   "No linter configuration was found for the detected stack.",
		},
		applies: func(r *detect.StackReport) bool {
			return len(r.Technologies) > 0 && !r.Quality.HasLinter
		},
	},
	{
		gap: Gap{
			ID:       "add-formatter",
			Title:    "No code formatter configured",
			Category: CategoryFormatting,
			Severity: SeverityMedium,
			Effort:   EffortTrivial,
			Detail:   "No formatter configuration was found. Formatting drift creates noisy diffs.",
		},
		applies: func(r *detect.StackReport) bool {
			// gofmt ships with the toolchain, so a pure Go project is fine.
			if len(r.Technologies) == 1 && r.HasTechnology("go") {
				return false
			}
			return len(r.Technologies) > 0 && !r.Quality.HasFormatter
		},
	},
	{
		gap: Gap{
			ID:       "add-typescript",
			Title:    "JavaScript without type checking",
			Category: CategoryTooling,
			Severity: SeverityMedium,
			Effort:   EffortLarge,
			Detail:   "A Node project without TypeScript or checkJs loses a whole class of static guarantees.",
		},
		applies: func(r *detect.StackReport) bool {
			return r.HasTechnology("node") && !r.Quality.HasTypeChecking
		},
	},
	{
		gap: Gap{
			ID:       "add-editorconfig",
			Title:    "Missing .editorconfig",
			Category: CategoryFormatting,
			Severity: SeverityLow,
			Effort:   EffortTrivial,
			Detail:   "An .editorconfig keeps indentation and line endings consistent across editors.",
			Snippet:  "root = true\n\n[*]\ninsert_final_newline = true\ncharset = utf-8\n",
		},
		applies: func(r *detect.StackReport) bool {
			return !r.HasConfiguration("editorconfig")
		},
	},
	{
		gap: Gap{
			ID:       "add-gitignore",
			Title:    "Missing .gitignore",
			Category: CategoryTooling,
			Severity: SeverityMedium,
			Effort:   EffortTrivial,
			Detail:   "Without a .gitignore, build artifacts and local state end up committed.",
		},
		applies: func(r *detect.StackReport) bool {
			return !r.HasConfiguration("gitignore")
		},
	},
	{
		gap: Gap{
			ID:       "add-readme",
			Title:    "Missing README",
			Category: CategoryDocs,
			Severity: SeverityMedium,
			Effort:   EffortSmall,
			Detail:   "A README is the entry point for every new contributor.",
		},
		applies: func(r *detect.StackReport) bool {
			return !r.HasConfiguration("readme")
		},
	},
	{
		gap: Gap{
			ID:       "add-license",
			Title:    "Missing LICENSE",
			Category: CategoryDocs,
			Severity: SeverityLow,
			Effort:   EffortTrivial,
			Detail:   "Without a license, nobody can legally reuse this code.",
		},
		applies: func(r *detect.StackReport) bool {
			return !r.HasConfiguration("license")
		},
	},
	{
		gap: Gap{
			ID:       "add-lockfile-audit",
			Title:    "Dependencies are not audited",
			Category: CategorySecurity,
			Severity: SeverityHigh,
			Effort:   EffortSmall,
			Detail:   "No CI means dependency advisories are never checked automatically.",
		},
		applies: func(r *detect.StackReport) bool {
			return (r.HasTechnology("node") || r.HasEcosystem("pip") || r.HasEcosystem("poetry")) && !r.CI.HasCI
		},
	},
}

// Analyze evaluates the practice table against the report.
// It is a pure function of the report.
func Analyze(report *detect.StackReport) []Gap {
	var gaps []Gap
	for _, ru := range rules {
		if ru.applies(report) {
			gaps = append(gaps, ru.gap)
		}
	}
	return gaps
}

// severityOrder groups report output from worst to mildest.
var severityOrder = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// RenderMarkdown produces the human-readable gaps report.
func RenderMarkdown(report *detect.StackReport, gaps []Gap) string {
	var b strings.Builder
	b.WriteString("# Gap report\n\n")
	fmt.Fprintf(&b, "Project: `%s`\n\n", report.Root)

	if len(gaps) == 0 {
		b.WriteString("No gaps found. Nice.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d gap(s) found.\n", len(gaps))

	for _, sev := range severityOrder {
		var matched []Gap
		for _, g := range gaps {
			if g.Severity == sev {
				matched = append(matched, g)
			}
		}
		if len(matched) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", strings.ToUpper(string(sev[0]))+string(sev[1:]))
		for _, g := range matched {
			fmt.Fprintf(&b, "### %s (`%s`)\n\n", g.Title, g.ID)
			fmt.Fprintf(&b, "- Category: %s\n- Effort: %s\n\n", g.Category, g.Effort)
			b.WriteString(g.Detail)
			b.WriteString("\n")
			if g.Snippet != "" {
				fmt.Fprintf(&b, "\n```\n%s```\n", g.Snippet)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
