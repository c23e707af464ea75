package gap

import (
	"strings"
	"testing"

	"github.com/devenv-tools/devenv/internal/detect"
)

// hasGap reports whether gaps contains the given id.
func hasGap(gaps []Gap, id string) bool {
	for _, g := range gaps {
		if g.ID == id {
			return true
		}
	}
	return false
}

func nodeReport() *detect.StackReport {
	return &detect.StackReport{
		Root: "/tmp/demo",
		Technologies: []detect.Technology{
			{Name: "node", Ecosystem: "npm", Manifest: "package.json"},
		},
	}
}

func TestAnalyzeBareNodeProject(t *testing.T) {
	t.Parallel()

	gaps := Analyze(nodeReport())

	for _, id := range []string{"add-tests", "add-ci", "add-linter", "add-typescript", "add-gitignore", "add-readme"} {
		if !hasGap(gaps, id) {
			t.Errorf("expected gap %q for bare node project", id)
		}
	}
	if hasGap(gaps, "add-lint-ci") {
		t.Error("add-lint-ci requires a configured linter")
	}
}

func TestAnalyzeWellConfiguredProject(t *testing.T) {
	t.Parallel()

	report := nodeReport()
	report.Quality = detect.Quality{
		HasTests: true, TestFramework: "vitest",
		HasLinter: true, Linter: "eslint",
		HasFormatter: true, Formatter: "prettier",
		HasTypeChecking: true,
	}
	report.CI = detect.CI{HasCI: true, Providers: []string{"github-actions"}, WorkflowCount: 1}
	report.Configurations = []detect.Configuration{
		{Name: "editorconfig", Path: ".editorconfig"},
		{Name: "gitignore", Path: ".gitignore"},
		{Name: "readme", Path: "README.md"},
		{Name: "license", Path: "LICENSE"},
	}

	if gaps := Analyze(report); len(gaps) != 0 {
		t.Errorf("expected no gaps, got %+v", gaps)
	}
}

func TestAnalyzeIsPure(t *testing.T) {
	t.Parallel()

	report := nodeReport()
	first := Analyze(report)
	second := Analyze(report)
	if len(first) != len(second) {
		t.Fatalf("Analyze not deterministic: %d vs %d gaps", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("gap order changed at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestGoOnlyProjectSkipsFormatterGap(t *testing.T) {
	t.Parallel()

	report := &detect.StackReport{
		Root:         "/tmp/godemo",
		Technologies: []detect.Technology{{Name: "go", Ecosystem: "go", Manifest: "go.mod"}},
	}
	gaps := Analyze(report)
	if hasGap(gaps, "add-formatter") {
		t.Error("pure Go project should not be asked for a formatter")
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	report := nodeReport()
	gaps := Analyze(report)
	md := RenderMarkdown(report, gaps)

	if !strings.HasPrefix(md, "# Gap report") {
		t.Errorf("unexpected header: %q", md[:min(40, len(md))])
	}
	if !strings.Contains(md, "## Critical") {
		t.Error("expected a Critical section")
	}
	if !strings.Contains(md, "`add-tests`") {
		t.Error("expected add-tests gap in output")
	}

	// Snippets render as fenced blocks
	if !strings.Contains(md, "```") {
		t.Error("expected at least one fenced snippet")
	}
}

func TestRenderMarkdownNoGaps(t *testing.T) {
	t.Parallel()
	md := RenderMarkdown(&detect.StackReport{Root: "/x"}, nil)
	if !strings.Contains(md, "No gaps found") {
		t.Errorf("unexpected output: %q", md)
	}
}
