package cleanup

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixtureRules = []Rule{
	{ID: "strip-examples", Type: RuleBlockDelete, Glob: "**/*.ts", StartMarker: "BEGIN EXAMPLE", EndMarker: "END EXAMPLE"},
	{ID: "strip-debug", Type: RuleLineTag, Glob: "**/*.ts", Tag: "devenv:remove"},
	{ID: "prune-demo", Type: RuleDependencyPrune, Ecosystem: "npm", RemoveDeps: []string{"left-pad"}},
	{ID: "drop-examples-dir", Type: RuleFileGlobDelete, Glob: "examples/**"},
}

func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWriteTree(t, root, map[string]string{
		"src/app.ts":        "// BEGIN EXAMPLE\nconsole.log('demo');\n// END EXAMPLE\nbar();\n",
		"src/util.ts":       "export const x = 1;\ndebug(); // devenv:remove\n",
		"src/clean.ts":      "export const y = 2;\n",
		"package.json":      "{\n  \"name\": \"demo\",\n  \"dependencies\": {\n    \"left-pad\": \"^1.0.0\",\n    \"react\": \"^18.0.0\"\n  }\n}\n",
		"package-lock.json": "{}\n",
		"examples/demo.ts":  "demo\n",
		"examples/sub/x.ts": "demo\n",
		"README.md":         "hello\n",
	})
	return root
}

// snapshot captures every file's relative path and content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func equalSnapshots(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func TestRunApply(t *testing.T) {
	t.Parallel()

	root := fixtureTree(t)
	report, err := Run(context.Background(), fixtureRules, Options{Root: root, Profile: "default"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := snapshot(t, root)
	if got["src/app.ts"] != "bar();\n" {
		t.Errorf("app.ts = %q, want %q", got["src/app.ts"], "bar();\n")
	}
	if got["src/util.ts"] != "export const x = 1;\n" {
		t.Errorf("util.ts = %q", got["src/util.ts"])
	}
	if strings.Contains(got["package.json"], "left-pad") {
		t.Errorf("package.json still lists left-pad: %q", got["package.json"])
	}
	if !strings.Contains(got["package.json"], "react") {
		t.Errorf("package.json lost react: %q", got["package.json"])
	}
	if _, ok := got["package-lock.json"]; ok {
		t.Error("stale lock file survived")
	}
	if _, ok := got["examples/demo.ts"]; ok {
		t.Error("examples dir survived")
	}
	if got["README.md"] != "hello\n" {
		t.Error("unmatched file was modified")
	}

	if report.Summary.BlocksRemoved != 1 || report.Summary.DepsRemoved != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors = %v", report.Errors)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	root := fixtureTree(t)
	before := snapshot(t, root)

	report, err := Run(context.Background(), fixtureRules, Options{Root: root, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !equalSnapshots(before, snapshot(t, root)) {
		t.Error("dry-run modified the tree")
	}
	if len(report.Actions) == 0 {
		t.Fatal("dry-run recorded no actions")
	}
	for _, a := range report.Actions {
		if !a.DryRun {
			t.Errorf("action %+v not flagged dry-run", a)
		}
	}
}

// Dry-run must predict exactly what apply will do.
func TestRunDryRunApplyParity(t *testing.T) {
	t.Parallel()

	root := fixtureTree(t)
	dry, err := Run(context.Background(), fixtureRules, Options{Root: root, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	applied, err := Run(context.Background(), fixtureRules, Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}

	if len(dry.Actions) != len(applied.Actions) {
		t.Fatalf("dry %d actions, apply %d", len(dry.Actions), len(applied.Actions))
	}
	for i := range dry.Actions {
		d, a := dry.Actions[i], applied.Actions[i]
		d.DryRun, a.DryRun = false, false
		if d != a {
			t.Errorf("action %d: dry %+v, apply %+v", i, d, a)
		}
	}
	if dry.Summary != applied.Summary {
		t.Errorf("summary: dry %+v, apply %+v", dry.Summary, applied.Summary)
	}
}

func TestRunIdempotent(t *testing.T) {
	t.Parallel()

	root := fixtureTree(t)
	if _, err := Run(context.Background(), fixtureRules, Options{Root: root}); err != nil {
		t.Fatal(err)
	}
	after := snapshot(t, root)

	second, err := Run(context.Background(), fixtureRules, Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	// The prune rule re-reports left-pad as unknown; no edits happen.
	if got := second.Summary.TotalActions; got != 0 {
		t.Errorf("second run actions = %d, want 0", got)
	}
	if !equalSnapshots(after, snapshot(t, root)) {
		t.Error("second run changed bytes")
	}
}

func TestRunCleanTreeIsNoop(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteTree(t, root, map[string]string{
		"src/app.ts": "bar();\n",
		"README.md":  "hello\n",
	})
	before := snapshot(t, root)

	report, err := Run(context.Background(), fixtureRules, Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.TotalActions != 0 {
		t.Errorf("actions = %d, want 0", report.Summary.TotalActions)
	}
	if !equalSnapshots(before, snapshot(t, root)) {
		t.Error("clean tree was modified")
	}
}

// Every concurrency level must produce identical trees and reports.
func TestRunParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	// Enough matched files to clear the pool threshold.
	files := map[string]string{}
	for i := 0; i < 30; i++ {
		files[fmt.Sprintf("src/f%02d.ts", i)] = fmt.Sprintf("// BEGIN EXAMPLE\nd%d\n// END EXAMPLE\nkeep%d();\n", i, i)
	}

	baseRoot := t.TempDir()
	mustWriteTree(t, baseRoot, files)
	baseReport, err := Run(context.Background(), fixtureRules, Options{Root: baseRoot})
	if err != nil {
		t.Fatal(err)
	}
	baseTree := snapshot(t, baseRoot)

	for _, conc := range []int{1, 2, 4, 8} {
		conc := conc
		t.Run(fmt.Sprintf("concurrency=%d", conc), func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			mustWriteTree(t, root, files)
			report, err := Run(context.Background(), fixtureRules, Options{
				Root: root, Parallel: true, Concurrency: conc,
			})
			if err != nil {
				t.Fatal(err)
			}
			if !equalSnapshots(baseTree, snapshot(t, root)) {
				t.Error("parallel tree differs from sequential")
			}
			if report.Summary != baseReport.Summary {
				t.Errorf("summary = %+v, want %+v", report.Summary, baseReport.Summary)
			}
			if len(report.Actions) != len(baseReport.Actions) {
				t.Fatalf("actions = %d, want %d", len(report.Actions), len(baseReport.Actions))
			}
			for i := range report.Actions {
				if report.Actions[i] != baseReport.Actions[i] {
					t.Errorf("action %d = %+v, want %+v", i, report.Actions[i], baseReport.Actions[i])
				}
			}
		})
	}
}

func TestRunCacheDoesNotChangeOutput(t *testing.T) {
	t.Parallel()

	plainRoot := fixtureTree(t)
	plain, err := Run(context.Background(), fixtureRules, Options{Root: plainRoot})
	if err != nil {
		t.Fatal(err)
	}
	plainTree := snapshot(t, plainRoot)

	cache, err := NewCache(t.TempDir(), time.Hour, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Warm the cache with a dry-run, then apply through it.
	cachedRoot := fixtureTree(t)
	if _, err := Run(context.Background(), fixtureRules, Options{Root: cachedRoot, DryRun: true, Cache: cache}); err != nil {
		t.Fatal(err)
	}
	m := NewMetrics()
	cached, err := Run(context.Background(), fixtureRules, Options{Root: cachedRoot, Cache: cache, Metrics: m})
	if err != nil {
		t.Fatal(err)
	}

	if !equalSnapshots(plainTree, snapshot(t, cachedRoot)) {
		t.Error("cached run produced a different tree")
	}
	if cached.Summary != plain.Summary {
		t.Errorf("summary = %+v, want %+v", cached.Summary, plain.Summary)
	}
	if m.CacheHits == 0 {
		t.Error("warm cache recorded no hits")
	}
}

func TestRunKeepSkipsDeletion(t *testing.T) {
	t.Parallel()

	root := fixtureTree(t)
	report, err := Run(context.Background(), fixtureRules, Options{
		Root: root,
		Keep: []string{"examples/**", "package-lock.json"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := snapshot(t, root)
	if _, ok := got["examples/demo.ts"]; !ok {
		t.Error("kept examples dir was deleted")
	}
	if _, ok := got["package-lock.json"]; !ok {
		t.Error("kept lock file was deleted")
	}
	for _, a := range report.Actions {
		if a.Type == ActionFileDelete {
			t.Errorf("delete action recorded for kept path: %+v", a)
		}
	}
}

func TestRunUnknownDependencyWarns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteTree(t, root, map[string]string{
		"package.json": "{\n  \"name\": \"demo\",\n  \"dependencies\": {\n    \"react\": \"^18.0.0\"\n  }\n}\n",
	})
	rules := []Rule{{ID: "prune", Type: RuleDependencyPrune, Ecosystem: "npm", RemoveDeps: []string{"ghost-pkg"}}}

	report, err := Run(context.Background(), rules, Options{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "ghost-pkg") {
		t.Errorf("warnings = %v, want unknown-dependency warning", report.Warnings)
	}
	if report.Summary.TotalActions != 0 {
		t.Errorf("actions = %d, want 0", report.Summary.TotalActions)
	}
}

func TestRunRequirementsPrune(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteTree(t, root, map[string]string{
		"requirements.txt": "flask==2.0.1\nrequests==2.28.0\n",
	})
	rules := []Rule{{ID: "prune", Type: RuleDependencyPrune, Ecosystem: "pip", RemoveDeps: []string{"flask"}}}

	if _, err := Run(context.Background(), rules, Options{Root: root}); err != nil {
		t.Fatal(err)
	}
	got := snapshot(t, root)
	if got["requirements.txt"] != "requests==2.28.0\n" {
		t.Errorf("requirements.txt = %q, want %q", got["requirements.txt"], "requests==2.28.0\n")
	}
}

func TestRunUnterminatedBlockSkipsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteTree(t, root, map[string]string{
		"broken.ts": "// BEGIN EXAMPLE\nnever closed\n",
		"fine.ts":   "// BEGIN EXAMPLE\nx\n// END EXAMPLE\nkeep();\n",
	})
	rules := []Rule{fixtureRules[0]}

	report, err := Run(context.Background(), rules, Options{Root: root})
	if err != nil {
		t.Fatalf("per-file failure must not abort the run: %v", err)
	}

	got := snapshot(t, root)
	if got["broken.ts"] != "// BEGIN EXAMPLE\nnever closed\n" {
		t.Errorf("broken file was modified: %q", got["broken.ts"])
	}
	if got["fine.ts"] != "keep();\n" {
		t.Errorf("fine.ts = %q, want %q", got["fine.ts"], "keep();\n")
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "broken.ts") {
		t.Errorf("errors = %v, want one for broken.ts", report.Errors)
	}
}

func TestRunDiffWriter(t *testing.T) {
	t.Parallel()

	root := fixtureTree(t)
	var buf strings.Builder
	if _, err := Run(context.Background(), fixtureRules, Options{Root: root, DryRun: true, DiffWriter: &buf}); err != nil {
		t.Fatal(err)
	}
	diff := buf.String()
	if !strings.Contains(diff, "a/src/app.ts") || !strings.Contains(diff, "-// BEGIN EXAMPLE") {
		t.Errorf("diff missing expected hunks:\n%s", diff)
	}
	if !strings.Contains(diff, "a/package.json") {
		t.Errorf("diff missing manifest edit:\n%s", diff)
	}
}
