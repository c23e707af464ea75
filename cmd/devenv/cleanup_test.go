package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devenv-tools/devenv/internal/config"
	"github.com/devenv-tools/devenv/internal/output"
)

const cleanupTestConfig = `
profiles:
  default:
    rules:
      - id: strip-demo
        type: block-delete
        glob: "**/*.ts"
        start_marker: "TEMPLATE-ONLY:START"
        end_marker: "TEMPLATE-ONLY:END"
`

func setupCleanupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"devenv.cleanup.yaml": cleanupTestConfig,
		"src/app.ts":          "// TEMPLATE-ONLY:START\ndemo();\n// TEMPLATE-ONLY:END\nbar();\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunCleanupDryRunThenApply(t *testing.T) {
	cfg = config.Default()

	dir := setupCleanupProject(t)
	appPath := filepath.Join(dir, "src", "app.ts")

	var buf strings.Builder
	ctx := output.WithPrinter(context.Background(), &buf)

	if err := runCleanup(ctx, dir, cleanupOptions{noCache: true}); err != nil {
		t.Fatalf("dry-run error = %v", err)
	}
	got, err := os.ReadFile(appPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "demo()") {
		t.Error("dry-run modified the file")
	}
	if !strings.Contains(buf.String(), "--apply") {
		t.Errorf("dry-run output missing apply hint:\n%s", buf.String())
	}

	if err := runCleanup(ctx, dir, cleanupOptions{apply: true, noCache: true}); err != nil {
		t.Fatalf("apply error = %v", err)
	}
	got, err = os.ReadFile(appPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "bar();\n" {
		t.Errorf("app.ts = %q, want %q", got, "bar();\n")
	}
}

func TestRunCleanupWritesReport(t *testing.T) {
	cfg = config.Default()

	dir := setupCleanupProject(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	ctx := output.WithPrinter(context.Background(), &strings.Builder{})
	err := runCleanup(ctx, dir, cleanupOptions{noCache: true, reportPath: reportPath})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestRunCleanupMissingConfig(t *testing.T) {
	cfg = config.Default()

	ctx := output.WithPrinter(context.Background(), &strings.Builder{})
	err := runCleanup(ctx, t.TempDir(), cleanupOptions{noCache: true})
	if err == nil || !strings.Contains(err.Error(), "no cleanup config found") {
		t.Fatalf("error = %v, want missing-config failure", err)
	}
}

func TestRunCleanupUnknownProfile(t *testing.T) {
	cfg = config.Default()

	dir := setupCleanupProject(t)
	ctx := output.WithPrinter(context.Background(), &strings.Builder{})
	err := runCleanup(ctx, dir, cleanupOptions{noCache: true, profile: "defualt"})
	if err == nil || !strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("error = %v, want fuzzy suggestion", err)
	}
}

func TestResolveRuleConfig(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, ".devenv")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(nested, "cleanup.yaml")
	if err := os.WriteFile(path, []byte(cleanupTestConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveRuleConfig(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("resolved %q, want %q", got, path)
	}

	if _, err := resolveRuleConfig(dir, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing config did not fail")
	}
}
