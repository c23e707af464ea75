package detect

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file with parent dirs under root.
func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanNodeProject(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, dir, "package.json", `{
  "name": "demo",
  "dependencies": { "next": "14.0.0" },
  "devDependencies": { "typescript": "5.3.0", "vitest": "1.0.0", "eslint": "8.50.0" }
}`)
	writeFile(t, dir, "pnpm-lock.yaml", "lockfileVersion: 6\n")
	writeFile(t, dir, "tsconfig.json", "{}")

	report, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	for _, name := range []string{"node", "typescript", "nextjs"} {
		if !report.HasTechnology(name) {
			t.Errorf("expected technology %q, got %+v", name, report.Technologies)
		}
	}
	if !report.HasEcosystem("pnpm") {
		t.Errorf("expected pnpm ecosystem, got %+v", report.Technologies)
	}
	if !report.Quality.HasTests || report.Quality.TestFramework != "vitest" {
		t.Errorf("expected vitest tests, got %+v", report.Quality)
	}
	if !report.Quality.HasLinter || report.Quality.Linter != "eslint" {
		t.Errorf("expected eslint, got %+v", report.Quality)
	}
	if !report.Quality.HasTypeChecking {
		t.Error("expected type checking detected")
	}
}

func TestScanPythonPoetry(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, dir, "pyproject.toml", `[project]
name = "demo"

[tool.poetry]
name = "demo"

[tool.poetry.dev-dependencies]
pytest = "^7.0"
`)

	report, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !report.HasEcosystem("poetry") {
		t.Errorf("expected poetry ecosystem, got %+v", report.Technologies)
	}
	if !report.Quality.HasTests || report.Quality.TestFramework != "pytest" {
		t.Errorf("expected pytest, got %+v", report.Quality)
	}
}

func TestScanPipRequirements(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, dir, "requirements.txt", "flask==2.0.1\n")

	report, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !report.HasEcosystem("pip") {
		t.Errorf("expected pip ecosystem, got %+v", report.Technologies)
	}
}

func TestScanGoProject(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, dir, "go.mod", "module example.com/demo\n\ngo 1.22\n")
	writeFile(t, dir, "pkg/thing/thing_test.go", "package thing\n")
	writeFile(t, dir, ".golangci.yml", "linters: {}\n")

	report, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !report.HasEcosystem("go") {
		t.Fatalf("expected go ecosystem, got %+v", report.Technologies)
	}
	if report.Technologies[0].Version != "1.22" {
		t.Errorf("go version = %q, want %q", report.Technologies[0].Version, "1.22")
	}
	if !report.Quality.HasTests {
		t.Error("expected tests detected from nested _test.go")
	}
	if report.Quality.Linter != "golangci-lint" {
		t.Errorf("linter = %q, want golangci-lint", report.Quality.Linter)
	}
}

func TestScanConfigurationsAndCI(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, dir, ".editorconfig", "root = true\n")
	writeFile(t, dir, ".gitignore", "node_modules/\n")
	writeFile(t, dir, "README.md", "# demo\n")
	writeFile(t, dir, ".github/workflows/ci.yml", "on: push\n")
	writeFile(t, dir, ".gitlab-ci.yml", "stages: [test]\n")

	report, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, name := range []string{"editorconfig", "gitignore", "readme"} {
		if !report.HasConfiguration(name) {
			t.Errorf("expected configuration %q", name)
		}
	}
	if !report.CI.HasCI || report.CI.WorkflowCount != 2 {
		t.Errorf("CI = %+v, want 2 workflows across providers", report.CI)
	}
}

func TestScanEmptyProject(t *testing.T) {
	t.Parallel()
	report, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Technologies) != 0 {
		t.Errorf("expected no technologies, got %+v", report.Technologies)
	}
	if report.CI.HasCI {
		t.Error("expected no CI")
	}
}

func TestScanMalformedManifestIsWarning(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{not json")

	report, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan should not fail on a malformed manifest: %v", err)
	}
	if len(report.Warnings) == 0 {
		t.Error("expected a warning for malformed package.json")
	}
	if report.HasTechnology("node") {
		t.Error("malformed package.json should not register node")
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo\n\ngo 1.22\n")

	report, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	path, err := Write(report, ".devenv")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, ".devenv", ReportFileName) {
		t.Errorf("unexpected report path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var round StackReport
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if !round.HasEcosystem("go") {
		t.Errorf("round-tripped report lost technologies: %+v", round.Technologies)
	}
}
