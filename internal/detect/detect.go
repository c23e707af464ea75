// Package detect scans a project directory and reports its technology stack.
//
// Detection is manifest-driven: each supported ecosystem is recognized by its
// manifest file (package.json, pyproject.toml, go.mod, pom.xml, *.csproj,
// build.gradle). Tooling configuration (linters, formatters, test runners,
// CI workflows) is detected by well-known file names. A single unreadable
// manifest is recorded as a warning and never aborts the scan.
package detect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ReportFileName is the stack report artifact name inside the report dir.
const ReportFileName = "stack-report.json"

// Technology is one detected language/runtime ecosystem.
type Technology struct {
	Name           string `json:"name"`                      // e.g. "node", "python", "go"
	Ecosystem      string `json:"ecosystem"`                 // npm|yarn|pnpm|pip|poetry|go|maven|gradle|nuget
	Manifest       string `json:"manifest"`                  // manifest path relative to root
	Version        string `json:"version,omitempty"`         // language/toolchain version if declared
	PackageManager string `json:"package_manager,omitempty"` // node only
}

// Configuration is one detected tooling config file.
type Configuration struct {
	Name string `json:"name"` // e.g. "tsconfig", "eslint", "editorconfig"
	Path string `json:"path"`
}

// Quality summarizes test/lint/format tooling presence.
type Quality struct {
	HasTests        bool   `json:"has_tests"`
	TestFramework   string `json:"test_framework,omitempty"`
	HasLinter       bool   `json:"has_linter"`
	Linter          string `json:"linter,omitempty"`
	HasFormatter    bool   `json:"has_formatter"`
	Formatter       string `json:"formatter,omitempty"`
	HasTypeChecking bool   `json:"has_type_checking"`
}

// CI summarizes continuous-integration configuration.
type CI struct {
	HasCI         bool     `json:"has_ci"`
	Providers     []string `json:"providers,omitempty"`
	WorkflowCount int      `json:"workflow_count"`
}

// StackReport is the scan result, written to <report_dir>/stack-report.json.
type StackReport struct {
	Timestamp      time.Time       `json:"timestamp"`
	Root           string          `json:"root"`
	Technologies   []Technology    `json:"technologies"`
	Configurations []Configuration `json:"configurations"`
	Quality        Quality         `json:"quality"`
	CI             CI              `json:"ci"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// HasTechnology reports whether a technology with the given name was detected.
func (r *StackReport) HasTechnology(name string) bool {
	for _, t := range r.Technologies {
		if t.Name == name {
			return true
		}
	}
	return false
}

// HasEcosystem reports whether a technology with the given ecosystem was detected.
func (r *StackReport) HasEcosystem(eco string) bool {
	for _, t := range r.Technologies {
		if t.Ecosystem == eco {
			return true
		}
	}
	return false
}

// HasConfiguration reports whether a configuration with the given name was detected.
func (r *StackReport) HasConfiguration(name string) bool {
	for _, c := range r.Configurations {
		if c.Name == name {
			return true
		}
	}
	return false
}

// packageJSON is the subset of package.json we care about.
type packageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

func (p *packageJSON) hasDep(name string) bool {
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}

// Scan inspects dir and produces a stack report.
func Scan(dir string) (*StackReport, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	report := &StackReport{
		Timestamp: time.Now().UTC(),
		Root:      root,
	}

	scanNode(root, report)
	scanPython(root, report)
	scanGo(root, report)
	scanJVM(root, report)
	scanDotnet(root, report)
	scanConfigurations(root, report)
	scanCI(root, report)

	return report, nil
}

// exists reports whether the named file exists under root.
func exists(root string, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

func addWarning(r *StackReport, format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func scanNode(root string, r *StackReport) {
	manifest := filepath.Join(root, "package.json")
	data, err := os.ReadFile(manifest)
	if err != nil {
		if !os.IsNotExist(err) {
			addWarning(r, "package.json: %v", err)
		}
		return
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		addWarning(r, "package.json: %v", err)
		return
	}

	// Lock files discriminate the package manager; npm is the fallback.
	pm, eco := "npm", "npm"
	switch {
	case exists(root, "pnpm-lock.yaml"):
		pm, eco = "pnpm", "pnpm"
	case exists(root, "yarn.lock"):
		pm, eco = "yarn", "yarn"
	}

	r.Technologies = append(r.Technologies, Technology{
		Name:           "node",
		Ecosystem:      eco,
		Manifest:       "package.json",
		PackageManager: pm,
	})

	if pkg.hasDep("typescript") || exists(root, "tsconfig.json") {
		r.Technologies = append(r.Technologies, Technology{
			Name:      "typescript",
			Ecosystem: eco,
			Manifest:  "package.json",
		})
		r.Quality.HasTypeChecking = true
	}
	if pkg.hasDep("next") {
		r.Technologies = append(r.Technologies, Technology{Name: "nextjs", Ecosystem: eco, Manifest: "package.json"})
	}

	for _, fw := range []string{"vitest", "jest", "mocha"} {
		if pkg.hasDep(fw) {
			r.Quality.HasTests = true
			r.Quality.TestFramework = fw
			break
		}
	}
	if pkg.hasDep("eslint") {
		r.Quality.HasLinter = true
		r.Quality.Linter = "eslint"
	}
	if pkg.hasDep("prettier") {
		r.Quality.HasFormatter = true
		r.Quality.Formatter = "prettier"
	}
}

// pyprojectTOML is the subset of pyproject.toml we care about.
type pyprojectTOML struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry map[string]any `toml:"poetry"`
	} `toml:"tool"`
}

func scanPython(root string, r *StackReport) {
	hasPyproject := exists(root, "pyproject.toml")
	hasRequirements := exists(root, "requirements.txt")
	if !hasPyproject && !hasRequirements {
		return
	}

	eco, manifest := "pip", "requirements.txt"
	if hasPyproject {
		manifest = "pyproject.toml"
		data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
		if err != nil {
			addWarning(r, "pyproject.toml: %v", err)
		} else {
			var py pyprojectTOML
			if err := toml.Unmarshal(data, &py); err != nil {
				addWarning(r, "pyproject.toml: %v", err)
			} else if len(py.Tool.Poetry) > 0 {
				eco = "poetry"
			}
			if strings.Contains(string(data), "pytest") {
				r.Quality.HasTests = true
				r.Quality.TestFramework = "pytest"
			}
			if strings.Contains(string(data), "[tool.ruff]") {
				r.Quality.HasLinter = true
				r.Quality.Linter = "ruff"
			}
		}
	}

	r.Technologies = append(r.Technologies, Technology{
		Name:      "python",
		Ecosystem: eco,
		Manifest:  manifest,
	})

	if exists(root, "pytest.ini") || exists(root, "tox.ini") {
		r.Quality.HasTests = true
		if r.Quality.TestFramework == "" {
			r.Quality.TestFramework = "pytest"
		}
	}
}

func scanGo(root string, r *StackReport) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		if !os.IsNotExist(err) {
			addWarning(r, "go.mod: %v", err)
		}
		return
	}

	tech := Technology{Name: "go", Ecosystem: "go", Manifest: "go.mod"}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "go "); ok {
			tech.Version = strings.TrimSpace(v)
			break
		}
	}
	r.Technologies = append(r.Technologies, tech)

	if matches, _ := filepath.Glob(filepath.Join(root, "*_test.go")); len(matches) > 0 {
		r.Quality.HasTests = true
		r.Quality.TestFramework = "go test"
	} else if hasNestedTestFiles(root) {
		r.Quality.HasTests = true
		r.Quality.TestFramework = "go test"
	}
	if exists(root, ".golangci.yml") || exists(root, ".golangci.yaml") {
		r.Quality.HasLinter = true
		r.Quality.Linter = "golangci-lint"
	}
}

// hasNestedTestFiles does a shallow walk (two levels) looking for _test.go files.
func hasNestedTestFiles(root string) bool {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		for _, f := range sub {
			if !f.IsDir() && strings.HasSuffix(f.Name(), "_test.go") {
				return true
			}
		}
	}
	return false
}

func scanJVM(root string, r *StackReport) {
	if exists(root, "pom.xml") {
		r.Technologies = append(r.Technologies, Technology{
			Name:      "java",
			Ecosystem: "maven",
			Manifest:  "pom.xml",
		})
	}
	for _, name := range []string{"build.gradle", "build.gradle.kts"} {
		if exists(root, name) {
			r.Technologies = append(r.Technologies, Technology{
				Name:      "java",
				Ecosystem: "gradle",
				Manifest:  name,
			})
			break
		}
	}
}

func scanDotnet(root string, r *StackReport) {
	matches, err := filepath.Glob(filepath.Join(root, "*.csproj"))
	if err != nil || len(matches) == 0 {
		return
	}
	r.Technologies = append(r.Technologies, Technology{
		Name:      "dotnet",
		Ecosystem: "nuget",
		Manifest:  filepath.Base(matches[0]),
	})
}

// knownConfigs maps config names to the file names that indicate them.
var knownConfigs = []struct {
	name  string
	files []string
}{
	{"tsconfig", []string{"tsconfig.json"}},
	{"eslint", []string{"eslint.config.js", "eslint.config.mjs", ".eslintrc.json", ".eslintrc.js", ".eslintrc"}},
	{"prettier", []string{".prettierrc", ".prettierrc.json", ".prettierrc.js", "prettier.config.js"}},
	{"jest", []string{"jest.config.js", "jest.config.ts", "jest.config.json"}},
	{"vitest", []string{"vitest.config.ts", "vitest.config.js"}},
	{"editorconfig", []string{".editorconfig"}},
	{"gitignore", []string{".gitignore"}},
	{"dockerfile", []string{"Dockerfile"}},
	{"docker-compose", []string{"docker-compose.yml", "docker-compose.yaml", "compose.yaml"}},
	{"license", []string{"LICENSE", "LICENSE.md", "LICENSE.txt"}},
	{"readme", []string{"README.md", "README"}},
}

func scanConfigurations(root string, r *StackReport) {
	for _, kc := range knownConfigs {
		for _, f := range kc.files {
			if exists(root, f) {
				r.Configurations = append(r.Configurations, Configuration{Name: kc.name, Path: f})
				break
			}
		}
	}

	// Config files imply their tools even without a manifest dependency.
	if r.HasConfiguration("eslint") && !r.Quality.HasLinter {
		r.Quality.HasLinter = true
		r.Quality.Linter = "eslint"
	}
	if r.HasConfiguration("prettier") && !r.Quality.HasFormatter {
		r.Quality.HasFormatter = true
		r.Quality.Formatter = "prettier"
	}
	if (r.HasConfiguration("jest") || r.HasConfiguration("vitest")) && !r.Quality.HasTests {
		r.Quality.HasTests = true
		if r.Quality.TestFramework == "" {
			if r.HasConfiguration("vitest") {
				r.Quality.TestFramework = "vitest"
			} else {
				r.Quality.TestFramework = "jest"
			}
		}
	}
}

func scanCI(root string, r *StackReport) {
	workflows, err := os.ReadDir(filepath.Join(root, ".github", "workflows"))
	if err == nil {
		count := 0
		for _, w := range workflows {
			if !w.IsDir() && (strings.HasSuffix(w.Name(), ".yml") || strings.HasSuffix(w.Name(), ".yaml")) {
				count++
			}
		}
		if count > 0 {
			r.CI.HasCI = true
			r.CI.Providers = append(r.CI.Providers, "github-actions")
			r.CI.WorkflowCount += count
		}
	}
	if exists(root, ".gitlab-ci.yml") {
		r.CI.HasCI = true
		r.CI.Providers = append(r.CI.Providers, "gitlab-ci")
		r.CI.WorkflowCount++
	}
}

// Write serializes the report to <root>/<reportDir>/stack-report.json.
func Write(r *StackReport, reportDir string) (string, error) {
	dir := filepath.Join(r.Root, reportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	path := filepath.Join(dir, ReportFileName)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write stack report: %w", err)
	}
	return path, nil
}
