package doctor

import (
	"os"
	"path/filepath"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/gap"
)

// Fix action names understood by applyFixes.
const (
	fixCreateEditorconfig = "create_editorconfig"
	fixCreateGitignore    = "create_gitignore"
	fixCreateReportDir    = "create_report_dir"
	fixSeedCIWorkflow     = "seed_ci_workflow"
)

// checkStructure verifies baseline repository files.
func checkStructure(stack *detect.StackReport) []Issue {
	var issues []Issue
	if len(stack.Technologies) == 0 {
		issues = append(issues, Issue{
			ID:          "no-stack",
			Description: "no recognized technology stack (no manifest found)",
			Severity:    gap.SeverityCritical,
		})
	}
	if !stack.HasConfiguration("readme") {
		issues = append(issues, Issue{
			ID:          "missing-readme",
			Description: "no README file",
			Severity:    gap.SeverityMedium,
		})
	}
	if !stack.HasConfiguration("gitignore") {
		issues = append(issues, Issue{
			ID:          "missing-gitignore",
			Description: "no .gitignore file",
			Severity:    gap.SeverityHigh,
			FixAction:   fixCreateGitignore,
		})
	}
	if !stack.HasConfiguration("license") {
		issues = append(issues, Issue{
			ID:          "missing-license",
			Description: "no LICENSE file",
			Severity:    gap.SeverityLow,
		})
	}
	return issues
}

// checkHygiene verifies editor and workspace consistency.
func checkHygiene(root, reportDir string, stack *detect.StackReport) []Issue {
	var issues []Issue
	if !stack.HasConfiguration("editorconfig") {
		issues = append(issues, Issue{
			ID:          "missing-editorconfig",
			Description: "no .editorconfig, editors will disagree on whitespace",
			Severity:    gap.SeverityLow,
			FixAction:   fixCreateEditorconfig,
		})
	}
	if info, err := os.Stat(filepath.Join(root, reportDir)); err != nil || !info.IsDir() {
		issues = append(issues, Issue{
			ID:          "missing-report-dir",
			Description: "report directory " + reportDir + "/ does not exist",
			Severity:    gap.SeverityLow,
			FixAction:   fixCreateReportDir,
		})
	}
	for _, w := range stack.Warnings {
		issues = append(issues, Issue{
			ID:          "manifest-warning",
			Description: w,
			Severity:    gap.SeverityMedium,
		})
	}
	issues = append(issues, checkLockFiles(root, stack)...)
	return issues
}

// lockFileFor maps an ecosystem to the lock file its manifest should have.
var lockFileFor = map[string]string{
	"npm":    "package-lock.json",
	"yarn":   "yarn.lock",
	"pnpm":   "pnpm-lock.yaml",
	"poetry": "poetry.lock",
	"go":     "go.sum",
}

// checkLockFiles flags manifests without a matching lock file.
// Unpinned dependencies make builds unreproducible.
func checkLockFiles(root string, stack *detect.StackReport) []Issue {
	var issues []Issue
	for _, tech := range stack.Technologies {
		lock, ok := lockFileFor[tech.Ecosystem]
		if !ok {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, lock)); err == nil {
			continue
		}
		issues = append(issues, Issue{
			ID:          "missing-lockfile",
			Description: tech.Manifest + " has no " + lock + ", builds are not reproducible",
			Severity:    gap.SeverityMedium,
		})
	}
	return issues
}

// checkTooling verifies test, lint and format coverage.
func checkTooling(stack *detect.StackReport) []Issue {
	var issues []Issue
	if len(stack.Technologies) == 0 {
		return nil // no-stack already reported, tooling checks would only pile on
	}
	if !stack.Quality.HasTests {
		issues = append(issues, Issue{
			ID:          "no-tests",
			Description: "no test setup detected",
			Severity:    gap.SeverityCritical,
		})
	}
	if !stack.Quality.HasLinter {
		issues = append(issues, Issue{
			ID:          "no-linter",
			Description: "no linter configured",
			Severity:    gap.SeverityHigh,
		})
	}
	// gofmt ships with the toolchain, so a pure-Go project never needs a
	// formatter config.
	pureGo := len(stack.Technologies) == 1 && stack.Technologies[0].Ecosystem == "go"
	if !stack.Quality.HasFormatter && !pureGo {
		issues = append(issues, Issue{
			ID:          "no-formatter",
			Description: "no code formatter configured",
			Severity:    gap.SeverityMedium,
		})
	}
	return issues
}

// checkCI verifies continuous-integration wiring.
func checkCI(stack *detect.StackReport) []Issue {
	var issues []Issue
	if len(stack.Technologies) == 0 {
		return nil
	}
	if !stack.CI.HasCI {
		issues = append(issues, Issue{
			ID:          "no-ci",
			Description: "no CI configuration detected",
			Severity:    gap.SeverityHigh,
			FixAction:   fixSeedCIWorkflow,
		})
	} else if stack.CI.WorkflowCount == 0 {
		issues = append(issues, Issue{
			ID:          "empty-ci",
			Description: "CI directory exists but contains no workflows",
			Severity:    gap.SeverityMedium,
		})
	}
	return issues
}
