package doctor

import (
	"os"
	"path/filepath"

	"github.com/devenv-tools/devenv/internal/detect"
	"github.com/devenv-tools/devenv/internal/output"
)

const editorconfigTemplate = `root = true

[*]
charset = utf-8
end_of_line = lf
insert_final_newline = true
indent_style = space
indent_size = 2
trim_trailing_whitespace = true
`

// gitignoreFor returns ecosystem-appropriate ignore patterns.
func gitignoreFor(stack *detect.StackReport) string {
	out := "# OS\n.DS_Store\n"
	if stack.HasEcosystem("npm") || stack.HasEcosystem("yarn") || stack.HasEcosystem("pnpm") {
		out += "\n# Node\nnode_modules/\ndist/\n"
	}
	if stack.HasEcosystem("pip") || stack.HasEcosystem("poetry") {
		out += "\n# Python\n__pycache__/\n*.pyc\n.venv/\n"
	}
	if stack.HasEcosystem("go") {
		out += "\n# Go\nbin/\n*.test\n"
	}
	if stack.HasEcosystem("maven") || stack.HasEcosystem("gradle") {
		out += "\n# JVM\ntarget/\nbuild/\n*.class\n"
	}
	if stack.HasEcosystem("nuget") {
		out += "\n# .NET\nbin/\nobj/\n"
	}
	return out
}

// ciWorkflowFor returns a minimal GitHub Actions workflow for the stack.
func ciWorkflowFor(stack *detect.StackReport) string {
	head := `name: ci
on:
  push:
    branches: [main]
  pull_request:

jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
`
	switch {
	case stack.HasEcosystem("go"):
		return head + `      - uses: actions/setup-go@v5
        with:
          go-version: stable
      - run: go build ./...
      - run: go test ./...
`
	case stack.HasEcosystem("pip") || stack.HasEcosystem("poetry"):
		return head + `      - uses: actions/setup-python@v5
        with:
          python-version: "3.12"
      - run: pip install -r requirements.txt
      - run: pytest
`
	case stack.HasEcosystem("npm") || stack.HasEcosystem("yarn") || stack.HasEcosystem("pnpm"):
		return head + `      - uses: actions/setup-node@v4
        with:
          node-version: 22
      - run: npm ci
      - run: npm test
`
	default:
		return head + `      - run: echo "add build and test steps"
`
	}
}

// applyFixes applies each issue's fix action. Files that appeared since the
// check ran are left alone.
func applyFixes(p *output.Printer, root, reportDir string, stack *detect.StackReport, issues []Issue) (fixed, failed int) {
	writeNew := func(rel, content string) error {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, []byte(content), 0o644)
	}

	for _, issue := range issues {
		var err error
		var created string
		switch issue.FixAction {
		case fixCreateEditorconfig:
			created = ".editorconfig"
			err = writeNew(created, editorconfigTemplate)
		case fixCreateGitignore:
			created = ".gitignore"
			err = writeNew(created, gitignoreFor(stack))
		case fixCreateReportDir:
			created = reportDir + "/"
			err = os.MkdirAll(filepath.Join(root, reportDir), 0o755)
		case fixSeedCIWorkflow:
			created = ".github/workflows/ci.yml"
			err = writeNew(created, ciWorkflowFor(stack))
		default:
			continue
		}
		if err != nil {
			p.Printf("  ✗ Failed to create %s: %v\n", created, err)
			failed++
			continue
		}
		p.Printf("  ✓ Created %s\n", created)
		fixed++
	}
	return fixed, failed
}
