// Package manifest edits package manifests for dependency pruning.
//
// The set of ecosystems is fixed and small, so dispatch is a closed tagged
// variant rather than an open adapter hierarchy. Each ecosystem knows its
// manifest file name(s), how to remove named dependencies from the manifest
// text, and which lock files become stale after an edit.
package manifest

import (
	"fmt"
	"strings"
)

// Ecosystem identifies one supported package manager.
type Ecosystem string

const (
	NPM    Ecosystem = "npm"
	Yarn   Ecosystem = "yarn"
	PNPM   Ecosystem = "pnpm"
	Pip    Ecosystem = "pip"
	Poetry Ecosystem = "poetry"
	Go     Ecosystem = "go"
	Maven  Ecosystem = "maven"
	Gradle Ecosystem = "gradle"
	NuGet  Ecosystem = "nuget"
)

// All lists every supported ecosystem.
var All = []Ecosystem{NPM, Yarn, PNPM, Pip, Poetry, Go, Maven, Gradle, NuGet}

// ParseEcosystem validates an ecosystem name from config.
func ParseEcosystem(name string) (Ecosystem, error) {
	for _, e := range All {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown ecosystem %q", name)
}

// ManifestNames returns candidate manifest file names, first match wins.
func (e Ecosystem) ManifestNames() []string {
	switch e {
	case NPM, Yarn, PNPM:
		return []string{"package.json"}
	case Pip:
		return []string{"requirements.txt"}
	case Poetry:
		return []string{"pyproject.toml"}
	case Go:
		return []string{"go.mod"}
	case Maven:
		return []string{"pom.xml"}
	case Gradle:
		return []string{"build.gradle", "build.gradle.kts"}
	case NuGet:
		return nil // resolved by *.csproj glob
	}
	return nil
}

// ManifestGlob returns a glob for ecosystems without a fixed manifest name.
func (e Ecosystem) ManifestGlob() string {
	if e == NuGet {
		return "*.csproj"
	}
	return ""
}

// LockFiles returns lock files that become stale after a manifest edit.
func (e Ecosystem) LockFiles() []string {
	switch e {
	case NPM:
		return []string{"package-lock.json"}
	case Yarn:
		return []string{"yarn.lock"}
	case PNPM:
		return []string{"pnpm-lock.yaml"}
	case Poetry:
		return []string{"poetry.lock"}
	case Go:
		return []string{"go.sum"}
	case Gradle:
		return []string{"gradle.lockfile"}
	}
	return nil
}

// Result is the outcome of one manifest edit.
type Result struct {
	Content  []byte   // edited manifest content
	Modified bool     // false means a no-op (nothing to write)
	Removed  []string // dependency names actually removed
	Unknown  []string // requested names not present in the manifest
}

// Remove deletes the named dependencies from manifest content.
// Names absent from the manifest are reported in Result.Unknown, not errors:
// pruning is best-effort, but the caller surfaces unknowns as warnings.
func (e Ecosystem) Remove(content []byte, deps, devDeps []string) (*Result, error) {
	switch e {
	case NPM, Yarn, PNPM:
		return removePackageJSON(content, deps, devDeps)
	case Pip:
		return removeRequirements(content, append(deps, devDeps...)), nil
	case Poetry:
		return removePoetry(content, deps, devDeps), nil
	case Go:
		return removeGoMod(content, append(deps, devDeps...)), nil
	case Maven:
		return removePom(content, append(deps, devDeps...)), nil
	case Gradle:
		return removeGradle(content, append(deps, devDeps...)), nil
	case NuGet:
		return removeCsproj(content, append(deps, devDeps...)), nil
	}
	return nil, fmt.Errorf("unknown ecosystem %q", e)
}

// splitLines preserves trailing-newline structure: content is split on \n
// and rejoined with \n, so the final byte layout survives a no-op.
func splitLines(content []byte) []string {
	return strings.Split(string(content), "\n")
}

func joinLines(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// markUnknown fills Result.Unknown with requested names not in removed.
func markUnknown(res *Result, requested []string) {
	removed := make(map[string]bool, len(res.Removed))
	for _, r := range res.Removed {
		removed[r] = true
	}
	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if !removed[name] && !seen[name] {
			res.Unknown = append(res.Unknown, name)
			seen[name] = true
		}
	}
}
