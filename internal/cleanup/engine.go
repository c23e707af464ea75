// Package cleanup applies declarative template-cleanup rules to a project
// tree: marker-delimited block removal, tagged-line removal, dependency
// pruning across package ecosystems, and file deletion by glob.
//
// Runs are dry-run by default and idempotent: applying the same rules to an
// already-clean tree records zero actions and leaves every byte in place.
package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/devenv-tools/devenv/internal/cleanup/manifest"
	"github.com/devenv-tools/devenv/internal/log"
)

// Options configures one cleanup run.
type Options struct {
	Root        string
	Profile     string
	Features    []string
	Keep        []string // globs that force-skip deletion
	DryRun      bool
	Parallel    bool
	Concurrency int       // 0 = NumCPU
	Cache       *Cache    // nil disables caching
	Metrics     *Metrics  // nil disables timing
	DiffWriter  io.Writer // non-nil: print unified diffs of pending edits
}

// Run executes the rules against the tree and returns the report.
// Per-file failures are recorded in the report; only top-level failures
// (unreadable root) return an error.
func Run(ctx context.Context, rules []Rule, opts Options) (*Report, error) {
	l := log.FromContext(ctx)
	report := NewReport(opts.Profile, opts.Features, opts.DryRun)

	opts.Metrics.StartPhase()
	tree, err := WalkTree(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", opts.Root, err)
	}
	opts.Metrics.EndPhase("walk")
	l.Debug("walked tree", "files", len(tree.Files), "rules", len(rules))

	var textRules, pruneRules, deleteRules []Rule
	for _, r := range rules {
		switch r.Type {
		case RuleBlockDelete, RuleLineTag:
			textRules = append(textRules, r)
		case RuleDependencyPrune:
			pruneRules = append(pruneRules, r)
		case RuleFileGlobDelete:
			deleteRules = append(deleteRules, r)
		}
	}

	opts.Metrics.StartPhase()
	runTextRules(tree, textRules, opts, report, l)
	opts.Metrics.EndPhase("text-rules")

	opts.Metrics.StartPhase()
	for _, r := range pruneRules {
		runPruneRule(tree, r, opts, report, l)
	}
	opts.Metrics.EndPhase("dependency-prune")

	opts.Metrics.StartPhase()
	for _, r := range deleteRules {
		runDeleteRule(tree, r, opts, report, l)
	}
	opts.Metrics.EndPhase("file-glob-delete")

	report.Metrics = opts.Metrics
	report.Finalize()
	return report, nil
}

// fileResult is one file's outcome from the text-rule phase. Results are
// written into a pre-sized slice by input index, so the final action order
// is deterministic regardless of worker completion order.
type fileResult struct {
	file     string
	actions  []Action
	err      error
	before   string
	after    string
	changed  bool
	cacheHit bool
}

// textPayload is the cached result of the text-rule transformation.
// DryRun is stamped onto replayed actions, never stored.
type textPayload struct {
	Content string   `json:"content"`
	Actions []Action `json:"actions"`
}

func runTextRules(tree *Tree, rules []Rule, opts Options, report *Report, l *log.Logger) {
	if len(rules) == 0 {
		return
	}

	// Work items: files matched by at least one text rule. Each worker owns
	// a disjoint file, so no two workers ever write the same path.
	type workItem struct {
		file  string
		rules []Rule
	}
	var items []workItem
	for _, f := range tree.Files {
		var matched []Rule
		for _, r := range rules {
			if MatchGlob(r.Glob, f) {
				matched = append(matched, r)
			}
		}
		if len(matched) > 0 {
			items = append(items, workItem{file: f, rules: matched})
		}
	}
	if len(items) == 0 {
		return
	}

	// The rule set participates in the cache key: editing rules must never
	// replay a result computed under different rules.
	sigJSON, _ := json.Marshal(rules)
	rulesSig := HashBytes(sigJSON)

	workers := 1
	if opts.Parallel && len(items) > parallelThreshold {
		workers = poolSize(opts.Concurrency)
	}
	l.Debug("text rule pass", "items", len(items), "workers", workers)

	results := make([]fileResult, len(items))
	runIndexed(len(items), workers, func(i int) {
		res := transformFile(opts.Root, items[i].file, items[i].rules, rulesSig, opts.Cache)
		if res.changed && !opts.DryRun && res.err == nil {
			if err := writeFilePreservingMode(filepath.Join(opts.Root, items[i].file), []byte(res.after)); err != nil {
				res.err = &FileOperationError{Op: "write", File: items[i].file, Err: err}
				res.actions = nil
			}
		}
		results[i] = res
	})

	for _, res := range results {
		if res.err != nil {
			report.addError(res.err)
			continue
		}
		for _, a := range res.actions {
			a.DryRun = opts.DryRun
			report.addAction(a)
		}
		if res.changed && opts.DiffWriter != nil {
			printDiff(opts.DiffWriter, res.file, res.before, res.after)
		}
		if opts.Metrics != nil {
			opts.Metrics.FilesRead++
			if res.cacheHit {
				opts.Metrics.CacheHits++
			} else {
				opts.Metrics.CacheMiss++
			}
		}
	}
}

// transformFile applies the matched text rules to one file in memory.
// An unterminated block marker skips the whole file: a partial edit under
// a broken marker pair is worse than no edit.
func transformFile(root, file string, rules []Rule, rulesSig string, cache *Cache) fileResult {
	res := fileResult{file: file}

	data, err := os.ReadFile(filepath.Join(root, file))
	if err != nil {
		res.err = &FileOperationError{Op: "read", File: file, Err: err}
		return res
	}
	res.before = string(data)

	contentHash := HashBytes([]byte(rulesSig + "|" + res.before))
	var cached textPayload
	if cache.Get("text:"+file, contentHash, &cached) {
		res.cacheHit = true
		res.after = cached.Content
		res.actions = cached.Actions
		res.changed = res.after != res.before
		return res
	}

	content := res.before
	for _, r := range rules {
		switch r.Type {
		case RuleBlockDelete:
			out, blocks, lines, err := RemoveBlocks(content, r.StartMarker, r.EndMarker)
			if err != nil {
				res.err = &FileOperationError{Op: "transform", File: file, Rule: r.ID, Err: err}
				res.actions = nil
				return res
			}
			if blocks > 0 {
				res.actions = append(res.actions, Action{
					Type: ActionBlockDelete, Rule: r.ID, File: file, Blocks: blocks, Lines: lines,
				})
				content = out
			}
		case RuleLineTag:
			out, lines := RemoveTaggedLines(content, r.Tag)
			if lines > 0 {
				res.actions = append(res.actions, Action{
					Type: ActionLineTag, Rule: r.ID, File: file, Lines: lines,
				})
				content = out
			}
		}
	}
	res.after = content
	res.changed = content != res.before

	_ = cache.Put("text:"+file, contentHash, textPayload{Content: res.after, Actions: res.actions})
	return res
}

// runPruneRule edits the ecosystem's manifest and drops stale lock files.
func runPruneRule(tree *Tree, r Rule, opts Options, report *Report, l *log.Logger) {
	eco, err := manifest.ParseEcosystem(r.Ecosystem)
	if err != nil {
		// Unreachable after config validation, but rules may arrive by API.
		report.addError(&ConfigError{Err: err})
		return
	}

	manifestFile := findManifest(tree, eco)
	if manifestFile == "" {
		l.Debug("no manifest for ecosystem", "rule", r.ID, "ecosystem", r.Ecosystem)
		return
	}

	path := filepath.Join(opts.Root, manifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		report.addError(&FileOperationError{Op: "read", File: manifestFile, Rule: r.ID, Err: err})
		return
	}

	res, err := eco.Remove(data, r.RemoveDeps, r.RemoveDevDeps)
	if err != nil {
		report.addError(&ValidationError{File: manifestFile, Err: err})
		return
	}

	for _, name := range res.Unknown {
		report.addWarning("rule %s: dependency %q not found in %s", r.ID, name, manifestFile)
	}
	if !res.Modified {
		return
	}

	for _, name := range res.Removed {
		report.addAction(Action{
			Type: ActionDependencyPrune, Rule: r.ID, File: manifestFile,
			Dependency: name, DryRun: opts.DryRun,
		})
	}
	if opts.DiffWriter != nil {
		printDiff(opts.DiffWriter, manifestFile, string(data), string(res.Content))
	}
	if !opts.DryRun {
		if err := writeFilePreservingMode(path, res.Content); err != nil {
			report.addError(&FileOperationError{Op: "write", File: manifestFile, Rule: r.ID, Err: err})
			return
		}
	}

	// The manifest changed, so the lock no longer matches it.
	for _, lock := range eco.LockFiles() {
		if !fileExists(opts.Root, lock) || matchAny(opts.Keep, lock) {
			continue
		}
		report.addAction(Action{Type: ActionFileDelete, Rule: r.ID, File: lock, DryRun: opts.DryRun})
		if !opts.DryRun {
			if err := os.Remove(filepath.Join(opts.Root, lock)); err != nil {
				report.addError(&FileOperationError{Op: "delete", File: lock, Rule: r.ID, Err: err})
			}
		}
	}
}

// findManifest locates the ecosystem's manifest at the tree root.
func findManifest(tree *Tree, eco manifest.Ecosystem) string {
	for _, name := range eco.ManifestNames() {
		for _, f := range tree.Files {
			if f == name {
				return f
			}
		}
	}
	if glob := eco.ManifestGlob(); glob != "" {
		for _, f := range tree.Files {
			if !strings.Contains(f, "/") && MatchGlob(glob, f) {
				return f
			}
		}
	}
	return ""
}

// runDeleteRule removes files and directories matching the rule glob.
func runDeleteRule(tree *Tree, r Rule, opts Options, report *Report, l *log.Logger) {
	// Directories first so files under a deleted directory are skipped
	// instead of double-counted.
	var targets []string
	for _, d := range tree.Dirs {
		if MatchGlob(r.Glob, d) {
			targets = append(targets, d)
		}
	}
	sort.Strings(targets)
	var deletedDirs []string
	for _, d := range targets {
		if underAny(deletedDirs, d) {
			continue
		}
		deletedDirs = append(deletedDirs, d)
	}

	var matched []string
	matched = append(matched, deletedDirs...)
	for _, f := range tree.Files {
		if MatchGlob(r.Glob, f) && !underAny(deletedDirs, f) {
			matched = append(matched, f)
		}
	}

	for _, target := range matched {
		if matchAny(opts.Keep, target) {
			l.Debug("kept by --keep", "rule", r.ID, "path", target)
			continue
		}
		report.addAction(Action{Type: ActionFileDelete, Rule: r.ID, File: target, DryRun: opts.DryRun})
		if !opts.DryRun {
			if err := os.RemoveAll(filepath.Join(opts.Root, target)); err != nil {
				report.addError(&FileOperationError{Op: "delete", File: target, Rule: r.ID, Err: err})
			}
		}
	}
}

// underAny reports whether path is equal to or nested under any prefix dir.
func underAny(dirs []string, path string) bool {
	for _, d := range dirs {
		if path != d && strings.HasPrefix(path, d+"/") {
			return true
		}
	}
	return false
}

func printDiff(w io.Writer, file, before, after string) {
	fmt.Fprint(w, udiff.Unified("a/"+file, "b/"+file, before, after))
}

// writeFilePreservingMode rewrites a file keeping its permission bits.
func writeFilePreservingMode(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
