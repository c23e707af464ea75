package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devenv-tools/devenv/internal/cleanup"
	"github.com/devenv-tools/devenv/internal/log"
	"github.com/devenv-tools/devenv/internal/output"
	"github.com/devenv-tools/devenv/internal/ui/styles"
)

type cleanupOptions struct {
	apply       bool
	profile     string
	features    []string
	only        []string
	exclude     []string
	keep        []string
	parallel    bool
	concurrency int
	noCache     bool
	performance bool
	diff        bool
	reportPath  string
	configPath  string
}

// runCleanup resolves rules and executes one cleanup run.
func runCleanup(ctx context.Context, dir string, opts cleanupOptions) error {
	l := log.FromContext(ctx)
	p := output.FromContext(ctx)

	configPath, err := resolveRuleConfig(dir, opts.configPath)
	if err != nil {
		return err
	}
	l.Debug("rule config resolved", "path", configPath)

	var cache *cleanup.Cache
	if cfg.Cleanup.Cache && !opts.noCache {
		cacheDir := cfg.Cleanup.CacheDir
		if cacheDir == "" {
			cacheDir = filepath.Join(dir, cfg.ReportDir, "cache")
		}
		cache, err = cleanup.NewCache(cacheDir, cfg.Cleanup.CacheTTLDuration(), cfg.Cleanup.CacheMaxBytes)
		if err != nil {
			l.Printf("Warning: cache disabled: %v\n", err)
			cache = nil
		}
	}

	ruleCfg, err := cleanup.LoadConfigCached(configPath, cache)
	if err != nil {
		return err
	}

	profile := opts.profile
	if profile == "" {
		profile = cfg.Cleanup.Profile
	}
	rules, err := ruleCfg.ResolveProfile(profile)
	if err != nil {
		return err
	}
	rules, err = cleanup.FilterRules(rules, opts.only, opts.exclude, opts.features)
	if err != nil {
		return err
	}
	l.Debug("rules resolved", "profile", profile, "rules", len(rules))

	concurrency := opts.concurrency
	if concurrency == 0 {
		concurrency = cfg.Cleanup.Concurrency
	}

	runOpts := cleanup.Options{
		Root:        dir,
		Profile:     profile,
		Features:    opts.features,
		Keep:        opts.keep,
		DryRun:      !opts.apply,
		Parallel:    opts.parallel,
		Concurrency: concurrency,
		Cache:       cache,
	}
	if opts.performance {
		runOpts.Metrics = cleanup.NewMetrics()
	}
	if opts.diff {
		runOpts.DiffWriter = p.Writer()
	}

	report, err := cleanup.Run(ctx, rules, runOpts)
	if err != nil {
		return err
	}

	printCleanupSummary(p, report)
	if opts.performance {
		p.Println(styles.MutedStyle.Render(runOpts.Metrics.String()))
	}

	if opts.reportPath != "" {
		if err := report.WriteJSON(opts.reportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		l.Printf("Report written to %s\n", opts.reportPath)
	}

	if !opts.apply && report.Summary.TotalActions > 0 {
		p.Println("\nRun with --apply to make these changes.")
	}
	return nil
}

// resolveRuleConfig picks the explicit --config path or the first default
// config name present in the project dir.
func resolveRuleConfig(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", &cleanup.ConfigError{Path: explicit, Err: err}
		}
		return explicit, nil
	}
	for _, name := range cleanup.DefaultConfigNames {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &cleanup.ConfigError{
		Path: dir,
		Err:  errors.New("no cleanup config found (looked for " + cleanup.DefaultConfigNames[0] + ")"),
	}
}

// printCleanupSummary renders the per-run human summary.
func printCleanupSummary(p *output.Printer, r *cleanup.Report) {
	mode := "apply"
	if r.DryRun {
		mode = "dry-run"
	}

	if r.Summary.TotalActions == 0 {
		p.Printf("%s Nothing to clean (%s)\n", styles.OK(), mode)
	} else {
		p.Printf("%s %d actions (%s):\n", styles.OK(), r.Summary.TotalActions, mode)
		if r.Summary.BlocksRemoved > 0 {
			p.Printf("  %d blocks removed (%d lines)\n", r.Summary.BlocksRemoved, r.Summary.LinesRemoved)
		} else if r.Summary.LinesRemoved > 0 {
			p.Printf("  %d lines removed\n", r.Summary.LinesRemoved)
		}
		if r.Summary.DepsRemoved > 0 {
			p.Printf("  %d dependencies pruned\n", r.Summary.DepsRemoved)
		}
		if r.Summary.FilesDeleted > 0 {
			p.Printf("  %d files/directories deleted\n", r.Summary.FilesDeleted)
		}
	}

	for _, w := range r.Warnings {
		p.Println("  " + styles.Warn() + " " + w)
	}
	for _, e := range r.Errors {
		p.Println("  " + styles.Fail() + " " + e)
	}
}
