package cleanup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ActionType mirrors the rule type that produced an action.
type ActionType string

const (
	ActionBlockDelete     ActionType = "block-delete"
	ActionLineTag         ActionType = "line-tag"
	ActionDependencyPrune ActionType = "dependency-prune"
	ActionFileDelete      ActionType = "file-delete"
)

// Action is one applied (or would-be applied, in dry-run) rule effect.
// Append-only once recorded.
type Action struct {
	Type       ActionType `json:"type"`
	Rule       string     `json:"rule"`
	File       string     `json:"file"`
	DryRun     bool       `json:"dry_run"`
	Dependency string     `json:"dependency,omitempty"`
	Blocks     int        `json:"blocks,omitempty"`
	Lines      int        `json:"lines,omitempty"`
}

// Summary aggregates action counts by effect.
type Summary struct {
	TotalActions  int `json:"total_actions"`
	BlocksRemoved int `json:"blocks_removed"`
	LinesRemoved  int `json:"lines_removed"`
	FilesDeleted  int `json:"files_deleted"`
	DepsRemoved   int `json:"deps_removed"`
}

// Report is the outcome of one cleanup run. Immutable after Finalize.
type Report struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Profile   string    `json:"profile"`
	Features  []string  `json:"features,omitempty"`
	DryRun    bool      `json:"dry_run"`
	Actions   []Action  `json:"actions"`
	Errors    []string  `json:"errors,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Summary   Summary   `json:"summary"`
	Metrics   *Metrics  `json:"metrics,omitempty"`
}

// NewReport starts an empty report for one run.
func NewReport(profile string, features []string, dryRun bool) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Profile:   profile,
		Features:  features,
		DryRun:    dryRun,
		Actions:   []Action{},
	}
}

func (r *Report) addAction(a Action) {
	r.Actions = append(r.Actions, a)
}

func (r *Report) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

func (r *Report) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Finalize computes the summary from the recorded actions.
func (r *Report) Finalize() {
	var s Summary
	s.TotalActions = len(r.Actions)
	for _, a := range r.Actions {
		switch a.Type {
		case ActionBlockDelete:
			s.BlocksRemoved += a.Blocks
			s.LinesRemoved += a.Lines
		case ActionLineTag:
			s.LinesRemoved += a.Lines
		case ActionDependencyPrune:
			s.DepsRemoved++
		case ActionFileDelete:
			s.FilesDeleted++
		}
	}
	r.Summary = s
}

// WriteJSON serializes the report to path.
func (r *Report) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
