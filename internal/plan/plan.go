// Package plan turns gaps into a prioritized hardening plan.
//
// Gaps are consumed as typed values straight from the analyzer; the plan
// never re-parses rendered markdown.
package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devenv-tools/devenv/internal/gap"
)

// Task is one prioritized piece of work.
type Task struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Category  gap.Category `json:"category"`
	Severity  gap.Severity `json:"severity"`
	Effort    gap.Effort   `json:"effort"`
	Priority  int          `json:"priority"`
	Detail    string       `json:"detail"`
	Snippet   string       `json:"snippet,omitempty"`
	DependsOn []string     `json:"depends_on,omitempty"`
}

// Plan is the ordered task list.
type Plan struct {
	GeneratedAt time.Time `json:"generated_at"`
	Tasks       []Task    `json:"tasks"`
}

var severityWeight = map[gap.Severity]int{
	gap.SeverityCritical: 8,
	gap.SeverityHigh:     5,
	gap.SeverityMedium:   3,
	gap.SeverityLow:      1,
}

var effortWeight = map[gap.Effort]int{
	gap.EffortTrivial: 5,
	gap.EffortSmall:   3,
	gap.EffortMedium:  2,
	gap.EffortLarge:   1,
}

// dependencies is the fixed ordering table: task -> prerequisite tasks.
// Only applies when both tasks are present in the plan.
var dependencies = map[string][]string{
	"add-lint-ci":        {"add-linter", "add-ci"},
	"add-lockfile-audit": {"add-ci"},
}

// Score computes the priority score for a gap.
func Score(g gap.Gap) int {
	return severityWeight[g.Severity] * effortWeight[g.Effort]
}

// Build converts gaps into a prioritized plan.
// Tasks are sorted by descending priority (stable over analyzer order),
// then prerequisites are hoisted above their dependents.
func Build(gaps []gap.Gap) *Plan {
	tasks := make([]Task, 0, len(gaps))
	present := make(map[string]bool, len(gaps))
	for _, g := range gaps {
		present[g.ID] = true
	}

	for _, g := range gaps {
		var deps []string
		for _, dep := range dependencies[g.ID] {
			if present[dep] {
				deps = append(deps, dep)
			}
		}
		tasks = append(tasks, Task{
			ID:        g.ID,
			Title:     g.Title,
			Category:  g.Category,
			Severity:  g.Severity,
			Effort:    g.Effort,
			Priority:  Score(g),
			Detail:    g.Detail,
			Snippet:   g.Snippet,
			DependsOn: deps,
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})

	return &Plan{
		GeneratedAt: time.Now().UTC(),
		Tasks:       orderByDependencies(tasks),
	}
}

// orderByDependencies hoists prerequisites above their dependents while
// otherwise preserving priority order. The dependency table is small and
// acyclic, so a bounded number of passes settles the order.
func orderByDependencies(tasks []Task) []Task {
	index := func(id string) int {
		for i, t := range tasks {
			if t.ID == id {
				return i
			}
		}
		return -1
	}

	for pass := 0; pass < len(tasks); pass++ {
		moved := false
		for i, t := range tasks {
			for _, dep := range t.DependsOn {
				j := index(dep)
				if j > i {
					// Move the prerequisite directly above its dependent.
					moved = true
					d := tasks[j]
					tasks = append(tasks[:j], tasks[j+1:]...)
					tasks = append(tasks[:i], append([]Task{d}, tasks[i:]...)...)
				}
			}
			if moved {
				break
			}
		}
		if !moved {
			break
		}
	}
	return tasks
}

// RenderMarkdown produces the hardening plan document.
func (p *Plan) RenderMarkdown() string {
	var b strings.Builder
	b.WriteString("# Hardening plan\n\n")

	if len(p.Tasks) == 0 {
		b.WriteString("Nothing to do.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d task(s), highest priority first.\n\n", len(p.Tasks))
	for i, t := range p.Tasks {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, t.Title)
		fmt.Fprintf(&b, "- ID: `%s`\n- Priority: %d (%s × %s)\n- Category: %s\n", t.ID, t.Priority, t.Severity, t.Effort, t.Category)
		if len(t.DependsOn) > 0 {
			fmt.Fprintf(&b, "- Depends on: %s\n", strings.Join(t.DependsOn, ", "))
		}
		b.WriteString("\n")
		b.WriteString(t.Detail)
		b.WriteString("\n")
		if t.Snippet != "" {
			fmt.Fprintf(&b, "\n```\n%s```\n", t.Snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}
