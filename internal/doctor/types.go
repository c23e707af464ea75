package doctor

import "github.com/devenv-tools/devenv/internal/gap"

// Category groups issues by what part of the project they affect.
type Category string

const (
	// CategoryStructure covers baseline repository files.
	CategoryStructure Category = "structure"
	// CategoryHygiene covers editor and workspace consistency.
	CategoryHygiene Category = "hygiene"
	// CategoryTooling covers tests, linters and formatters.
	CategoryTooling Category = "tooling"
	// CategoryCI covers continuous integration wiring.
	CategoryCI Category = "ci"
)

// Issue is one problem detected by doctor.
type Issue struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Severity    gap.Severity `json:"severity"`
	FixAction   string       `json:"fix_action,omitempty"` // what --fix would do, empty when manual
}

// Stats tracks issue counts by severity.
type Stats struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Fixable  int `json:"fixable"`
}

// Result is the outcome of one doctor run.
type Result struct {
	Score  int     `json:"score"` // 0-100
	Grade  string  `json:"grade"` // A-F
	Issues []Issue `json:"issues"`
	Stats  Stats   `json:"stats"`
	Fixed  int     `json:"fixed,omitempty"`
	Failed int     `json:"failed,omitempty"`
}

// severityPenalty weights the health score deduction per issue.
var severityPenalty = map[gap.Severity]int{
	gap.SeverityCritical: 15,
	gap.SeverityHigh:     8,
	gap.SeverityMedium:   4,
	gap.SeverityLow:      1,
}

// score converts issues to a 0-100 health score.
func score(issues []Issue) int {
	s := 100
	for _, i := range issues {
		s -= severityPenalty[i.Severity]
	}
	if s < 0 {
		s = 0
	}
	return s
}

// grade maps a score to a letter grade.
func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
