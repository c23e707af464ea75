package cleanup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestReportFinalize(t *testing.T) {
	t.Parallel()

	r := NewReport("default", nil, true)
	r.addAction(Action{Type: ActionBlockDelete, Rule: "a", File: "x.ts", Blocks: 2, Lines: 7})
	r.addAction(Action{Type: ActionLineTag, Rule: "b", File: "x.ts", Lines: 3})
	r.addAction(Action{Type: ActionDependencyPrune, Rule: "c", File: "package.json", Dependency: "left-pad"})
	r.addAction(Action{Type: ActionFileDelete, Rule: "d", File: "docs"})
	r.Finalize()

	want := Summary{TotalActions: 4, BlocksRemoved: 2, LinesRemoved: 10, FilesDeleted: 1, DepsRemoved: 1}
	if r.Summary != want {
		t.Errorf("summary = %+v, want %+v", r.Summary, want)
	}
	if r.ID == "" {
		t.Error("report has no id")
	}
}

func TestReportWriteJSON(t *testing.T) {
	t.Parallel()

	r := NewReport("default", []string{"no-docs"}, false)
	r.addAction(Action{Type: ActionLineTag, Rule: "strip-debug", File: "main.go", Lines: 1})
	r.addWarning("dependency %q not found", "ghost")
	r.Finalize()

	path := filepath.Join(t.TempDir(), "reports", "cleanup.json")
	if err := r.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if got.Profile != "default" || len(got.Actions) != 1 || len(got.Warnings) != 1 {
		t.Errorf("round-tripped report = %+v", got)
	}
}
