package grader

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/coderace-dev/coderace/internal/problem"
)

func pythonGrader(t *testing.T) *Python {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	return NewPython("python3", 10*time.Second)
}

var sumProblem = &problem.Problem{
	Title:        "Sum",
	StartingCode: "def sum(a,b):\n    pass",
	PublicTests:  []string{"assert sum(1,2) == 3", "assert sum(0,0) == 0"},
	PrivateTests: []string{"assert sum(-1,1) == 0"},
}

func TestPythonGradePassing(t *testing.T) {
	g := pythonGrader(t)

	res, err := g.Grade(context.Background(), "def sum(a,b):\n    return a+b", sumProblem)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, results: %v", res.Results)
	}
	// Private tests run only after all public tests pass.
	if len(res.Results) != 3 {
		t.Fatalf("results = %v", res.Results)
	}
}

func TestPythonGradeFailingPublicTestSkipsPrivate(t *testing.T) {
	g := pythonGrader(t)

	res, err := g.Grade(context.Background(), "def sum(a,b):\n    return 0", sumProblem)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure")
	}
	for _, line := range res.Results {
		if strings.Contains(line, "Private") {
			t.Fatalf("private test ran despite public failure: %v", res.Results)
		}
	}
}

func TestPythonGradeBrokenCode(t *testing.T) {
	g := pythonGrader(t)

	res, err := g.Grade(context.Background(), "def sum(a,b:\n    oops", sumProblem)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure for broken code")
	}
	if len(res.Results) == 0 || !strings.Contains(res.Results[0], "Code execution error") {
		t.Fatalf("results = %v", res.Results)
	}
}

func TestPythonGradeNormalizesTabs(t *testing.T) {
	g := pythonGrader(t)

	res, err := g.Grade(context.Background(), "def sum(a,b):\n\treturn a+b", sumProblem)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !res.Success {
		t.Fatalf("tab-indented code failed: %v", res.Results)
	}
}

func TestStaticGrader(t *testing.T) {
	g := Static{Result: Result{Success: true, Results: []string{"ok"}}}

	res, err := g.Grade(context.Background(), "anything", sumProblem)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !res.Success || len(res.Results) != 1 {
		t.Fatalf("result = %+v", res)
	}
}
