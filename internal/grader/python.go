package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"os/exec"

	"github.com/coderace-dev/coderace/internal/problem"
)

// harness runs inside the Python interpreter: it execs the submission,
// runs public tests first, then private tests only if all public tests
// passed, and prints a JSON result on stdout. Tabs in the submission are
// normalized to spaces before exec.
const harness = `
import json, sys, traceback

payload = json.load(sys.stdin)
code = "\n".join(line.replace("\t", "    ") for line in payload["code"].splitlines())
code = "from typing import List, Dict, Tuple\n" + code

results = []
success = True

scope = {}
try:
    exec(code, {}, scope)
except Exception:
    print(json.dumps({"success": False, "results": ["Code execution error: " + traceback.format_exc()]}))
    sys.exit(0)

for idx, test in enumerate(payload["public_tests"]):
    try:
        exec(test, {}, scope)
        results.append("Public test %d passed." % (idx + 1))
    except AssertionError:
        results.append("Public test %d failed: %s" % (idx + 1, test))
        success = False
    except Exception:
        results.append("Public test %d failed: %s with error %s" % (idx + 1, test, traceback.format_exc()))
        success = False

if success:
    for idx, test in enumerate(payload["private_tests"]):
        try:
            exec(test, {}, scope)
            results.append("Private test %d passed." % (idx + 1))
        except Exception:
            results.append("Private test %d failed." % (idx + 1))
            success = False

print(json.dumps({"success": success, "results": results}))
`

// Python grades submissions by shelling out to a Python interpreter.
// There is no sandboxing here: the server trusts its deployment
// environment to contain whatever the submission does.
type Python struct {
	Bin     string
	Timeout time.Duration
}

// NewPython builds a Python grader. Empty bin defaults to "python3".
func NewPython(bin string, timeout time.Duration) *Python {
	if bin == "" {
		bin = "python3"
	}
	return &Python{Bin: bin, Timeout: timeout}
}

type harnessInput struct {
	Code         string   `json:"code"`
	PublicTests  []string `json:"public_tests"`
	PrivateTests []string `json:"private_tests"`
}

func (g *Python) Grade(ctx context.Context, code string, p *problem.Problem) (Result, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	input, err := json.Marshal(harnessInput{
		Code:         code,
		PublicTests:  append([]string{}, p.PublicTests...),
		PrivateTests: append([]string{}, p.PrivateTests...),
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal harness input: %w", err)
	}

	cmd := exec.CommandContext(ctx, g.Bin, "-c", harness)
	cmd.Stdin = bytes.NewReader(input)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("run harness: %w", err)
	}

	var res Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return Result{}, fmt.Errorf("parse harness output: %w", err)
	}
	if res.Results == nil {
		res.Results = []string{}
	}
	return res, nil
}
