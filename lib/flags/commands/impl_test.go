package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
	"github.com/Cloud-Foundations/Provisioner/lib/log/testlogger"
)

type codedError struct{}

func (codedError) Error() string { return "coded" }
func (codedError) ExitCode() int { return 3 }

func TestRunArgs(t *testing.T) {
	var gotArgs []string
	commands := []Command{
		{"badarg", "[arg]", 0, 1, func(args []string, _ log.DebugLogger) error {
			return NewUsageError("unknown option: %s", args[0])
		}},
		{"fail", "", 0, 0, func([]string, log.DebugLogger) error {
			return errors.New("failed")
		}},
		{"mismatch", "", 0, 0, func([]string, log.DebugLogger) error {
			return codedError{}
		}},
		{"ok", "[arg]", 0, 1, func(args []string, _ log.DebugLogger) error {
			gotArgs = args
			return nil
		}},
	}
	testcases := []struct {
		args     []string
		expected int
	}{
		{nil, ExitUsage},
		{[]string{"unknown"}, ExitUsage},
		{[]string{"ok"}, ExitSuccess},
		{[]string{"ok", "a", "b"}, ExitUsage},
		{[]string{"badarg", "-x"}, ExitUsage},
		{[]string{"fail"}, ExitFailure},
		{[]string{"mismatch"}, 3},
	}
	logger := testlogger.New(t)
	for _, testcase := range testcases {
		output := &bytes.Buffer{}
		var usagePrinted bool
		code := RunArgs(commands, testcase.args, output,
			func() { usagePrinted = true }, logger)
		if code != testcase.expected {
			t.Errorf("args: %v, expected: %d, got: %d",
				testcase.args, testcase.expected, code)
		}
		if (code == ExitUsage) != usagePrinted {
			t.Errorf("args: %v, usage printed: %v", testcase.args, usagePrinted)
		}
	}
	RunArgs(commands, []string{"ok", "x"}, &bytes.Buffer{}, func() {}, logger)
	if len(gotArgs) != 1 || gotArgs[0] != "x" {
		t.Errorf("expected args [x], got: %v", gotArgs)
	}
}
