package app

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kaspanet/stacklab/domain/stacklab/interpreter"
	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
	"github.com/kaspanet/stacklab/infrastructure/config"
	"github.com/stretchr/testify/require"
)

type testRun struct {
	exitCode int
	stdout   string
	stderr   string
}

func runWithStdin(t *testing.T, stdin string, args ...string) testRun {
	cfg, err := config.LoadConfig(args, ioutil.Discard)
	if err != nil {
		t.Fatalf("LoadConfig(%v): %s", args, err)
	}
	var stdout, stderr bytes.Buffer
	s := streams{
		stdin:           strings.NewReader(stdin),
		stdinIsTerminal: stdin == "",
		stdout:          &stdout,
		stderr:          &stderr,
	}
	exitCode := newStackLab(cfg, s).run()
	return testRun{exitCode: exitCode, stdout: stdout.String(), stderr: stderr.String()}
}

func run(t *testing.T, args ...string) testRun {
	return runWithStdin(t, "", args...)
}

func TestRunTokens(t *testing.T) {
	r := run(t, "OP_3", "OP_5", "OP_ADD")
	if r.exitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d\n%s%s", r.exitCode, r.stdout, r.stderr)
	}
	for _, expected := range []string{"OP_ADD", "[3 5]", "Final stack: [8]", "Script succeeded"} {
		if !strings.Contains(r.stdout, expected) {
			t.Errorf("output does not contain %q:\n%s", expected, r.stdout)
		}
	}
}

func TestRunTracesFinalStack(t *testing.T) {
	r := run(t, "OP_7", "'lab'")
	require.Equal(t, ExitSuccess, r.exitCode, r.stderr)
	require.Eventually(t, func() bool {
		output := logOutput.String()
		return strings.Contains(output, "Final stack of command line program") &&
			strings.Contains(output, "(stackitem.Item) 'lab'")
	}, time.Second, 10*time.Millisecond, "trace log:\n%s", logOutput.String())
}

func TestRunFailingScript(t *testing.T) {
	r := run(t, "OP_0", "OP_VERIFY")
	if r.exitCode != ExitFailure {
		t.Fatalf("unexpected exit code %d", r.exitCode)
	}
	if !strings.Contains(r.stdout, "OP_VERIFY failed: top stack item is false") {
		t.Errorf("output does not explain the failure:\n%s", r.stdout)
	}
}

func TestRunJSON(t *testing.T) {
	r := run(t, "--json", "OP_1", "OP_0", "OP_EQUAL")
	if r.exitCode != ExitFailure {
		t.Fatalf("unexpected exit code %d", r.exitCode)
	}
	var result struct {
		Success    bool              `json:"success"`
		FinalStack []stackitem.Item `json:"finalStack"`
		Steps      []struct {
			Index   int    `json:"index"`
			OpCode  string `json:"opcode"`
			Success bool   `json:"success"`
		} `json:"steps"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &result); err != nil {
		t.Fatalf("invalid JSON output: %s\n%s", err, r.stdout)
	}
	if result.Success || len(result.Steps) != 3 || result.Steps[2].OpCode != "OP_EQUAL" {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.FinalStack) != 1 || !result.FinalStack[0].Equal(stackitem.Number(0)) ||
		result.FinalStack[0].Kind() != stackitem.KindNumber {
		t.Errorf("unexpected final stack: %s", r.stdout)
	}
	if !strings.Contains(result.Error, "false stack entry") {
		t.Errorf("unexpected error %q", result.Error)
	}
}

func TestRunSingleStep(t *testing.T) {
	r := run(t, "--json", "--step", "1", "OP_7", "OP_DUP")
	if r.exitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d: %s", r.exitCode, r.stderr)
	}
	var result struct {
		Steps []struct {
			Index int `json:"index"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &result); err != nil {
		t.Fatalf("invalid JSON output: %s", err)
	}
	if len(result.Steps) != 1 || result.Steps[0].Index != 1 {
		t.Errorf("expected only step 1: %s", r.stdout)
	}

	r = run(t, "--step", "5", "OP_7")
	if r.exitCode != ExitFailure || !strings.Contains(r.stderr, "out of range") {
		t.Errorf("expected an out of range error, got %d: %s", r.exitCode, r.stderr)
	}
}

func TestRunTemplate(t *testing.T) {
	r := run(t, "--template", "hash-lock")
	if r.exitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d\n%s", r.exitCode, r.stdout)
	}
	if !strings.Contains(r.stdout, "Hash lock") {
		t.Errorf("template title is missing:\n%s", r.stdout)
	}

	r = run(t, "--template", "unspendable")
	if r.exitCode != ExitFailure {
		t.Errorf("unspendable must fail")
	}

	r = run(t, "--template", "no-such-template")
	if r.exitCode != ExitFailure || !strings.Contains(r.stderr, "unknown template") {
		t.Errorf("expected an unknown template error: %s", r.stderr)
	}
}

func TestRunProgramFile(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "stacklab")
	if err != nil {
		t.Fatalf("TempDir: %s", err)
	}
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name     string
		content  string
		exitCode int
	}{
		{"yaml.yaml", "- 2\n- 3\n- OP_ADD\n- 5\n- OP_EQUAL\n", ExitSuccess},
		{"json.json", `[2, 3, "OP_ADD", 5, "OP_EQUAL"]`, ExitSuccess},
		{"doc.yaml", "program: [\"0xab\", OP_SIZE, 1, OP_EQUAL]\n", ExitSuccess},
		{"text.txt", "OP_1 OP_2 OP_ADD OP_3 OP_EQUAL\n", ExitSuccess},
		{"empty.yaml", "", ExitFailure},
		{"fraction.json", `[1.5]`, ExitFailure},
	}
	for _, test := range tests {
		path := filepath.Join(tmpDir, test.name)
		if err := ioutil.WriteFile(path, []byte(test.content), 0644); err != nil {
			t.Fatalf("WriteFile: %s", err)
		}
		r := run(t, "--program-file", path)
		if r.exitCode != test.exitCode {
			t.Errorf("%s: got exit code %d, want %d\n%s%s", test.name, r.exitCode,
				test.exitCode, r.stdout, r.stderr)
		}
	}

	r := run(t, "--program-file", filepath.Join(tmpDir, "missing.yaml"))
	if r.exitCode != ExitFailure || !strings.Contains(r.stderr, "error reading program file") {
		t.Errorf("expected a read error: %s", r.stderr)
	}
}

func TestProgramDocumentHexTokens(t *testing.T) {
	tests := []struct {
		name     string
		document string
		literal  string
	}{
		{"unquoted list item", "- 0x00\n", "0x00"},
		{"unquoted flow list", "[0x00]", "0x00"},
		{"quoted", `["0x00"]`, "0x00"},
		{"program mapping", "program: [0xab]\n", "0xab"},
		{"oversized", "- 0xffffffffffffffffffff\n", "0xffffffffffffffffffff"},
	}
	for _, test := range tests {
		program, err := parseProgramDocument([]byte(test.document))
		if err != nil {
			t.Fatalf("%s: parseProgramDocument: %s", test.name, err)
		}
		if len(program) != 1 || program[0].IsOpcode() {
			t.Fatalf("%s: expected a single literal, got %s", test.name,
				interpreter.FormatProgram(program))
		}
		literal := program[0].Literal()
		if literal.Kind() != stackitem.KindString {
			t.Errorf("%s: got a %s literal, want a string", test.name, literal.Kind())
		}
		if text, _ := literal.Text(); text != test.literal {
			t.Errorf("%s: got literal %s, want %s", test.name, text, test.literal)
		}
	}

	// The hex string 0x00 is truthy wherever the program comes from.
	r := runWithStdin(t, "- 0x00\n")
	if r.exitCode != ExitSuccess {
		t.Errorf("unexpected exit code %d\n%s%s", r.exitCode, r.stdout, r.stderr)
	}
}

func TestRunStdin(t *testing.T) {
	r := runWithStdin(t, "OP_2 OP_DUP OP_ADD OP_4 OP_EQUAL\n")
	if r.exitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d\n%s%s", r.exitCode, r.stdout, r.stderr)
	}

	r = run(t)
	if r.exitCode != ExitFailure || !strings.Contains(r.stderr, "no program given") {
		t.Errorf("expected a missing program error: %s", r.stderr)
	}
}

func TestListTemplates(t *testing.T) {
	r := run(t, "--list-templates")
	if r.exitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d", r.exitCode)
	}
	for _, name := range []string{"arithmetic", "p2pkh", "multisig", "verify-fail"} {
		if !strings.Contains(r.stdout, name) {
			t.Errorf("template %s is not listed", name)
		}
	}

	r = run(t, "--list-templates", "--json")
	var listed []struct {
		Name    string `json:"name"`
		Program string `json:"program"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &listed); err != nil {
		t.Fatalf("invalid JSON output: %s", err)
	}
	if len(listed) == 0 || listed[0].Program == "" {
		t.Errorf("unexpected template listing: %s", r.stdout)
	}
}

func TestListOpcodes(t *testing.T) {
	r := run(t, "--list-opcodes")
	if r.exitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d", r.exitCode)
	}
	for _, expected := range []string{"OP_CHECKMULTISIG", "disabled", "reference only"} {
		if !strings.Contains(r.stdout, expected) {
			t.Errorf("listing does not contain %q", expected)
		}
	}

	r = run(t, "--list-opcodes", "--category", "locktime", "--json")
	var listed []struct {
		Name       string `json:"name"`
		Executable bool   `json:"executable"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &listed); err != nil {
		t.Fatalf("invalid JSON output: %s", err)
	}
	if len(listed) != 2 || !listed[0].Executable {
		t.Errorf("unexpected locktime listing: %s", r.stdout)
	}

	r = run(t, "--list-opcodes", "--category", "nonsense")
	if r.exitCode != ExitFailure {
		t.Errorf("an unknown category must fail")
	}
}
