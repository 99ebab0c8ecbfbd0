package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestUsersAndScoresCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "scores.db")
	cfg := filepath.Join(dir, "missing.yaml")

	out := run(t, "", "--config", cfg, "--db", db, "users", "add", "alice", "--name", "Alice")
	if !strings.Contains(out, "created user 2 (Alice)") {
		t.Fatalf("unexpected add output %q", out)
	}
	out = run(t, "", "--config", cfg, "--db", db, "users", "list")
	if !strings.Contains(out, "Anonymous") || !strings.Contains(out, "alice") {
		t.Fatalf("unexpected list output %q", out)
	}

	input := ":reveal\n:yes\n\n"
	out = run(t, input, "--config", cfg, "--db", db, "play", "DivisionQuiz", "--total", "1", "--mode", "self", "--user", "2")
	if !strings.Contains(out, "Alice scored 1/1 (100.0%)") {
		t.Fatalf("unexpected play output %q", out)
	}

	out = run(t, "", "--config", cfg, "--db", db, "scores", "top")
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "DivisionQuiz") {
		t.Fatalf("unexpected top output %q", out)
	}
	out = run(t, "", "--config", cfg, "--db", db, "scores", "stats", "--quiz", "DivisionQuiz")
	if !strings.Contains(out, "Quizzes taken") || !strings.Contains(out, "100.0%") {
		t.Fatalf("unexpected stats output %q", out)
	}
	out = run(t, "", "--config", cfg, "--db", db, "scores", "types")
	if strings.TrimSpace(out) != "DivisionQuiz" {
		t.Fatalf("unexpected types output %q", out)
	}
}

func TestDeleteAnonymousFails(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "none.yaml"), "--db", filepath.Join(dir, "s.db"), "users", "delete", "1"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected anonymous delete to fail")
	}
}

func run(t *testing.T, input string, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, errOut.String())
	}
	return out.String()
}
