package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--db", db, "--driver", "sqlite", "-o", "table"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestMemberCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "testdesk.db")

	if _, err := run(t, db, "member", "add", "--name", "Alice", "--role", "tester"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := run(t, db, "member", "add", "--name", "Acme", "--role", "customer"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := run(t, db, "member", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "Total: 2 member(s)") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	if _, err := run(t, db, "member", "add", "--name", "Alice", "--role", "tester"); err == nil {
		t.Error("expected duplicate member to be refused")
	}
	if _, err := run(t, db, "member", "add", "--name", "Bob", "--role", "admin"); err == nil {
		t.Error("expected invalid role to be refused")
	}

	if _, err := run(t, db, "member", "remove", "--name", "Alice", "--role", "tester"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, _ = run(t, db, "member", "list")
	if strings.Contains(out, "Alice") {
		t.Errorf("Alice still listed:\n%s", out)
	}
}

func TestProjectWorkflowCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "testdesk.db")

	if _, err := run(t, db, "member", "add", "--name", "Alice", "--role", "tester"); err != nil {
		t.Fatalf("add tester: %v", err)
	}
	out, err := run(t, db, "-o", "json", "project", "create", "--name", "Login flow", "--customer", "Acme")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var p models.Project
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode project: %v\n%s", err, out)
	}
	if p.Status != models.StatusPending {
		t.Fatalf("status = %s, want pending", p.Status)
	}
	id := jsonID(p.ID)

	out, err = run(t, db, "project", "approve", "--id", id)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !strings.Contains(out, "Testers:  Alice") || !strings.Contains(out, "Progress: ongoing") {
		t.Errorf("unexpected approve output:\n%s", out)
	}

	if _, err := run(t, db, "project", "reject", "--id", id, "--reason", "late"); err == nil {
		t.Error("expected reject of approved project to be refused")
	}

	if _, err := run(t, db, "project", "complete", "--id", id); err != nil {
		t.Fatalf("complete: %v", err)
	}

	out, err = run(t, db, "project", "history", "--id", id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if got := strings.Count(strings.TrimSpace(out), "\n") + 1; got != 3 {
		t.Errorf("history lines = %d, want 3:\n%s", got, out)
	}

	if _, err := run(t, db, "project", "history", "--id", "42"); err == nil {
		t.Error("expected unknown project to fail")
	}
	if _, err := run(t, db, "project", "list", "--status", "bogus"); err == nil {
		t.Error("expected invalid status filter to fail")
	}
}

func TestProjectListActive(t *testing.T) {
	db := filepath.Join(t.TempDir(), "testdesk.db")
	t.Cleanup(func() { projectActive = false })

	for _, name := range []string{"Checkout", "Search"} {
		if _, err := run(t, db, "project", "create", "--name", name, "--customer", "Acme"); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	out, err := run(t, db, "-o", "json", "project", "list", "--status", "pending")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var projects []models.Project
	if err := json.Unmarshal([]byte(out), &projects); err != nil || len(projects) != 2 {
		t.Fatalf("projects = %v (%v)", projects, err)
	}
	if _, err := run(t, db, "project", "reject", "--id", jsonID(projects[0].ID), "--reason", "budget"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	out, err = run(t, db, "project", "list", "--status", "all", "--active")
	if err != nil {
		t.Fatalf("list --active: %v", err)
	}
	if strings.Contains(out, "Checkout") || !strings.Contains(out, "Search") {
		t.Errorf("rejected project listed as active:\n%s", out)
	}
}

func TestLedgerAndStatsCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "testdesk.db")

	if _, err := run(t, db, "ledger", "receipt", "--project", "Login flow", "--customer", "Acme", "--amount", "200"); err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if _, err := run(t, db, "ledger", "payout", "--recipient", "Alice", "--role", "tester", "--amount", "40.5"); err != nil {
		t.Fatalf("payout: %v", err)
	}
	if _, err := run(t, db, "ledger", "payout", "--recipient", "Alice", "--role", "tester", "--amount", "abc"); err == nil {
		t.Error("expected invalid amount to fail")
	}
	if _, err := run(t, db, "ledger", "payout", "--recipient", "Alice", "--role", "tester", "--amount", "0"); err == nil {
		t.Error("expected zero amount to be refused")
	}

	out, err := run(t, db, "ledger", "list", "--type", "payout")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "40.50") || strings.Contains(out, "200.00") {
		t.Errorf("unexpected ledger output:\n%s", out)
	}

	out, err = run(t, db, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Balance:   159.50") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer name", 10, "much lon.."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
