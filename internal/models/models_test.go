package models

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"tester", RoleTester, true},
		{" Customer ", RoleCustomer, true},
		{"testLeader", RoleTestLeader, true},
		{"test_leader", RoleTestLeader, true},
		{"admin", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseStatus_Aliases(t *testing.T) {
	tests := map[string]Status{
		"open":     StatusPending,
		"pending":  StatusPending,
		"accepted": StatusApproved,
		"approved": StatusApproved,
		"reject":   StatusRejected,
		"rejected": StatusRejected,
	}
	for in, want := range tests {
		got, ok := ParseStatus(in)
		if !ok || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseStatus("ongoing"); ok {
		t.Error("ongoing is a sub-status, not a status")
	}
}

func TestProjectValidate(t *testing.T) {
	now := time.Now()
	p := NewProject(1, "Login flow", "Acme", "", now)
	if err := p.Validate(); err != nil {
		t.Fatalf("new project should be valid: %v", err)
	}

	p.SubStatus = SubStatusOngoing
	if err := p.Validate(); err == nil {
		t.Error("pending project with sub-status should be invalid")
	}

	p.Status = StatusApproved
	p.AssignedTesters = []string{"T1"}
	if err := p.Validate(); err != nil {
		t.Errorf("approved/ongoing should be valid: %v", err)
	}

	p.SubStatus = SubStatusNone
	if err := p.Validate(); err == nil {
		t.Error("approved project without sub-status should be invalid")
	}

	p.Status = StatusRejected
	p.SubStatus = SubStatusCompleted
	if err := p.Validate(); err == nil {
		t.Error("rejected project with sub-status should be invalid")
	}
}

func TestSnapshotClone_IsDeep(t *testing.T) {
	s := NewSnapshot()
	s.Testers = []string{"T1"}
	s.Projects = []Project{{ID: 1, AssignedTesters: []string{"T1"}}}
	s.AuditLog[1] = []string{"created"}

	c := s.Clone()
	c.Testers[0] = "X"
	c.Projects[0].AssignedTesters[0] = "X"
	c.AuditLog[1][0] = "X"

	if s.Testers[0] != "T1" {
		t.Error("testers shared with clone")
	}
	if s.Projects[0].AssignedTesters[0] != "T1" {
		t.Error("assigned testers shared with clone")
	}
	if s.AuditLog[1][0] != "created" {
		t.Error("audit log shared with clone")
	}
}

func TestSnapshotMembers_Order(t *testing.T) {
	s := NewSnapshot()
	s.Testers = []string{"T1", "T2"}
	s.Customers = []string{"Acme"}
	s.TestLeaders = []string{"L1"}

	got := s.Members()
	want := []Member{
		{"T1", RoleTester}, {"T2", RoleTester},
		{"Acme", RoleCustomer}, {"L1", RoleTestLeader},
	}
	if len(got) != len(want) {
		t.Fatalf("members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
