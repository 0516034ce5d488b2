package models

import (
	"maps"
	"slices"
)

// Snapshot is the complete dashboard state at one point in time.
// A committed Snapshot is never modified; changes produce a new Snapshot.
type Snapshot struct {
	Testers       []string           `json:"testers"`
	Customers     []string           `json:"customers"`
	TestLeaders   []string           `json:"testLeaders"`
	Projects      []Project          `json:"projects"`
	Transactions  []Transaction      `json:"transactions"`
	Requests      []Request          `json:"requests"`
	Notifications []string           `json:"notifications"`
	AuditLog      map[int64][]string `json:"projectLogs"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{AuditLog: make(map[int64][]string)}
}

// Roster returns the member names for role, or nil for an unknown role.
func (s *Snapshot) Roster(role Role) []string {
	switch role {
	case RoleTester:
		return s.Testers
	case RoleCustomer:
		return s.Customers
	case RoleTestLeader:
		return s.TestLeaders
	}
	return nil
}

// WithRoster returns a shallow copy of s whose roster for role is names.
func (s *Snapshot) WithRoster(role Role, names []string) *Snapshot {
	next := *s
	switch role {
	case RoleTester:
		next.Testers = names
	case RoleCustomer:
		next.Customers = names
	case RoleTestLeader:
		next.TestLeaders = names
	}
	return &next
}

// Members flattens all rosters into Member values, testers first.
func (s *Snapshot) Members() []Member {
	var out []Member
	for _, role := range Roles {
		for _, name := range s.Roster(role) {
			out = append(out, Member{Name: name, Role: role})
		}
	}
	return out
}

// ProjectIndex returns the position of the project with id, or -1.
func (s *Snapshot) ProjectIndex(id int64) int {
	return slices.IndexFunc(s.Projects, func(p Project) bool { return p.ID == id })
}

// Project returns a copy of the project with id.
func (s *Snapshot) Project(id int64) (Project, bool) {
	i := s.ProjectIndex(id)
	if i < 0 {
		return Project{}, false
	}
	return s.Projects[i].Clone(), true
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Testers:       slices.Clone(s.Testers),
		Customers:     slices.Clone(s.Customers),
		TestLeaders:   slices.Clone(s.TestLeaders),
		Transactions:  slices.Clone(s.Transactions),
		Requests:      slices.Clone(s.Requests),
		Notifications: slices.Clone(s.Notifications),
		AuditLog:      make(map[int64][]string, len(s.AuditLog)),
	}
	if s.Projects != nil {
		out.Projects = make([]Project, len(s.Projects))
		for i, p := range s.Projects {
			out.Projects[i] = p.Clone()
		}
	}
	for id, entries := range s.AuditLog {
		out.AuditLog[id] = slices.Clone(entries)
	}
	return out
}

// CloneAuditLog copies the audit log map; entry slices are shared and must
// only be extended through append on a fresh slice.
func (s *Snapshot) CloneAuditLog() map[int64][]string {
	if s.AuditLog == nil {
		return make(map[int64][]string)
	}
	return maps.Clone(s.AuditLog)
}
