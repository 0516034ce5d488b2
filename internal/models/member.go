package models

import "strings"

// Role is the roster a member belongs to.
type Role string

const (
	RoleTester     Role = "tester"
	RoleCustomer   Role = "customer"
	RoleTestLeader Role = "testLeader"
)

// Roles lists every role in display order.
var Roles = []Role{RoleTester, RoleCustomer, RoleTestLeader}

// Member is a named person holding one role. Names are unique per role.
type Member struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Valid returns true if r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTester, RoleCustomer, RoleTestLeader:
		return true
	}
	return false
}

// ParseRole converts a string to Role. The second value is false when the
// input names no known role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tester", "testers":
		return RoleTester, true
	case "customer", "customers":
		return RoleCustomer, true
	case "testleader", "testleaders", "test_leader", "test-leader", "leader":
		return RoleTestLeader, true
	default:
		return "", false
	}
}
