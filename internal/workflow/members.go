package workflow

import (
	"slices"
	"strings"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

// AddMember appends name to the roster of role.
func (e *Engine) AddMember(s *models.Snapshot, name string, role models.Role) (*models.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, emptyField("name")
	}
	if !role.Valid() {
		return nil, invalidValue("role", "unknown role %q", role)
	}
	roster := s.Roster(role)
	if slices.Contains(roster, name) {
		return nil, &Error{
			Kind:    KindDuplicateEntity,
			Field:   "name",
			Message: "member " + name + " already exists in " + string(role),
		}
	}
	return s.WithRoster(role, append(slices.Clip(roster), name)), nil
}

// RemoveMember drops name from the roster of role. Projects and ledger
// entries that mention the name keep it.
func (e *Engine) RemoveMember(s *models.Snapshot, role models.Role, name string) (*models.Snapshot, error) {
	if !role.Valid() {
		return nil, invalidValue("role", "unknown role %q", role)
	}
	roster := s.Roster(role)
	i := slices.Index(roster, name)
	if i < 0 {
		return s, nil
	}
	return s.WithRoster(role, slices.Delete(slices.Clone(roster), i, i+1)), nil
}
