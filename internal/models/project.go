package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status is the approval state of a project.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// SubStatus tracks execution of an approved project.
type SubStatus string

const (
	SubStatusNone      SubStatus = ""
	SubStatusOngoing   SubStatus = "ongoing"
	SubStatusCompleted SubStatus = "completed"
)

// ParseStatus converts a string to Status. Both the dashboard spellings
// (open, accepted, reject) and the canonical ones are accepted.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "open":
		return StatusPending, true
	case "approved", "accepted":
		return StatusApproved, true
	case "rejected", "reject":
		return StatusRejected, true
	default:
		return "", false
	}
}

// Project is a unit of testing work for a customer.
// Customer and AssignedTesters reference members by name only.
type Project struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Customer        string    `json:"customer"`
	Description     string    `json:"description,omitempty"`
	Status          Status    `json:"status"`
	SubStatus       SubStatus `json:"subStatus,omitempty"`
	AssignedTesters []string  `json:"assignedTesters,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewProject creates a pending Project with initialized timestamps.
func NewProject(id int64, name, customer, description string, now time.Time) Project {
	return Project{
		ID:          id,
		Name:        name,
		Customer:    customer,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasTester reports whether name is among the assigned testers.
func (p *Project) HasTester(name string) bool {
	return slices.Contains(p.AssignedTesters, name)
}

// Terminal returns true for rejected and completed projects.
func (p *Project) Terminal() bool {
	return p.Status == StatusRejected || p.SubStatus == SubStatusCompleted
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	p.AssignedTesters = slices.Clone(p.AssignedTesters)
	return p
}

// Validate checks the status/sub-status invariant.
func (p *Project) Validate() error {
	switch p.Status {
	case StatusPending:
		if p.SubStatus != SubStatusNone {
			return fmt.Errorf("project %d: pending project has sub-status %q", p.ID, p.SubStatus)
		}
		if len(p.AssignedTesters) > 0 {
			return fmt.Errorf("project %d: pending project has assigned testers", p.ID)
		}
	case StatusRejected:
		if p.SubStatus != SubStatusNone {
			return fmt.Errorf("project %d: rejected project has sub-status %q", p.ID, p.SubStatus)
		}
	case StatusApproved:
		if p.SubStatus != SubStatusOngoing && p.SubStatus != SubStatusCompleted {
			return fmt.Errorf("project %d: approved project has sub-status %q", p.ID, p.SubStatus)
		}
	default:
		return fmt.Errorf("project %d: unknown status %q", p.ID, p.Status)
	}
	return nil
}
