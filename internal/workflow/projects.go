package workflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

// ProjectPatch holds the editable project fields. Nil fields are kept.
type ProjectPatch struct {
	Name     *string
	Customer *string
}

// AddProject creates a pending project. The customer is not required to be
// on the customer roster.
func (e *Engine) AddProject(s *models.Snapshot, name, customer, description string) (*models.Snapshot, models.Project, error) {
	name = strings.TrimSpace(name)
	customer = strings.TrimSpace(customer)
	if name == "" {
		return nil, models.Project{}, emptyField("name")
	}
	if customer == "" {
		return nil, models.Project{}, emptyField("customer")
	}

	now := e.now()
	p := models.NewProject(nextProjectID(s, now), name, customer, strings.TrimSpace(description), now)

	next := *s
	next.Projects = append(slices.Clip(s.Projects), p)
	return withAudit(&next, p.ID, e.auditEntry("Created", now)), p, nil
}

// Approve accepts a pending project and assigns testers. When selected is
// empty the suggestion heuristic chooses them.
func (e *Engine) Approve(s *models.Snapshot, id int64, selected []string) (*models.Snapshot, error) {
	i, p, err := e.lookup(s, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusPending {
		return nil, invalidTransition("project %s is %s, only pending projects can be approved", p.Name, p.Status)
	}

	testers := normalizeNames(selected)
	if len(testers) == 0 {
		testers = e.SuggestTesters(s)
	}
	if len(testers) == 0 {
		return nil, &Error{
			Kind:    KindMissingSelection,
			Field:   "testers",
			Message: "no testers selected and none available to suggest",
		}
	}

	now := e.now()
	p.Status = models.StatusApproved
	p.SubStatus = models.SubStatusOngoing
	p.AssignedTesters = testers
	p.UpdatedAt = now

	next := withProject(s, i, p)
	next = withNotification(next, fmt.Sprintf("Project %s approved, testers: %s", p.Name, strings.Join(testers, ", ")))
	return withAudit(next, id, e.auditEntry("Approved", now)), nil
}

// Reject refuses a pending project with a reason.
func (e *Engine) Reject(s *models.Snapshot, id int64, reason string) (*models.Snapshot, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, emptyField("reason")
	}
	i, p, err := e.lookup(s, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusPending {
		return nil, invalidTransition("project %s is %s, only pending projects can be rejected", p.Name, p.Status)
	}

	now := e.now()
	p.Status = models.StatusRejected
	p.Reason = reason
	p.UpdatedAt = now

	next := withProject(s, i, p)
	next = withNotification(next, fmt.Sprintf("Project %s rejected, reason: %s", p.Name, reason))
	return withAudit(next, id, e.auditEntry("Rejected", now)), nil
}

// Complete finishes an ongoing project.
func (e *Engine) Complete(s *models.Snapshot, id int64) (*models.Snapshot, error) {
	i, p, err := e.lookup(s, id)
	if err != nil {
		return nil, err
	}
	if p.SubStatus != models.SubStatusOngoing {
		return nil, invalidTransition("project %s is not ongoing", p.Name)
	}

	now := e.now()
	p.SubStatus = models.SubStatusCompleted
	p.UpdatedAt = now

	next := withProject(s, i, p)
	next = withNotification(next, fmt.Sprintf("Project %s completed", p.Name))
	return withAudit(next, id, e.auditEntry("Completed", now)), nil
}

// RequestSupport records a customer support request.
func (e *Engine) RequestSupport(s *models.Snapshot, id int64) (*models.Snapshot, error) {
	return e.request(s, id, models.RequestSupport)
}

// RequestReopen records a customer request to reopen the project. The
// project itself does not change state.
func (e *Engine) RequestReopen(s *models.Snapshot, id int64) (*models.Snapshot, error) {
	return e.request(s, id, models.RequestReopen)
}

func (e *Engine) request(s *models.Snapshot, id int64, kind models.RequestType) (*models.Snapshot, error) {
	_, p, err := e.lookup(s, id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.StatusPending {
		return nil, invalidTransition("project %s is still pending", p.Name)
	}

	now := e.now()
	req := models.Request{
		ID:        nextRequestID(s, now),
		ProjectID: id,
		Project:   p.Name,
		Type:      kind,
		CreatedAt: now,
	}

	next := *s
	next.Requests = append(slices.Clip(s.Requests), req)
	n := withNotification(&next, fmt.Sprintf("Customer request: %s for project %s", kind, p.Name))
	return withAudit(n, id, e.auditEntry("Request "+string(kind), now)), nil
}

// SendBugFile notifies the customer that a bug report was delivered.
// An empty file name means nothing was selected and nothing happens, but
// the project must still exist.
func (e *Engine) SendBugFile(s *models.Snapshot, id int64, fileName string) (*models.Snapshot, error) {
	_, p, err := e.lookup(s, id)
	if err != nil {
		return nil, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return s, nil
	}
	if p.Status == models.StatusPending {
		return nil, invalidTransition("project %s is still pending", p.Name)
	}

	now := e.now()
	next := withNotification(s, fmt.Sprintf("Bug file %s sent to customer %s", fileName, p.Customer))
	return withAudit(next, id, e.auditEntry("Bug file "+fileName+" sent", now)), nil
}

// UpdateProject overwrites the name and customer of a project in any state.
func (e *Engine) UpdateProject(s *models.Snapshot, id int64, patch ProjectPatch) (*models.Snapshot, error) {
	i, p, err := e.lookup(s, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, emptyField("name")
		}
		p.Name = name
	}
	if patch.Customer != nil {
		customer := strings.TrimSpace(*patch.Customer)
		if customer == "" {
			return nil, emptyField("customer")
		}
		p.Customer = customer
	}

	now := e.now()
	p.UpdatedAt = now
	return withAudit(withProject(s, i, p), id, e.auditEntry("Edited", now)), nil
}

// normalizeNames trims names, drops blanks and duplicates, keeping order.
func normalizeNames(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
