package handler

import (
	"net/http"

	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/state"
	"github.com/good-yellow-bee/testdesk/internal/workflow"
)

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Customer    string `json:"customer"`
	Description string `json:"description"`
}

// UpdateProjectRequest is the body of PATCH /projects/{id}.
type UpdateProjectRequest struct {
	Name     *string `json:"name,omitempty"`
	Customer *string `json:"customer,omitempty"`
}

// ApproveRequest is the body of POST /projects/{id}/approve. No testers
// means the suggestion is used.
type ApproveRequest struct {
	Testers []string `json:"testers"`
}

// RejectRequest is the body of POST /projects/{id}/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// CustomerRequest is the body of POST /projects/{id}/requests.
type CustomerRequest struct {
	Type string `json:"type" validate:"required,oneof=support reopen"`
}

// BugFileRequest is the body of POST /projects/{id}/bug-files.
type BugFileRequest struct {
	FileName string `json:"file_name"`
}

// ListProjects returns projects, optionally filtered by ?status=.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var filter state.StatusFilter
	if raw := r.URL.Query().Get("status"); raw != "" && raw != "all" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			JSONError(w, NewBadRequest("invalid status filter: "+raw))
			return
		}
		filter.Status = status
	}
	OK(w, h.store.Projects(filter))
}

// CreateProject adds a pending project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.store.AddProject(r.Context(), req.Name, req.Customer, req.Description)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	Created(w, p)
}

// GetProject returns one project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	p, ok := h.store.Project(id)
	if !ok {
		JSONError(w, NewNotFound("project not found"))
		return
	}
	OK(w, p)
}

// UpdateProject edits the project name or customer.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req UpdateProjectRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.store.UpdateProject(r.Context(), id, workflow.ProjectPatch{Name: req.Name, Customer: req.Customer})
	h.respondProject(w, p, err)
}

// Approve accepts a pending project.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req ApproveRequest
	if err := h.decode(r, &req, true); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.store.Approve(r.Context(), id, req.Testers)
	h.respondProject(w, p, err)
}

// Reject refuses a pending project.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req RejectRequest
	if err := h.decode(r, &req, true); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.store.Reject(r.Context(), id, req.Reason)
	h.respondProject(w, p, err)
}

// Complete finishes an ongoing project.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.store.Complete(r.Context(), id)
	h.respondProject(w, p, err)
}

// CreateRequest records a support or reopen request.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req CustomerRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, h.log, err)
		return
	}

	var p models.Project
	if kind, _ := models.ParseRequestType(req.Type); kind == models.RequestReopen {
		p, err = h.store.RequestReopen(r.Context(), id)
	} else {
		p, err = h.store.RequestSupport(r.Context(), id)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	Created(w, p)
}

// SendBugFile reports a bug file delivery to the customer.
func (h *Handler) SendBugFile(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req BugFileRequest
	if err := h.decode(r, &req, true); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.store.SendBugFile(r.Context(), id, req.FileName)
	h.respondProject(w, p, err)
}

// History returns the audit log of a project.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if _, ok := h.store.Project(id); !ok {
		JSONError(w, NewNotFound("project not found"))
		return
	}
	OK(w, nonNil(h.store.AuditLog(id)))
}

// Suggestion returns the testers that would be assigned by default.
func (h *Handler) Suggestion(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]any{
		"testers":  nonNil(h.store.Suggest()),
		"workload": nonNil(h.store.Workloads()),
	})
}

func (h *Handler) respondProject(w http.ResponseWriter, p models.Project, err error) {
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	OK(w, p)
}
