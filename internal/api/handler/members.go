package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

// AddMemberRequest is the body of POST /members.
type AddMemberRequest struct {
	Name string `json:"name"`
	Role string `json:"role" validate:"required"`
}

func membersResponse(s *models.Snapshot) MembersResponse {
	return MembersResponse{
		Testers:     nonNil(s.Testers),
		Customers:   nonNil(s.Customers),
		TestLeaders: nonNil(s.TestLeaders),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ListMembers returns all three rosters.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	OK(w, membersResponse(h.store.Snapshot()))
}

// AddMember adds a member to a roster.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, h.log, err)
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		JSONError(w, NewValidationError("unknown role: "+req.Role))
		return
	}

	snap, err := h.store.AddMember(r.Context(), req.Name, role)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	Created(w, membersResponse(snap))
}

// RemoveMember removes a member from a roster. Removing an absent member
// succeeds.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	role, ok := models.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		JSONError(w, NewValidationError("unknown role: "+chi.URLParam(r, "role")))
		return
	}
	if _, err := h.store.RemoveMember(r.Context(), role, chi.URLParam(r, "name")); err != nil {
		writeError(w, h.log, err)
		return
	}
	NoContent(w)
}
