package handler

import (
	"net/http"
	"time"

	"github.com/good-yellow-bee/testdesk/internal/stats"
)

// ListRequests returns all customer requests.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	OK(w, nonNil(h.store.Requests()))
}

// ListNotifications returns every notification, oldest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	OK(w, nonNil(h.store.Notifications()))
}

// LatestNotification returns the newest notification for transient display.
func (h *Handler) LatestNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := h.store.LatestNotification()
	if !ok {
		JSONError(w, NewNotFound("no notifications"))
		return
	}
	resp := LatestNotificationResponse{
		Message:      n.Message,
		DismissAfter: h.dismissAfter.Milliseconds(),
	}
	if !n.Time.IsZero() {
		resp.Time = n.Time.UTC().Format(time.RFC3339)
	}
	OK(w, resp)
}

// Stats returns dashboard statistics and chart series.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	OK(w, stats.Compute(h.store.Snapshot()))
}
