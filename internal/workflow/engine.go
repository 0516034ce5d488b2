// Package workflow computes the next dashboard state for every action.
//
// Each action takes the current snapshot and returns a new one; the input
// is never modified. A refused action returns a *Error and no snapshot.
// An accepted action that changes nothing returns its input unchanged.
package workflow

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

// Actor is the name recorded in audit entries.
const Actor = "Admin"

// DefaultSuggestionSize is how many testers the suggestion heuristic picks.
const DefaultSuggestionSize = 2

const auditTimeLayout = "2006-01-02 15:04:05"

// Engine holds the injectable collaborators of the workflow rules.
type Engine struct {
	now            func() time.Time
	newID          func() string
	suggestionSize int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator sets the transaction id source.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithSuggestionSize sets how many testers SuggestTesters returns.
func WithSuggestionSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.suggestionSize = n
		}
	}
}

// New creates an Engine using the wall clock and random UUIDs.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:            time.Now,
		newID:          func() string { return uuid.New().String() },
		suggestionSize: DefaultSuggestionSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// nextProjectID derives an id from the creation time, bumped past every
// existing id so that two projects created within one millisecond differ.
func nextProjectID(s *models.Snapshot, now time.Time) int64 {
	id := now.UnixMilli()
	for _, p := range s.Projects {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

func nextRequestID(s *models.Snapshot, now time.Time) int64 {
	id := now.UnixMilli()
	for _, r := range s.Requests {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}

// ledgerTime keeps ledger dates strictly increasing.
func ledgerTime(s *models.Snapshot, now time.Time) time.Time {
	if n := len(s.Transactions); n > 0 {
		last := s.Transactions[n-1].Date
		if !now.After(last) {
			return last.Add(time.Nanosecond)
		}
	}
	return now
}

func (e *Engine) auditEntry(action string, now time.Time) string {
	return action + " by " + Actor + " at " + now.Format(auditTimeLayout)
}

// withAudit returns a copy of s whose audit log for id has entry appended.
func withAudit(s *models.Snapshot, id int64, entry string) *models.Snapshot {
	next := *s
	next.AuditLog = s.CloneAuditLog()
	next.AuditLog[id] = append(slices.Clip(next.AuditLog[id]), entry)
	return &next
}

// withNotification returns a copy of s with msg appended to the notifications.
func withNotification(s *models.Snapshot, msg string) *models.Snapshot {
	next := *s
	next.Notifications = append(slices.Clip(s.Notifications), msg)
	return &next
}

// withProject returns a copy of s with the project at index i replaced by p.
func withProject(s *models.Snapshot, i int, p models.Project) *models.Snapshot {
	next := *s
	next.Projects = slices.Clone(s.Projects)
	next.Projects[i] = p
	return &next
}

func (e *Engine) lookup(s *models.Snapshot, id int64) (int, models.Project, error) {
	i := s.ProjectIndex(id)
	if i < 0 {
		return -1, models.Project{}, projectNotFound(id)
	}
	return i, s.Projects[i].Clone(), nil
}
