// Package state owns the committed dashboard snapshot. Every action runs a
// workflow transform, commits the result, rewrites the key-value store and
// forwards new notifications to the outbound channels.
//
// Commit and persist are not atomic: a crash after commit and before the
// write completes loses that change.
package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/testdesk/internal/metrics"
	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/notifier"
	"github.com/good-yellow-bee/testdesk/internal/storage"
	"github.com/good-yellow-bee/testdesk/internal/workflow"
)

// Persister loads and saves whole snapshots.
type Persister interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
}

// Publisher receives notifications appended by committed actions.
type Publisher interface {
	Enqueue(msg notifier.Message) error
}

// PersistError is returned when an action was committed in memory but the
// snapshot could not be written. The next successful write includes it.
type PersistError struct {
	Action string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s committed but not persisted: %v", e.Action, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsPersistError reports whether err is a *PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}

// Notification is the newest notification and when it was appended.
type Notification struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Config holds Store dependencies. Engine and Persister are required.
type Config struct {
	Engine    *workflow.Engine
	Persister Persister
	Publisher Publisher
	Confirmer AssignmentConfirmer
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Store serializes actions against the committed snapshot.
type Store struct {
	mu       sync.Mutex
	snap     *models.Snapshot
	latestAt time.Time

	engine    *workflow.Engine
	persister Persister
	publisher Publisher
	confirmer AssignmentConfirmer
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a store with an empty snapshot. Call Load to read the
// persisted state.
func New(cfg Config) *Store {
	if cfg.Confirmer == nil {
		cfg.Confirmer = InstantConfirmer{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Store{
		snap:      models.NewSnapshot(),
		engine:    cfg.Engine,
		persister: cfg.Persister,
		publisher: cfg.Publisher,
		confirmer: cfg.Confirmer,
		log:       cfg.Logger,
		now:       cfg.Now,
	}
	return s
}

// Open creates a store over kv and loads the persisted snapshot.
func Open(ctx context.Context, kv storage.KV, cfg Config) (*Store, error) {
	cfg.Persister = storage.NewSnapshotter(kv)
	s := New(cfg)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory snapshot with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.mu.Lock()
	s.snap = snap
	// Append times are process-local; loaded notifications have none.
	s.latestAt = time.Time{}
	s.mu.Unlock()
	refreshGauges(snap)
	s.log.Info().
		Int("projects", len(snap.Projects)).
		Int("transactions", len(snap.Transactions)).
		Int("notifications", len(snap.Notifications)).
		Msg("snapshot loaded")
	return nil
}

// Snapshot returns the committed snapshot. Callers must not modify it.
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

type transform func(*models.Snapshot) (*models.Snapshot, error)

// apply runs fn against the committed snapshot and commits the result.
func (s *Store) apply(ctx context.Context, action string, fn transform) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snap
	next, err := fn(prev)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(action, string(workflow.KindOf(err))).Inc()
		s.log.Debug().Err(err).Str("action", action).Msg("action refused")
		return prev, err
	}
	if next == prev {
		metrics.ActionsTotal.WithLabelValues(action, "noop").Inc()
		return prev, nil
	}

	s.snap = next
	metrics.ActionsTotal.WithLabelValues(action, "committed").Inc()
	refreshGauges(next)
	s.log.Debug().Str("action", action).Msg("action committed")

	// The change is committed even if persisting fails, so its
	// notifications are published either way.
	perr := s.persist(ctx, next)
	s.publish(prev, next)
	if perr != nil {
		return next, &PersistError{Action: action, Err: perr}
	}
	return next, nil
}

func (s *Store) persist(ctx context.Context, snap *models.Snapshot) error {
	start := time.Now()
	err := s.persister.Save(ctx, snap)
	metrics.PersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PersistErrors.Inc()
		s.log.Error().Err(err).Msg("persist snapshot failed")
	}
	return err
}

// publish forwards the notifications appended between prev and next.
func (s *Store) publish(prev, next *models.Snapshot) {
	added := next.Notifications[len(prev.Notifications):]
	if len(added) == 0 {
		return
	}
	now := s.now()
	s.latestAt = now
	if s.publisher == nil {
		return
	}
	for _, text := range added {
		if err := s.publisher.Enqueue(notifier.Message{Text: text, Time: now}); err != nil {
			s.log.Warn().Err(err).Str("text", text).Msg("notification not queued")
		}
	}
}

func refreshGauges(snap *models.Snapshot) {
	for _, role := range models.Roles {
		metrics.RosterSize.WithLabelValues(string(role)).Set(float64(len(snap.Roster(role))))
	}

	metrics.ProjectsByStatus.Reset()
	for _, p := range snap.Projects {
		metrics.ProjectsByStatus.WithLabelValues(string(p.Status), string(p.SubStatus)).Inc()
	}

	var receive, payout int
	for _, tx := range snap.Transactions {
		if tx.Type == models.TransactionPayout {
			payout++
		} else {
			receive++
		}
	}
	metrics.LedgerEntries.WithLabelValues(string(models.TransactionReceive)).Set(float64(receive))
	metrics.LedgerEntries.WithLabelValues(string(models.TransactionPayout)).Set(float64(payout))
}

// AddMember appends name to the roster for role.
func (s *Store) AddMember(ctx context.Context, name string, role models.Role) (*models.Snapshot, error) {
	return s.apply(ctx, "add_member", func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.AddMember(cur, name, role)
	})
}

// RemoveMember removes name from the roster for role.
func (s *Store) RemoveMember(ctx context.Context, role models.Role, name string) (*models.Snapshot, error) {
	return s.apply(ctx, "remove_member", func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.RemoveMember(cur, role, name)
	})
}

// AddProject creates a pending project.
func (s *Store) AddProject(ctx context.Context, name, customer, description string) (models.Project, error) {
	var created models.Project
	_, err := s.apply(ctx, "add_project", func(cur *models.Snapshot) (*models.Snapshot, error) {
		next, p, err := s.engine.AddProject(cur, name, customer, description)
		created = p
		return next, err
	})
	if err != nil && !IsPersistError(err) {
		return models.Project{}, err
	}
	return created, err
}

// Approve accepts a pending project and waits for the assignment to be
// confirmed.
func (s *Store) Approve(ctx context.Context, id int64, testers []string) (models.Project, error) {
	next, err := s.apply(ctx, "approve", func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.Approve(cur, id, testers)
	})
	if err != nil && !IsPersistError(err) {
		return models.Project{}, err
	}

	p, _ := next.Project(id)
	if cerr := <-s.confirmer.Confirm(ctx, id, p.AssignedTesters); cerr != nil {
		return p, fmt.Errorf("confirm assignment: %w", cerr)
	}
	return p, err
}

// Reject refuses a pending project.
func (s *Store) Reject(ctx context.Context, id int64, reason string) (models.Project, error) {
	return s.projectAction(ctx, "reject", id, func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.Reject(cur, id, reason)
	})
}

// Complete finishes an ongoing project.
func (s *Store) Complete(ctx context.Context, id int64) (models.Project, error) {
	return s.projectAction(ctx, "complete", id, func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.Complete(cur, id)
	})
}

// RequestSupport records a customer support request.
func (s *Store) RequestSupport(ctx context.Context, id int64) (models.Project, error) {
	return s.projectAction(ctx, "request_support", id, func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.RequestSupport(cur, id)
	})
}

// RequestReopen records a customer reopen request.
func (s *Store) RequestReopen(ctx context.Context, id int64) (models.Project, error) {
	return s.projectAction(ctx, "request_reopen", id, func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.RequestReopen(cur, id)
	})
}

// SendBugFile notifies the customer that a bug file was sent.
func (s *Store) SendBugFile(ctx context.Context, id int64, fileName string) (models.Project, error) {
	return s.projectAction(ctx, "send_bug_file", id, func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.SendBugFile(cur, id, fileName)
	})
}

// UpdateProject edits the project name or customer.
func (s *Store) UpdateProject(ctx context.Context, id int64, patch workflow.ProjectPatch) (models.Project, error) {
	return s.projectAction(ctx, "update_project", id, func(cur *models.Snapshot) (*models.Snapshot, error) {
		return s.engine.UpdateProject(cur, id, patch)
	})
}

func (s *Store) projectAction(ctx context.Context, action string, id int64, fn transform) (models.Project, error) {
	next, err := s.apply(ctx, action, fn)
	if err != nil && !IsPersistError(err) {
		return models.Project{}, err
	}
	p, _ := next.Project(id)
	return p, err
}

// RecordReceipt appends a customer payment to the ledger.
func (s *Store) RecordReceipt(ctx context.Context, project, customer string, amount decimal.Decimal) (models.Transaction, error) {
	var tx models.Transaction
	_, err := s.apply(ctx, "record_receipt", func(cur *models.Snapshot) (*models.Snapshot, error) {
		next, t, err := s.engine.RecordReceipt(cur, project, customer, amount)
		tx = t
		return next, err
	})
	if err != nil && !IsPersistError(err) {
		return models.Transaction{}, err
	}
	return tx, err
}

// RecordPayout appends a payment to a member to the ledger.
func (s *Store) RecordPayout(ctx context.Context, recipient string, role models.Role, amount decimal.Decimal) (models.Transaction, error) {
	var tx models.Transaction
	_, err := s.apply(ctx, "record_payout", func(cur *models.Snapshot) (*models.Snapshot, error) {
		next, t, err := s.engine.RecordPayout(cur, recipient, role, amount)
		tx = t
		return next, err
	})
	if err != nil && !IsPersistError(err) {
		return models.Transaction{}, err
	}
	return tx, err
}

// StatusFilter selects projects by status. The zero value selects all.
type StatusFilter struct {
	Status models.Status
}

// Projects returns the projects matching f in creation order.
func (s *Store) Projects(f StatusFilter) []models.Project {
	snap := s.Snapshot()
	out := make([]models.Project, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		if f.Status == "" || p.Status == f.Status {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Project returns the project with id.
func (s *Store) Project(id int64) (models.Project, bool) {
	return s.Snapshot().Project(id)
}

// AuditLog returns the audit entries for project id, oldest first.
func (s *Store) AuditLog(id int64) []string {
	return slices.Clone(s.Snapshot().AuditLog[id])
}

// TypeFilter selects ledger entries by type. The zero value selects all.
type TypeFilter struct {
	Type models.TransactionType
}

// Transactions returns the ledger entries matching f in ledger order.
func (s *Store) Transactions(f TypeFilter) []models.Transaction {
	snap := s.Snapshot()
	out := make([]models.Transaction, 0, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		if f.Type == "" || tx.Type == f.Type {
			out = append(out, tx)
		}
	}
	return out
}

// Requests returns all customer requests.
func (s *Store) Requests() []models.Request {
	return slices.Clone(s.Snapshot().Requests)
}

// Notifications returns all notifications, oldest first.
func (s *Store) Notifications() []string {
	return slices.Clone(s.Snapshot().Notifications)
}

// LatestNotification returns the newest notification. The time is zero for
// notifications loaded from storage rather than appended by this process.
func (s *Store) LatestNotification() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.snap.Notifications)
	if n == 0 {
		return Notification{}, false
	}
	return Notification{Message: s.snap.Notifications[n-1], Time: s.latestAt}, true
}

// Suggest returns the testers the heuristic would assign now.
func (s *Store) Suggest() []string {
	return s.engine.SuggestTesters(s.Snapshot())
}

// Workloads returns the per-tester project counts used by Suggest.
func (s *Store) Workloads() []workflow.Workload {
	return workflow.Workloads(s.Snapshot())
}
