package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

// Snapshotter reads and writes the whole dashboard state through a KV.
type Snapshotter struct {
	kv KV
}

// NewSnapshotter wraps kv.
func NewSnapshotter(kv KV) *Snapshotter {
	return &Snapshotter{kv: kv}
}

// Load reads every key. Missing keys yield empty collections; a key that
// cannot be decoded fails the load.
func (s *Snapshotter) Load(ctx context.Context) (*models.Snapshot, error) {
	values := make(map[string][]byte, len(AllKeys))
	for _, key := range AllKeys {
		v, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		if ok {
			values[key] = v
		}
	}
	return Decode(values)
}

// Save rewrites every key from snap.
func (s *Snapshotter) Save(ctx context.Context, snap *models.Snapshot) error {
	values, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Encode serializes snap into one JSON document per key.
func Encode(snap *models.Snapshot) (map[string][]byte, error) {
	docs := map[string]any{
		KeyProjects:      nonNil(snap.Projects),
		KeyTesters:       nonNil(snap.Testers),
		KeyCustomers:     nonNil(snap.Customers),
		KeyTestLeaders:   nonNil(snap.TestLeaders),
		KeyNotifications: nonNil(snap.Notifications),
		KeyTransactions:  nonNil(snap.Transactions),
		KeyRequests:      nonNil(snap.Requests),
		KeyProjectLogs:   snap.CloneAuditLog(),
	}
	out := make(map[string][]byte, len(docs))
	for key, doc := range docs {
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = b
	}
	return out, nil
}

// Decode rebuilds a snapshot from the documents in values. Absent keys
// are treated as empty.
func Decode(values map[string][]byte) (*models.Snapshot, error) {
	snap := models.NewSnapshot()
	targets := map[string]any{
		KeyProjects:      &snap.Projects,
		KeyTesters:       &snap.Testers,
		KeyCustomers:     &snap.Customers,
		KeyTestLeaders:   &snap.TestLeaders,
		KeyNotifications: &snap.Notifications,
		KeyTransactions:  &snap.Transactions,
		KeyRequests:      &snap.Requests,
		KeyProjectLogs:   &snap.AuditLog,
	}
	for _, key := range AllKeys {
		raw, ok := values[key]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, targets[key]); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	if snap.AuditLog == nil {
		snap.AuditLog = make(map[int64][]string)
	}
	for i := range snap.Projects {
		p := &snap.Projects[i]
		// Legacy records store approvals without a sub-status.
		if p.Status == models.StatusApproved && p.SubStatus == models.SubStatusNone {
			p.SubStatus = models.SubStatusOngoing
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyProjects, err)
		}
	}
	return snap, nil
}

// nonNil makes empty collections encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
