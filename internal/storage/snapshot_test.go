package storage

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	t0 := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	s := models.NewSnapshot()
	s.Testers = []string{"T1", "T2"}
	s.Customers = []string{"Acme"}
	s.TestLeaders = []string{"L1"}
	s.Projects = []models.Project{
		{
			ID: 1714645800000, Name: "Login flow", Customer: "Acme", Description: "SSO",
			Status: models.StatusApproved, SubStatus: models.SubStatusOngoing,
			AssignedTesters: []string{"T1", "T2"}, CreatedAt: t0, UpdatedAt: t0.Add(time.Minute),
		},
		{
			ID: 1714645800001, Name: "Checkout", Customer: "Ghost Corp",
			Status: models.StatusRejected, Reason: "budget", CreatedAt: t0, UpdatedAt: t0,
		},
		{
			ID: 1714645800002, Name: "Search", Customer: "Acme",
			Status: models.StatusPending, CreatedAt: t0, UpdatedAt: t0,
		},
	}
	s.Transactions = []models.Transaction{
		{
			ID: "b6f1", Type: models.TransactionReceive, Amount: decimal.NewFromInt(500),
			Customer: "Acme", Project: "Login flow", Status: models.TransactionCompleted, Date: t0,
		},
		{
			ID: "c7a2", Type: models.TransactionPayout, Amount: decimal.RequireFromString("99.95"),
			Recipient: "T1", Role: models.RoleTester, Status: models.TransactionCompleted, Date: t0.Add(time.Hour),
		},
	}
	s.Requests = []models.Request{
		{ID: 1714645900000, ProjectID: 1714645800001, Project: "Checkout", Type: models.RequestReopen, CreatedAt: t0},
	}
	s.Notifications = []string{"Project Login flow approved, testers: T1, T2"}
	s.AuditLog[1714645800000] = []string{"Created by Admin at 2024-05-02 10:30:00", "Approved by Admin at 2024-05-02 10:31:00"}
	return s
}

func TestSnapshotter_RoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	snap := NewSnapshotter(kv)
	ctx := context.Background()
	want := sampleSnapshot()

	if err := snap.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := snap.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !reflect.DeepEqual(got.Projects, want.Projects) {
		t.Errorf("projects differ after round trip:\n got %+v\nwant %+v", got.Projects, want.Projects)
	}
	for _, pair := range [][2][]string{
		{got.Testers, want.Testers},
		{got.Customers, want.Customers},
		{got.TestLeaders, want.TestLeaders},
		{got.Notifications, want.Notifications},
	} {
		if !reflect.DeepEqual(pair[0], pair[1]) {
			t.Errorf("roster differs: got %v want %v", pair[0], pair[1])
		}
	}
	if !reflect.DeepEqual(got.Requests, want.Requests) {
		t.Errorf("requests differ: %+v", got.Requests)
	}
	if !reflect.DeepEqual(got.AuditLog, want.AuditLog) {
		t.Errorf("audit log differs: %v", got.AuditLog)
	}
	if len(got.Transactions) != len(want.Transactions) {
		t.Fatalf("transactions = %d", len(got.Transactions))
	}
	for i := range want.Transactions {
		g, w := got.Transactions[i], want.Transactions[i]
		if !g.Amount.Equal(w.Amount) {
			t.Errorf("amount[%d] = %s, want %s", i, g.Amount, w.Amount)
		}
		g.Amount, w.Amount = decimal.Zero, decimal.Zero
		if !reflect.DeepEqual(g, w) {
			t.Errorf("transaction[%d] = %+v, want %+v", i, g, w)
		}
	}
}

func TestSnapshotter_RoundTripSQLite(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	snap := NewSnapshotter(store)
	ctx := context.Background()
	want := sampleSnapshot()

	if err := snap.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := snap.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got.Projects, want.Projects) {
		t.Errorf("projects differ after sqlite round trip")
	}
}

func TestSnapshotter_MissingKeysAreEmpty(t *testing.T) {
	got, err := NewSnapshotter(NewMemoryKV()).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Projects) != 0 || len(got.Testers) != 0 || len(got.Notifications) != 0 {
		t.Errorf("expected empty snapshot, got %+v", got)
	}
	if got.AuditLog == nil {
		t.Error("audit log should be initialized")
	}
}

func TestSnapshotter_CorruptKey(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(context.Background(), KeyTransactions, []byte("{not json"))

	_, err := NewSnapshotter(kv).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), KeyTransactions) {
		t.Fatalf("err = %v, want error naming %s", err, KeyTransactions)
	}
}

func TestSnapshotter_InvalidProjectState(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(context.Background(), KeyProjects, []byte(`[{"id":1,"name":"x","customer":"y","status":"pending","subStatus":"ongoing"}]`))

	if _, err := NewSnapshotter(kv).Load(context.Background()); err == nil {
		t.Fatal("expected invariant violation to fail the load")
	}
}

func TestSnapshotter_ApprovedWithoutSubStatus(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(context.Background(), KeyProjects, []byte(`[{"id":1718000000000,"name":"Login","customer":"Acme","status":"approved","assignedTesters":["T1"]}]`))

	snap, err := NewSnapshotter(kv).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, ok := snap.Project(1718000000000)
	if !ok {
		t.Fatal("project missing after load")
	}
	if p.Status != models.StatusApproved || p.SubStatus != models.SubStatusOngoing {
		t.Errorf("status = %s/%s, want approved/ongoing", p.Status, p.SubStatus)
	}
}

func TestEncode_UsesDashboardLayout(t *testing.T) {
	values, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, key := range AllKeys {
		if _, ok := values[key]; !ok {
			t.Errorf("key %s missing from encoding", key)
		}
	}

	var projects []map[string]any
	if err := json.Unmarshal(values[KeyProjects], &projects); err != nil {
		t.Fatalf("unmarshal projects: %v", err)
	}
	for _, field := range []string{"assignedTesters", "subStatus", "createdAt"} {
		if _, ok := projects[0][field]; !ok {
			t.Errorf("project field %s missing", field)
		}
	}

	empty, err := Encode(models.NewSnapshot())
	if err != nil {
		t.Fatalf("encode empty: %v", err)
	}
	if string(empty[KeyTesters]) != "[]" {
		t.Errorf("empty roster encoded as %s, want []", empty[KeyTesters])
	}
}
