package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestCompute_Empty(t *testing.T) {
	sum := Compute(models.NewSnapshot())

	if sum.Projects.Total != 0 || !sum.Balance.IsZero() {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Monthly) != 0 || len(sum.Workload) != 0 {
		t.Errorf("series should be empty: %+v", sum)
	}
	if _, ok := sum.PaidByRole[models.RoleTester]; !ok {
		t.Error("every role should have a payout total")
	}
}

func TestCompute(t *testing.T) {
	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC)

	snap := &models.Snapshot{
		Testers:   []string{"T1", "T2"},
		Customers: []string{"Acme"},
		Projects: []models.Project{
			{ID: 1, Name: "A", Status: models.StatusPending},
			{ID: 2, Name: "B", Status: models.StatusApproved, SubStatus: models.SubStatusOngoing, AssignedTesters: []string{"T1", "T2"}},
			{ID: 3, Name: "C", Status: models.StatusApproved, SubStatus: models.SubStatusCompleted, AssignedTesters: []string{"T1"}},
			{ID: 4, Name: "D", Status: models.StatusRejected, Reason: "no budget"},
		},
		Transactions: []models.Transaction{
			{ID: "1", Type: models.TransactionReceive, Amount: amount(300), Customer: "Acme", Project: "B", Date: feb},
			{ID: "2", Type: models.TransactionReceive, Amount: amount(200), Customer: "Acme", Project: "C", Date: jan},
			{ID: "3", Type: models.TransactionPayout, Amount: amount(120), Recipient: "T1", Role: models.RoleTester, Date: feb},
			{ID: "4", Type: models.TransactionPayout, Amount: amount(30), Recipient: "L", Role: models.RoleTestLeader, Date: feb},
		},
		Requests: []models.Request{
			{ID: 1, ProjectID: 3, Type: models.RequestReopen},
			{ID: 2, ProjectID: 2, Type: models.RequestSupport},
			{ID: 3, ProjectID: 2, Type: models.RequestSupport},
		},
	}

	sum := Compute(snap)

	want := ProjectCounts{Total: 4, Pending: 1, Approved: 2, Rejected: 1, Ongoing: 1, Completed: 1}
	if sum.Projects != want {
		t.Errorf("projects = %+v, want %+v", sum.Projects, want)
	}
	if !sum.TotalReceived.Equal(amount(500)) || !sum.TotalPaid.Equal(amount(150)) || !sum.Balance.Equal(amount(350)) {
		t.Errorf("totals received=%s paid=%s balance=%s", sum.TotalReceived, sum.TotalPaid, sum.Balance)
	}
	if !sum.PaidByRole[models.RoleTester].Equal(amount(120)) || !sum.PaidByRole[models.RoleCustomer].IsZero() {
		t.Errorf("paid by role = %v", sum.PaidByRole)
	}
	if sum.Members[models.RoleTester] != 2 || sum.Members[models.RoleCustomer] != 1 {
		t.Errorf("members = %v", sum.Members)
	}

	if len(sum.Workload) != 2 || sum.Workload[0].Projects != 2 || sum.Workload[1].Projects != 1 {
		t.Errorf("workload = %+v", sum.Workload)
	}

	if len(sum.Monthly) != 2 {
		t.Fatalf("monthly = %+v", sum.Monthly)
	}
	if sum.Monthly[0].Month != "2024-01" || !sum.Monthly[0].Received.Equal(amount(200)) {
		t.Errorf("january = %+v", sum.Monthly[0])
	}
	if sum.Monthly[1].Month != "2024-02" || !sum.Monthly[1].Paid.Equal(amount(150)) {
		t.Errorf("february = %+v", sum.Monthly[1])
	}

	if sum.Requests[models.RequestSupport] != 2 || sum.Requests[models.RequestReopen] != 1 {
		t.Errorf("requests = %v", sum.Requests)
	}
}
