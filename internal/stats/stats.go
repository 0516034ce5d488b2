// Package stats derives dashboard figures and chart series from a snapshot.
package stats

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/workflow"
)

const monthLayout = "2006-01"

// ProjectCounts counts projects by status and sub-status.
type ProjectCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
}

// MonthlyTotals is one point of the revenue chart.
type MonthlyTotals struct {
	Month    string          `json:"month"`
	Received decimal.Decimal `json:"received"`
	Paid     decimal.Decimal `json:"paid"`
}

// Summary is everything the statistics view shows.
type Summary struct {
	Projects      ProjectCounts                   `json:"projects"`
	Members       map[models.Role]int             `json:"members"`
	TotalReceived decimal.Decimal                 `json:"totalReceived"`
	TotalPaid     decimal.Decimal                 `json:"totalPaid"`
	Balance       decimal.Decimal                 `json:"balance"`
	PaidByRole    map[models.Role]decimal.Decimal `json:"paidByRole"`
	Workload      []workflow.Workload             `json:"workload"`
	Monthly       []MonthlyTotals                 `json:"monthly"`
	Requests      map[models.RequestType]int      `json:"requests"`
}

// Compute builds a Summary. Months use the UTC calendar.
func Compute(s *models.Snapshot) Summary {
	sum := Summary{
		Members:       make(map[models.Role]int, len(models.Roles)),
		TotalReceived: decimal.Zero,
		TotalPaid:     decimal.Zero,
		PaidByRole:    make(map[models.Role]decimal.Decimal, len(models.Roles)),
		Workload:      workflow.Workloads(s),
		Requests:      make(map[models.RequestType]int),
	}

	for _, role := range models.Roles {
		sum.Members[role] = len(s.Roster(role))
		sum.PaidByRole[role] = decimal.Zero
	}

	for _, p := range s.Projects {
		sum.Projects.Total++
		switch p.Status {
		case models.StatusPending:
			sum.Projects.Pending++
		case models.StatusApproved:
			sum.Projects.Approved++
		case models.StatusRejected:
			sum.Projects.Rejected++
		}
		switch p.SubStatus {
		case models.SubStatusOngoing:
			sum.Projects.Ongoing++
		case models.SubStatusCompleted:
			sum.Projects.Completed++
		}
	}

	months := make(map[string]*MonthlyTotals)
	for _, tx := range s.Transactions {
		key := tx.Date.UTC().Format(monthLayout)
		m, ok := months[key]
		if !ok {
			m = &MonthlyTotals{Month: key, Received: decimal.Zero, Paid: decimal.Zero}
			months[key] = m
		}
		switch tx.Type {
		case models.TransactionReceive:
			sum.TotalReceived = sum.TotalReceived.Add(tx.Amount)
			m.Received = m.Received.Add(tx.Amount)
		case models.TransactionPayout:
			sum.TotalPaid = sum.TotalPaid.Add(tx.Amount)
			sum.PaidByRole[tx.Role] = sum.PaidByRole[tx.Role].Add(tx.Amount)
			m.Paid = m.Paid.Add(tx.Amount)
		}
	}
	sum.Balance = sum.TotalReceived.Sub(sum.TotalPaid)

	sum.Monthly = make([]MonthlyTotals, 0, len(months))
	for _, m := range months {
		sum.Monthly = append(sum.Monthly, *m)
	}
	slices.SortFunc(sum.Monthly, func(a, b MonthlyTotals) int {
		if a.Month < b.Month {
			return -1
		}
		if a.Month > b.Month {
			return 1
		}
		return 0
	})

	for _, r := range s.Requests {
		sum.Requests[r.Type]++
	}
	return sum
}
