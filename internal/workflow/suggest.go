package workflow

import (
	"slices"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

// Workload is the number of projects a tester is assigned to.
type Workload struct {
	Tester   string `json:"tester"`
	Projects int    `json:"projects"`
}

// Workloads counts assignments for every rostered tester, in roster order.
func Workloads(s *models.Snapshot) []Workload {
	out := make([]Workload, len(s.Testers))
	for i, t := range s.Testers {
		out[i] = Workload{Tester: t}
		for j := range s.Projects {
			if s.Projects[j].HasTester(t) {
				out[i].Projects++
			}
		}
	}
	return out
}

// SuggestTesters picks the least loaded testers. Ties keep roster order.
func (e *Engine) SuggestTesters(s *models.Snapshot) []string {
	loads := Workloads(s)
	slices.SortStableFunc(loads, func(a, b Workload) int {
		return a.Projects - b.Projects
	})
	n := min(e.suggestionSize, len(loads))
	out := make([]string, n)
	for i := range n {
		out[i] = loads[i].Tester
	}
	return out
}
