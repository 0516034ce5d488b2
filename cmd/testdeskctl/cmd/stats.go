package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/state"
	"github.com/good-yellow-bee/testdesk/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			sum := stats.Compute(store.Snapshot())
			if GetOutput() == "json" {
				return printJSON(cmd.OutOrStdout(), sum)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\nProjects:  %d total, %d pending, %d approved, %d rejected\n",
				sum.Projects.Total, sum.Projects.Pending, sum.Projects.Approved, sum.Projects.Rejected)
			fmt.Fprintf(w, "Progress:  %d ongoing, %d completed\n", sum.Projects.Ongoing, sum.Projects.Completed)
			fmt.Fprintf(w, "Members:   %d testers, %d customers, %d test leaders\n",
				sum.Members[models.RoleTester], sum.Members[models.RoleCustomer], sum.Members[models.RoleTestLeader])
			fmt.Fprintf(w, "Received:  %s\n", sum.TotalReceived.StringFixed(2))
			fmt.Fprintf(w, "Paid out:  %s\n", sum.TotalPaid.StringFixed(2))
			fmt.Fprintf(w, "Balance:   %s\n", sum.Balance.StringFixed(2))

			if len(sum.Workload) > 0 {
				fmt.Fprintf(w, "\nTester workload:\n")
				for _, wl := range sum.Workload {
					fmt.Fprintf(w, "  %-24s %d\n", truncate(wl.Tester, 24), wl.Projects)
				}
			}
			if len(sum.Monthly) > 0 {
				fmt.Fprintf(w, "\n%-8s  %12s  %12s\n", "MONTH", "RECEIVED", "PAID")
				for _, m := range sum.Monthly {
					fmt.Fprintf(w, "%-8s  %12s  %12s\n", m.Month, m.Received.StringFixed(2), m.Paid.StringFixed(2))
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
