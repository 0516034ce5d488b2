package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/state"
)

var (
	projectID       int64
	projectName     string
	projectCustomer string
	projectDesc     string
	projectStatus   string
	projectTesters  []string
	projectReason   string
	projectActive   bool
)

// projectCmd represents the project command group
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project workflow commands",
	Long: `Commands for creating projects and moving them through the workflow.

A project starts pending, is then approved (ongoing) or rejected, and an
approved project is finally completed.

Examples:
  testdeskctl project list --status pending
  testdeskctl project list --active
  testdeskctl project create --name "Login flow" --customer Acme
  testdeskctl project approve --id 1718000000000 --tester Alice --tester Bob
  testdeskctl project reject --id 1718000000000 --reason "out of scope"
  testdeskctl project complete --id 1718000000000
  testdeskctl project history --id 1718000000000`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter state.StatusFilter
		if projectStatus != "" && projectStatus != "all" {
			status, ok := models.ParseStatus(projectStatus)
			if !ok {
				return fmt.Errorf("--status must be pending, approved, rejected or all")
			}
			filter.Status = status
		}

		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			projects := store.Projects(filter)
			if projectActive {
				projects = slices.DeleteFunc(projects, func(p models.Project) bool { return p.Terminal() })
			}
			if GetOutput() == "json" {
				return printJSON(cmd.OutOrStdout(), projects)
			}

			w := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(w, "No projects found.")
				return nil
			}
			fmt.Fprintf(w, "\n%-14s  %-24s  %-16s  %-10s  %-10s  %s\n",
				"ID", "NAME", "CUSTOMER", "STATUS", "PROGRESS", "TESTERS")
			fmt.Fprintln(w, strings.Repeat("-", 100))
			for _, p := range projects {
				fmt.Fprintf(w, "%-14d  %-24s  %-16s  %-10s  %-10s  %s\n",
					p.ID,
					truncate(p.Name, 24),
					truncate(p.Customer, 16),
					p.Status,
					p.SubStatus,
					strings.Join(p.AssignedTesters, ", "),
				)
			}
			fmt.Fprintf(w, "\nTotal: %d project(s)\n", len(projects))
			return nil
		})
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pending project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			p, err := store.AddProject(ctx, projectName, projectCustomer, projectDesc)
			if err != nil {
				return err
			}
			return printProject(cmd, p)
		})
	},
}

var projectApproveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve a pending project",
	Long: `Approve a pending project and assign testers. Without --tester the
least loaded testers are assigned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			p, err := store.Approve(ctx, projectID, projectTesters)
			if err != nil {
				return err
			}
			return printProject(cmd, p)
		})
	},
}

var projectRejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject a pending project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			p, err := store.Reject(ctx, projectID, projectReason)
			if err != nil {
				return err
			}
			return printProject(cmd, p)
		})
	},
}

var projectCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete an ongoing project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			p, err := store.Complete(ctx, projectID)
			if err != nil {
				return err
			}
			return printProject(cmd, p)
		})
	},
}

var projectHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the audit log of a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			if _, ok := store.Project(projectID); !ok {
				return fmt.Errorf("project not found: %d", projectID)
			}
			entries := store.AuditLog(projectID)
			if GetOutput() == "json" {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		})
	},
}

func printProject(cmd *cobra.Command, p models.Project) error {
	if GetOutput() == "json" {
		return printJSON(cmd.OutOrStdout(), p)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nProject:\n")
	fmt.Fprintf(w, "  ID:       %d\n", p.ID)
	fmt.Fprintf(w, "  Name:     %s\n", p.Name)
	fmt.Fprintf(w, "  Customer: %s\n", p.Customer)
	fmt.Fprintf(w, "  Status:   %s\n", p.Status)
	if p.SubStatus != models.SubStatusNone {
		fmt.Fprintf(w, "  Progress: %s\n", p.SubStatus)
	}
	if len(p.AssignedTesters) > 0 {
		fmt.Fprintf(w, "  Testers:  %s\n", strings.Join(p.AssignedTesters, ", "))
	}
	if p.Reason != "" {
		fmt.Fprintf(w, "  Reason:   %s\n", p.Reason)
	}
	return nil
}

func init() {
	projectListCmd.Flags().StringVar(&projectStatus, "status", "all", "filter by status (pending, approved, rejected, all)")
	projectListCmd.Flags().BoolVar(&projectActive, "active", false, "hide rejected and completed projects")

	projectCreateCmd.Flags().StringVar(&projectName, "name", "", "project name")
	projectCreateCmd.Flags().StringVar(&projectCustomer, "customer", "", "customer name")
	projectCreateCmd.Flags().StringVar(&projectDesc, "description", "", "project description")

	for _, c := range []*cobra.Command{projectApproveCmd, projectRejectCmd, projectCompleteCmd, projectHistoryCmd} {
		c.Flags().Int64Var(&projectID, "id", 0, "project ID")
		c.MarkFlagRequired("id")
	}
	projectApproveCmd.Flags().StringArrayVar(&projectTesters, "tester", nil, "tester to assign (repeatable)")
	projectRejectCmd.Flags().StringVar(&projectReason, "reason", "", "rejection reason")

	projectCmd.AddCommand(projectListCmd, projectCreateCmd, projectApproveCmd, projectRejectCmd, projectCompleteCmd, projectHistoryCmd)
	rootCmd.AddCommand(projectCmd)
}
