package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/state"
)

var (
	memberName  string
	memberRole  string
	memberForce bool
)

// memberCmd represents the member command group
var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Member roster commands",
	Long: `Commands for managing testers, customers and test leaders.

Examples:
  testdeskctl member list
  testdeskctl member add --name Alice --role tester
  testdeskctl member remove --name Alice --role tester`,
}

var memberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all members",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			members := store.Snapshot().Members()
			if GetOutput() == "json" {
				return printJSON(cmd.OutOrStdout(), members)
			}

			w := cmd.OutOrStdout()
			if len(members) == 0 {
				fmt.Fprintln(w, "No members found.")
				return nil
			}
			fmt.Fprintf(w, "\n%-30s  %s\n", "NAME", "ROLE")
			fmt.Fprintln(w, strings.Repeat("-", 44))
			for _, m := range members {
				fmt.Fprintf(w, "%-30s  %s\n", truncate(m.Name, 30), m.Role)
			}
			fmt.Fprintf(w, "\nTotal: %d member(s)\n", len(members))
			return nil
		})
	},
}

var memberAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a member to a roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := models.ParseRole(memberRole)
		if !ok {
			return fmt.Errorf("--role must be tester, customer or testLeader")
		}
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			if _, err := store.AddMember(ctx, memberName, role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", role, strings.TrimSpace(memberName))
			return nil
		})
	},
}

var memberRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a member from a roster",
	Long: `Remove a member from a roster. Projects that reference the member
by name keep the reference.

Examples:
  testdeskctl member remove --name Alice --role tester
  testdeskctl member remove --name Alice --role tester --force  # skip confirmation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := models.ParseRole(memberRole)
		if !ok {
			return fmt.Errorf("--role must be tester, customer or testLeader")
		}

		// Prompt only for interactive sessions so scripts never block.
		if !memberForce && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintf(cmd.OutOrStdout(), "Remove %s '%s'? [y/N]: ", role, memberName)
			var confirm string
			fmt.Scanln(&confirm)
			if !strings.EqualFold(confirm, "y") {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
		}
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			if _, err := store.RemoveMember(ctx, role, memberName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", role, memberName)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{memberAddCmd, memberRemoveCmd} {
		c.Flags().StringVar(&memberName, "name", "", "member name")
		c.Flags().StringVar(&memberRole, "role", "", "role (tester, customer, testLeader)")
		c.MarkFlagRequired("name")
		c.MarkFlagRequired("role")
	}

	memberRemoveCmd.Flags().BoolVar(&memberForce, "force", false, "skip confirmation prompt")

	memberCmd.AddCommand(memberListCmd, memberAddCmd, memberRemoveCmd)
	rootCmd.AddCommand(memberCmd)
}
