package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/testdesk/internal/models"
	"github.com/good-yellow-bee/testdesk/internal/state"
)

var (
	ledgerProject   string
	ledgerCustomer  string
	ledgerRecipient string
	ledgerRole      string
	ledgerAmount    string
	ledgerType      string
)

// ledgerCmd represents the ledger command group
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Transaction ledger commands",
	Long: `Commands for recording money received from customers and paid to members.
Ledger entries are append-only.

Examples:
  testdeskctl ledger receipt --project "Login flow" --customer Acme --amount 1200
  testdeskctl ledger payout --recipient Alice --role tester --amount 300.50
  testdeskctl ledger list --type payout`,
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter state.TypeFilter
		switch t := models.TransactionType(ledgerType); t {
		case "", "all":
		case models.TransactionReceive, models.TransactionPayout:
			filter.Type = t
		default:
			return fmt.Errorf("--type must be receive, payout or all")
		}

		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			txs := store.Transactions(filter)
			if GetOutput() == "json" {
				return printJSON(cmd.OutOrStdout(), txs)
			}

			w := cmd.OutOrStdout()
			if len(txs) == 0 {
				fmt.Fprintln(w, "No transactions found.")
				return nil
			}
			fmt.Fprintf(w, "\n%-16s  %-8s  %12s  %-20s  %-20s  %s\n",
				"DATE", "TYPE", "AMOUNT", "COUNTERPART", "PROJECT/ROLE", "ID")
			fmt.Fprintln(w, strings.Repeat("-", 120))
			for _, tx := range txs {
				detail := tx.Project
				if tx.Type == models.TransactionPayout {
					detail = string(tx.Role)
				}
				fmt.Fprintf(w, "%-16s  %-8s  %12s  %-20s  %-20s  %s\n",
					tx.Date.Format("2006-01-02 15:04"),
					tx.Type,
					tx.Amount.StringFixed(2),
					truncate(tx.Counterpart(), 20),
					truncate(detail, 20),
					tx.ID,
				)
			}
			fmt.Fprintf(w, "\nTotal: %d transaction(s)\n", len(txs))
			return nil
		})
	},
}

var ledgerReceiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Record money received from a customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(ledgerAmount)
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			tx, err := store.RecordReceipt(ctx, ledgerProject, ledgerCustomer, amount)
			if err != nil {
				return err
			}
			return printTransaction(cmd, tx)
		})
	},
}

var ledgerPayoutCmd = &cobra.Command{
	Use:   "payout",
	Short: "Record money paid to a member",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(ledgerAmount)
		if err != nil {
			return err
		}
		role, ok := models.ParseRole(ledgerRole)
		if !ok {
			return fmt.Errorf("--role must be tester, customer or testLeader")
		}
		return withStore(cmd, func(ctx context.Context, store *state.Store) error {
			tx, err := store.RecordPayout(ctx, ledgerRecipient, role, amount)
			if err != nil {
				return err
			}
			return printTransaction(cmd, tx)
		})
	},
}

func parseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --amount %q: %w", s, err)
	}
	return amount, nil
}

func printTransaction(cmd *cobra.Command, tx models.Transaction) error {
	if GetOutput() == "json" {
		return printJSON(cmd.OutOrStdout(), tx)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s of %s (%s) id=%s\n",
		tx.Type, tx.Amount.StringFixed(2), tx.Counterpart(), tx.ID)
	return nil
}

func init() {
	ledgerListCmd.Flags().StringVar(&ledgerType, "type", "all", "filter by type (receive, payout, all)")

	ledgerReceiptCmd.Flags().StringVar(&ledgerProject, "project", "", "project name")
	ledgerReceiptCmd.Flags().StringVar(&ledgerCustomer, "customer", "", "customer name")
	ledgerReceiptCmd.Flags().StringVar(&ledgerAmount, "amount", "", "amount received")

	ledgerPayoutCmd.Flags().StringVar(&ledgerRecipient, "recipient", "", "member name")
	ledgerPayoutCmd.Flags().StringVar(&ledgerRole, "role", "", "member role (tester, customer, testLeader)")
	ledgerPayoutCmd.Flags().StringVar(&ledgerAmount, "amount", "", "amount paid")

	ledgerCmd.AddCommand(ledgerListCmd, ledgerReceiptCmd, ledgerPayoutCmd)
	rootCmd.AddCommand(ledgerCmd)
}
