package workflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/testdesk/internal/models"
)

// RecordReceipt appends money received from a customer for a project.
func (e *Engine) RecordReceipt(s *models.Snapshot, project, customer string, amount decimal.Decimal) (*models.Snapshot, models.Transaction, error) {
	project = strings.TrimSpace(project)
	customer = strings.TrimSpace(customer)
	if project == "" {
		return nil, models.Transaction{}, emptyField("project")
	}
	if customer == "" {
		return nil, models.Transaction{}, emptyField("customer")
	}
	if err := checkAmount(amount); err != nil {
		return nil, models.Transaction{}, err
	}

	tx := models.Transaction{
		ID:       e.newID(),
		Type:     models.TransactionReceive,
		Amount:   amount,
		Customer: customer,
		Project:  project,
		Status:   models.TransactionCompleted,
		Date:     ledgerTime(s, e.now()),
	}
	msg := fmt.Sprintf("Received %s from %s for project %s", amount.String(), customer, project)
	return appendTransaction(s, tx, msg), tx, nil
}

// RecordPayout appends money paid to a member.
func (e *Engine) RecordPayout(s *models.Snapshot, recipient string, role models.Role, amount decimal.Decimal) (*models.Snapshot, models.Transaction, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, models.Transaction{}, emptyField("recipient")
	}
	if role == "" {
		return nil, models.Transaction{}, emptyField("role")
	}
	if !role.Valid() {
		return nil, models.Transaction{}, invalidValue("role", "unknown role %q", role)
	}
	if err := checkAmount(amount); err != nil {
		return nil, models.Transaction{}, err
	}

	tx := models.Transaction{
		ID:        e.newID(),
		Type:      models.TransactionPayout,
		Amount:    amount,
		Recipient: recipient,
		Role:      role,
		Status:    models.TransactionCompleted,
		Date:      ledgerTime(s, e.now()),
	}
	msg := fmt.Sprintf("Paid %s to %s (%s)", amount.String(), recipient, role)
	return appendTransaction(s, tx, msg), tx, nil
}

func checkAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return emptyField("amount")
	}
	if amount.IsNegative() {
		return invalidValue("amount", "amount must be positive, got %s", amount.String())
	}
	return nil
}

func appendTransaction(s *models.Snapshot, tx models.Transaction, msg string) *models.Snapshot {
	next := *s
	next.Transactions = append(slices.Clip(s.Transactions), tx)
	return withNotification(&next, msg)
}
