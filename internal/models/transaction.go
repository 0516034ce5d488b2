package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money received from customers and money
// paid out to members.
type TransactionType string

const (
	TransactionReceive TransactionType = "receive"
	TransactionPayout  TransactionType = "payout"
)

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
)

// Transaction is an immutable ledger entry.
// Receipts carry Customer and Project, payouts carry Recipient and Role.
type Transaction struct {
	ID        string            `json:"id"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Customer  string            `json:"customer,omitempty"`
	Project   string            `json:"project,omitempty"`
	Recipient string            `json:"recipient,omitempty"`
	Role      Role              `json:"role,omitempty"`
	Status    TransactionStatus `json:"status"`
	Date      time.Time         `json:"date"`
}

// Counterpart returns the member name on the other side of the entry.
func (t *Transaction) Counterpart() string {
	if t.Type == TransactionPayout {
		return t.Recipient
	}
	return t.Customer
}
