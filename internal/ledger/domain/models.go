// Package domain contains the credit ledger models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TransactionType is the business reason for a credit movement.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "PURCHASE"
	TransactionTypeDebit    TransactionType = "DEBIT"
)

// CreditTransaction is one append-only row of the audit trail. Rows are
// never updated or deleted; the running balance lives on the organization
// and must always equal the signed sum of its transactions.
//
// For DEBIT rows RelatedSessionID carries the exam session id and doubles as
// the idempotency key: a unique index on the column guarantees at most one
// debit per session regardless of how often completion is retried. PURCHASE
// rows leave it NULL, so distinct payments never collide.
type CreditTransaction struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID    `gorm:"not null;index" json:"org_id"`
	Type             TransactionType `gorm:"type:text;not null" json:"type"`
	Amount           int64           `gorm:"not null" json:"amount"`
	RelatedSessionID *snowflake.ID   `gorm:"uniqueIndex:ux_credit_transactions_session" json:"related_session_id,omitempty"`
	Reason           string          `gorm:"type:text" json:"reason"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (CreditTransaction) TableName() string { return "credit_transactions" }

// Signed returns the transaction's effect on the balance.
func (t CreditTransaction) Signed() int64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}
