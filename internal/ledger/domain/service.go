package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// WithTx returns a service bound to an open transaction so callers can
	// fold a debit into their own atomic unit.
	WithTx(tx *gorm.DB) Service

	// Debit removes amount from the organization balance exactly once per
	// sessionID. Retries with the same sessionID are no-ops that return the
	// current balance. A balance below amount fails with
	// ErrInsufficientCredits and changes nothing.
	Debit(ctx context.Context, orgID snowflake.ID, amount int64, sessionID snowflake.ID) (int64, error)

	// Credit adds amount to the organization balance. Not idempotency-gated:
	// distinct purchases are expected to be distinct events.
	Credit(ctx context.Context, orgID snowflake.ID, amount int64, reason string) (int64, error)

	GetBalance(ctx context.Context, orgID snowflake.ID) (int64, error)
	ListTransactions(ctx context.Context, orgID snowflake.ID) ([]CreditTransaction, error)
}

var (
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidSession       = errors.New("invalid_session")
	ErrInsufficientCredits  = errors.New("insufficient_credits")
	ErrOrganizationNotFound = errors.New("organization_not_found")
)
