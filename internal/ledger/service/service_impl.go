package service

import (
	"context"

	auditdomain "github.com/astauriabidco-maker/fle-expert/internal/audit/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/clock"
	ledgerdomain "github.com/astauriabidco-maker/fle-expert/internal/ledger/domain"
	obsmetrics "github.com/astauriabidco-maker/fle-expert/internal/observability/metrics"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	AuditSvc   auditdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) WithTx(tx *gorm.DB) ledgerdomain.Service {
	clone := *s
	clone.db = tx
	return &clone
}

// Debit inserts the DEBIT row first so the unique index on
// related_session_id arbitrates concurrent retries: exactly one caller
// inserts, everyone else observes a no-op and reads the committed balance.
// The conditional balance update runs second; when it finds insufficient
// funds the surrounding transaction rolls the insert back, leaving no trace.
func (s *Service) Debit(ctx context.Context, orgID snowflake.ID, amount int64, sessionID snowflake.ID) (int64, error) {
	if orgID == 0 {
		return 0, ledgerdomain.ErrOrganizationNotFound
	}
	if amount <= 0 {
		return 0, ledgerdomain.ErrInvalidAmount
	}
	if sessionID == 0 {
		return 0, ledgerdomain.ErrInvalidSession
	}

	var (
		balance  int64
		inserted bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		result := tx.WithContext(ctx).Exec(
			`INSERT INTO credit_transactions (
				id, org_id, type, amount, related_session_id, reason, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (related_session_id) DO NOTHING`,
			s.genID.Generate(),
			orgID,
			string(ledgerdomain.TransactionTypeDebit),
			amount,
			sessionID,
			"exam_completion",
			now,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.WithContext(ctx).Raw(
				`SELECT credits_balance FROM organizations WHERE id = ?`, orgID,
			).Scan(&balance).Error
		}
		inserted = true

		update := tx.WithContext(ctx).Exec(
			`UPDATE organizations
			 SET credits_balance = credits_balance - ?, updated_at = ?
			 WHERE id = ? AND credits_balance >= ?`,
			amount,
			now,
			orgID,
			amount,
		)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			var exists int64
			if err := tx.WithContext(ctx).Raw(
				`SELECT COUNT(1) FROM organizations WHERE id = ?`, orgID,
			).Scan(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ledgerdomain.ErrOrganizationNotFound
			}
			return ledgerdomain.ErrInsufficientCredits
		}

		if err := tx.WithContext(ctx).Raw(
			`SELECT credits_balance FROM organizations WHERE id = ?`, orgID,
		).Scan(&balance).Error; err != nil {
			return err
		}

		// The trail entry rides the same transaction as the debit: writing it
		// through a second connection would escape the atomic unit (and
		// deadlocks on sqlite's single write lock).
		return s.auditSvc.WithTx(tx).AuditLog(ctx, orgID, nil, "ledger.debit", "exam_session", sessionID.String(), map[string]any{
			"amount":      amount,
			"new_balance": balance,
		})
	})
	if err != nil {
		return 0, err
	}

	if inserted {
		s.obsMetrics.RecordDebit(amount)
		s.log.Info("credits debited",
			zap.String("org_id", orgID.String()),
			zap.String("session_id", sessionID.String()),
			zap.Int64("amount", amount),
			zap.Int64("balance", balance),
		)
	}
	return balance, nil
}

func (s *Service) Credit(ctx context.Context, orgID snowflake.ID, amount int64, reason string) (int64, error) {
	if orgID == 0 {
		return 0, ledgerdomain.ErrOrganizationNotFound
	}
	if amount <= 0 {
		return 0, ledgerdomain.ErrInvalidAmount
	}

	var balance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		update := tx.WithContext(ctx).Exec(
			`UPDATE organizations
			 SET credits_balance = credits_balance + ?, updated_at = ?
			 WHERE id = ?`,
			amount,
			now,
			orgID,
		)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ledgerdomain.ErrOrganizationNotFound
		}

		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO credit_transactions (
				id, org_id, type, amount, related_session_id, reason, created_at
			) VALUES (?, ?, ?, ?, NULL, ?, ?)`,
			s.genID.Generate(),
			orgID,
			string(ledgerdomain.TransactionTypePurchase),
			amount,
			reason,
			now,
		).Error; err != nil {
			return err
		}

		return tx.WithContext(ctx).Raw(
			`SELECT credits_balance FROM organizations WHERE id = ?`, orgID,
		).Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}

	s.obsMetrics.RecordPurchase(amount)
	return balance, nil
}

func (s *Service) GetBalance(ctx context.Context, orgID snowflake.ID) (int64, error) {
	var balances []int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT credits_balance FROM organizations WHERE id = ?`, orgID,
	).Scan(&balances).Error
	if err != nil {
		return 0, err
	}
	if len(balances) == 0 {
		return 0, ledgerdomain.ErrOrganizationNotFound
	}
	return balances[0], nil
}

func (s *Service) ListTransactions(ctx context.Context, orgID snowflake.ID) ([]ledgerdomain.CreditTransaction, error) {
	var txs []ledgerdomain.CreditTransaction
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM credit_transactions WHERE org_id = ? ORDER BY created_at ASC, id ASC`,
		orgID,
	).Scan(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}
