package migration

import (
	auditdomain "github.com/astauriabidco-maker/fle-expert/internal/audit/domain"
	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	ledgerdomain "github.com/astauriabidco-maker/fle-expert/internal/ledger/domain"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	"gorm.io/gorm"
)

func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&orgdomain.Organization{},
		&orgdomain.User{},
		&ledgerdomain.CreditTransaction{},
		&examdomain.ExamSession{},
		&auditdomain.AuditLog{},
	); err != nil {
		return err
	}

	// SQLite needs these in place for ON CONFLICT arbitration; the model
	// tags already declare them, this is just the explicit fallback.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_credit_transactions_session ON credit_transactions(related_session_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_exam_sessions_result_hash ON exam_sessions(result_hash)")
	return nil
}
