package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session ExamSession) error
	Get(ctx context.Context, id snowflake.ID) (*ExamSession, error)

	// MarkInProgress is the ASSIGNED -> IN_PROGRESS compare-and-swap.
	// Returns false when the session was not in ASSIGNED.
	MarkInProgress(ctx context.Context, id snowflake.ID) (bool, error)

	// Complete is the terminal compare-and-swap: it persists score, level,
	// hash and completion time only when status is not yet COMPLETED.
	// Returns false when a concurrent completion already won.
	Complete(ctx context.Context, id snowflake.ID, score int, level, resultHash string, completedAt time.Time) (bool, error)

	// FindCompletedByHash resolves the authoritative session for a
	// presented verification hash.
	FindCompletedByHash(ctx context.Context, resultHash string) (*ExamSession, error)
}
