package repository

import (
	"context"
	"errors"
	"time"

	"github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session domain.ExamSession) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO exam_sessions (id, user_id, org_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.OrgID,
		string(session.Status),
		session.CreatedAt,
	).Error
}

func (r *repository) Get(ctx context.Context, id snowflake.ID) (*domain.ExamSession, error) {
	var session domain.ExamSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) MarkInProgress(ctx context.Context, id snowflake.ID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE exam_sessions SET status = ? WHERE id = ? AND status = ?`,
		string(domain.StatusInProgress),
		id,
		string(domain.StatusAssigned),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Complete(ctx context.Context, id snowflake.ID, score int, level, resultHash string, completedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE exam_sessions
		 SET status = ?, score = ?, estimated_level = ?, result_hash = ?, completed_at = ?
		 WHERE id = ? AND status <> ?`,
		string(domain.StatusCompleted),
		score,
		level,
		resultHash,
		completedAt,
		id,
		string(domain.StatusCompleted),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindCompletedByHash(ctx context.Context, resultHash string) (*domain.ExamSession, error) {
	var session domain.ExamSession
	err := r.db.WithContext(ctx).
		First(&session, "result_hash = ? AND status = ?", resultHash, string(domain.StatusCompleted)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}
