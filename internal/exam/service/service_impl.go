package service

import (
	"context"
	"errors"
	"time"

	auditdomain "github.com/astauriabidco-maker/fle-expert/internal/audit/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/clock"
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	integritydomain "github.com/astauriabidco-maker/fle-expert/internal/integrity/domain"
	ledgerdomain "github.com/astauriabidco-maker/fle-expert/internal/ledger/domain"
	obsmetrics "github.com/astauriabidco-maker/fle-expert/internal/observability/metrics"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lookupRetries = 3

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Scoring    *config.ScoringConfigHolder
	Repo       examdomain.Repository
	OrgRepo    orgdomain.Repository
	Ledger     ledgerdomain.Service
	Integrity  integritydomain.Service
	AuditSvc   auditdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	scoring    *config.ScoringConfigHolder
	repo       examdomain.Repository
	orgRepo    orgdomain.Repository
	ledger     ledgerdomain.Service
	integrity  integritydomain.Service
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) examdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("exam.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		scoring:    p.Scoring,
		repo:       p.Repo,
		orgRepo:    p.OrgRepo,
		ledger:     p.Ledger,
		integrity:  p.Integrity,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Start(ctx context.Context, userID, orgID snowflake.ID) (*examdomain.ExamSession, error) {
	if userID == 0 || orgID == 0 {
		return nil, examdomain.ErrSessionNotFound
	}

	var member bool
	err := retryRead(ctx, func() error {
		var err error
		member, err = s.orgRepo.IsMember(ctx, orgID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, examdomain.ErrNotMember
	}

	session := examdomain.ExamSession{
		ID:        s.genID.Generate(),
		UserID:    userID,
		OrgID:     orgID,
		Status:    examdomain.StatusAssigned,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("exam session started",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("org_id", orgID.String()),
	)
	return &session, nil
}

func (s *Service) Begin(ctx context.Context, sessionID, userID snowflake.ID) (*examdomain.ExamSession, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case examdomain.StatusInProgress:
		return session, nil
	case examdomain.StatusCompleted:
		return nil, examdomain.ErrInvalidTransition
	}

	if _, err := s.repo.MarkInProgress(ctx, sessionID); err != nil {
		return nil, err
	}
	// Reload rather than patching in memory: a concurrent Begin may have
	// applied the transition first, which is equivalent.
	return s.repo.Get(ctx, sessionID)
}

// Complete drives the only transition with financial effect. The ledger
// debit and the terminal status update share one database transaction; the
// debit's idempotency key (the session id) is what makes retries safe even
// across processes.
func (s *Service) Complete(ctx context.Context, sessionID, userID snowflake.ID, answers []examdomain.Answer) (*examdomain.ExamSession, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status == examdomain.StatusCompleted {
		return session, nil
	}

	cfg := s.scoring.Get()
	score := scaledScore(countCorrect(answers), len(answers), cfg.MaxScaledScore)
	level := bandFor(cfg, score)
	completedAt := s.clock.Now()
	resultHash := s.integrity.Fingerprint(userID, score, completedAt.Format("2006-01-02"))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.WithTx(tx).Debit(ctx, session.OrgID, cfg.ExamCostCredits, sessionID); err != nil {
			return err
		}
		// Losing this compare-and-swap means a concurrent completion
		// committed first; its debit made ours a no-op, so there is nothing
		// to undo and the committed result is returned below.
		if _, err := s.repo.WithTx(tx).Complete(ctx, sessionID, score, level, resultHash, completedAt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ledgerdomain.ErrInsufficientCredits) {
			s.obsMetrics.RecordCompletion("insufficient_credits")
			s.log.Warn("exam completion refused",
				zap.String("session_id", sessionID.String()),
				zap.String("org_id", session.OrgID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	final, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordCompletion("completed")
	if err := s.auditSvc.AuditLog(ctx, final.OrgID, &userID, "exam.completed", "exam_session", sessionID.String(), map[string]any{
		"score": score,
		"level": level,
	}); err != nil {
		s.log.Warn("failed to write exam audit log", zap.Error(err))
	}
	s.log.Info("exam session completed",
		zap.String("session_id", sessionID.String()),
		zap.Int("score", score),
		zap.String("level", level),
	)
	return final, nil
}

func (s *Service) Get(ctx context.Context, sessionID, userID snowflake.ID) (*examdomain.ExamSession, error) {
	return s.ownedSession(ctx, sessionID, userID)
}

func (s *Service) ownedSession(ctx context.Context, sessionID, userID snowflake.ID) (*examdomain.ExamSession, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, examdomain.ErrSessionNotOwned
	}
	return session, nil
}

// retryRead wraps idempotent lookups with a bounded exponential backoff so a
// transient storage blip does not fail the request.
func retryRead(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(50*time.Millisecond),
		), lookupRetries),
		ctx,
	)
	return backoff.Retry(op, policy)
}
