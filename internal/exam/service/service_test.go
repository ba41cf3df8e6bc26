package service

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/astauriabidco-maker/fle-expert/internal/audit/domain"
	auditservice "github.com/astauriabidco-maker/fle-expert/internal/audit/service"
	"github.com/astauriabidco-maker/fle-expert/internal/clock"
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	examrepository "github.com/astauriabidco-maker/fle-expert/internal/exam/repository"
	integrityservice "github.com/astauriabidco-maker/fle-expert/internal/integrity/service"
	ledgerdomain "github.com/astauriabidco-maker/fle-expert/internal/ledger/domain"
	ledgerservice "github.com/astauriabidco-maker/fle-expert/internal/ledger/service"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	orgrepository "github.com/astauriabidco-maker/fle-expert/internal/organization/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type examFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	svc     *Service
	orgID   snowflake.ID
	userID  snowflake.ID
	scoring config.ScoringConfig
}

func newExamFixture(t *testing.T, name string, initialCredits int64) *examFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&orgdomain.User{},
		&examdomain.ExamSession{},
		&ledgerdomain.CreditTransaction{},
		&auditdomain.AuditLog{},
	))
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_credit_transactions_session ON credit_transactions(related_session_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_exam_sessions_result_hash ON exam_sessions(result_hash)")

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
	})
	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, AuditSvc: auditSvc,
	})
	integritySvc, err := integrityservice.NewService(config.Config{
		Environment:     "test",
		IntegritySecret: "exam-service-test-secret",
	})
	require.NoError(t, err)

	scoring := config.DefaultScoringConfig()
	svc := NewService(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Scoring:   config.NewStaticScoringHolder(scoring),
		Repo:      examrepository.NewRepository(db),
		OrgRepo:   orgrepository.NewRepository(db),
		Ledger:    ledgerSvc,
		Integrity: integritySvc,
		AuditSvc:  auditSvc,
	})

	f := &examFixture{
		db:      db,
		node:    node,
		clock:   fake,
		svc:     svc.(*Service),
		scoring: scoring,
	}

	f.orgID = node.Generate()
	require.NoError(t, db.Create(&orgdomain.Organization{
		ID:             f.orgID,
		Name:           "Institut Lyon",
		Slug:           "institut-lyon",
		CreditsBalance: initialCredits,
		CreatedAt:      fake.Now(),
		UpdatedAt:      fake.Now(),
	}).Error)

	f.userID = node.Generate()
	require.NoError(t, db.Create(&orgdomain.User{
		ID:        f.userID,
		OrgID:     f.orgID,
		FullName:  "Marie Dupont",
		Email:     "marie.dupont@example.org",
		CreatedAt: fake.Now(),
	}).Error)

	return f
}

func (f *examFixture) balance(t *testing.T) int64 {
	t.Helper()
	var org orgdomain.Organization
	require.NoError(t, f.db.First(&org, "id = ?", f.orgID).Error)
	return org.CreditsBalance
}

func answersWithCorrect(correct, total int) []examdomain.Answer {
	answers := make([]examdomain.Answer, 0, total)
	for i := 0; i < total; i++ {
		answers = append(answers, examdomain.Answer{
			QuestionID: "q-" + string(rune('a'+i%26)),
			Correct:    i < correct,
		})
	}
	return answers
}

func TestStart_CreatesAssignedWithoutCharging(t *testing.T) {
	f := newExamFixture(t, "exam_start", 100)

	session, err := f.svc.Start(context.Background(), f.userID, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, examdomain.StatusAssigned, session.Status)
	assert.Nil(t, session.Score)
	assert.Nil(t, session.ResultHash)

	// Starting reserves nothing: credits are only consumed at completion.
	assert.Equal(t, int64(100), f.balance(t))
}

func TestStart_RejectsNonMember(t *testing.T) {
	f := newExamFixture(t, "exam_start_member", 100)

	stranger := f.node.Generate()
	_, err := f.svc.Start(context.Background(), stranger, f.orgID)
	assert.ErrorIs(t, err, examdomain.ErrNotMember)
}

func TestBegin_TransitionsAndIsIdempotent(t *testing.T) {
	f := newExamFixture(t, "exam_begin", 100)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, f.userID, f.orgID)
	require.NoError(t, err)

	began, err := f.svc.Begin(ctx, session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, examdomain.StatusInProgress, began.Status)

	// Repeating the call is a no-op, not an error.
	again, err := f.svc.Begin(ctx, session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, examdomain.StatusInProgress, again.Status)
}

func TestBegin_RejectsCompletedSession(t *testing.T) {
	f := newExamFixture(t, "exam_begin_done", 100)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, f.userID, f.orgID)
	require.NoError(t, err)
	_, err = f.svc.Begin(ctx, session.ID, f.userID)
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, session.ID, f.userID, answersWithCorrect(5, 10))
	require.NoError(t, err)

	_, err = f.svc.Begin(ctx, session.ID, f.userID)
	assert.ErrorIs(t, err, examdomain.ErrInvalidTransition)
}

func TestComplete_WorkedExample(t *testing.T) {
	f := newExamFixture(t, "exam_complete", 100)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, f.userID, f.orgID)
	require.NoError(t, err)
	_, err = f.svc.Begin(ctx, session.ID, f.userID)
	require.NoError(t, err)

	// 4 of 10 correct on the 0..699 scale lands at 280, inside B1.
	completed, err := f.svc.Complete(ctx, session.ID, f.userID, answersWithCorrect(4, 10))
	require.NoError(t, err)

	assert.Equal(t, examdomain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.Score)
	assert.Equal(t, 280, *completed.Score)
	require.NotNil(t, completed.EstimatedLevel)
	assert.Equal(t, "B1", *completed.EstimatedLevel)
	require.NotNil(t, completed.ResultHash)
	assert.Len(t, *completed.ResultHash, 64)
	require.NotNil(t, completed.CompletedAt)

	// Cost 50 against a balance of 100 leaves 50.
	assert.Equal(t, int64(50), f.balance(t))
}

func TestComplete_IdempotentRepeat(t *testing.T) {
	f := newExamFixture(t, "exam_complete_idem", 100)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, f.userID, f.orgID)
	require.NoError(t, err)
	_, err = f.svc.Begin(ctx, session.ID, f.userID)
	require.NoError(t, err)

	first, err := f.svc.Complete(ctx, session.ID, f.userID, answersWithCorrect(4, 10))
	require.NoError(t, err)

	// A retried completion, even with different answers, returns the
	// committed result and charges nothing more.
	f.clock.Advance(48 * time.Hour)
	second, err := f.svc.Complete(ctx, session.ID, f.userID, answersWithCorrect(10, 10))
	require.NoError(t, err)

	assert.Equal(t, *first.Score, *second.Score)
	assert.Equal(t, *first.ResultHash, *second.ResultHash)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
	assert.Equal(t, int64(50), f.balance(t))

	var count int64
	f.db.Model(&ledgerdomain.CreditTransaction{}).Where("org_id = ?", f.orgID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestComplete_ConcurrentCallsChargeOnce(t *testing.T) {
	f := newExamFixture(t, "exam_complete_race", 100)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, f.userID, f.orgID)
	require.NoError(t, err)
	_, err = f.svc.Begin(ctx, session.ID, f.userID)
	require.NoError(t, err)

	// Duplicate completion requests racing across goroutines: the status
	// compare-and-swap and the ledger's unique index must let exactly one
	// debit through, with both callers observing the committed result.
	type outcome struct {
		session *examdomain.ExamSession
		err     error
	}
	start := make(chan struct{})
	results := make(chan outcome, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			completed, err := f.svc.Complete(ctx, session.ID, f.userID, answersWithCorrect(4, 10))
			results <- outcome{session: completed, err: err}
		}()
	}
	close(start)

	var sessions []*examdomain.ExamSession
	for i := 0; i < 2; i++ {
		res := <-results
		require.NoError(t, res.err)
		sessions = append(sessions, res.session)
	}

	assert.Equal(t, *sessions[0].Score, *sessions[1].Score)
	assert.Equal(t, *sessions[0].ResultHash, *sessions[1].ResultHash)
	assert.Equal(t, int64(50), f.balance(t))

	var count int64
	f.db.Model(&ledgerdomain.CreditTransaction{}).Where("related_session_id = ?", session.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestComplete_InsufficientCreditsLeavesSessionOpen(t *testing.T) {
	f := newExamFixture(t, "exam_complete_poor", 10)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, f.userID, f.orgID)
	require.NoError(t, err)
	_, err = f.svc.Begin(ctx, session.ID, f.userID)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, session.ID, f.userID, answersWithCorrect(8, 10))
	assert.ErrorIs(t, err, ledgerdomain.ErrInsufficientCredits)

	// No partial state: session stays IN_PROGRESS, balance stays 10.
	reloaded, err := f.svc.Get(ctx, session.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, examdomain.StatusInProgress, reloaded.Status)
	assert.Nil(t, reloaded.Score)
	assert.Nil(t, reloaded.ResultHash)
	assert.Equal(t, int64(10), f.balance(t))

	// After a top-up the same session completes normally.
	_, err = f.svc.ledger.Credit(ctx, f.orgID, 100, "top-up")
	require.NoError(t, err)
	completed, err := f.svc.Complete(ctx, session.ID, f.userID, answersWithCorrect(8, 10))
	require.NoError(t, err)
	assert.Equal(t, examdomain.StatusCompleted, completed.Status)
	assert.Equal(t, int64(60), f.balance(t))
}

func TestComplete_RejectsForeignCaller(t *testing.T) {
	f := newExamFixture(t, "exam_complete_owner", 100)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, f.userID, f.orgID)
	require.NoError(t, err)

	other := f.node.Generate()
	_, err = f.svc.Complete(ctx, session.ID, other, answersWithCorrect(4, 10))
	assert.ErrorIs(t, err, examdomain.ErrSessionNotOwned)
}

func TestGet_UnknownSession(t *testing.T) {
	f := newExamFixture(t, "exam_get_missing", 100)

	_, err := f.svc.Get(context.Background(), f.node.Generate(), f.userID)
	assert.ErrorIs(t, err, examdomain.ErrSessionNotFound)
}
