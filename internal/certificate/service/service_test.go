package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	certdomain "github.com/astauriabidco-maker/fle-expert/internal/certificate/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/providers/pdf"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mock objects

type mockExamSvc struct {
	mock.Mock
}

func (m *mockExamSvc) Start(ctx context.Context, userID, orgID snowflake.ID) (*examdomain.ExamSession, error) {
	args := m.Called(ctx, userID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*examdomain.ExamSession), args.Error(1)
}

func (m *mockExamSvc) Begin(ctx context.Context, sessionID, userID snowflake.ID) (*examdomain.ExamSession, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*examdomain.ExamSession), args.Error(1)
}

func (m *mockExamSvc) Complete(ctx context.Context, sessionID, userID snowflake.ID, answers []examdomain.Answer) (*examdomain.ExamSession, error) {
	args := m.Called(ctx, sessionID, userID, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*examdomain.ExamSession), args.Error(1)
}

func (m *mockExamSvc) Get(ctx context.Context, sessionID, userID snowflake.ID) (*examdomain.ExamSession, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*examdomain.ExamSession), args.Error(1)
}

type mockOrgRepo struct {
	mock.Mock
}

func (m *mockOrgRepo) WithTx(tx *gorm.DB) orgdomain.Repository { return m }

func (m *mockOrgRepo) CreateOrganization(ctx context.Context, org orgdomain.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *mockOrgRepo) GetOrganization(ctx context.Context, id snowflake.ID) (*orgdomain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orgdomain.Organization), args.Error(1)
}

func (m *mockOrgRepo) CreateUser(ctx context.Context, user orgdomain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockOrgRepo) GetUser(ctx context.Context, id snowflake.ID) (*orgdomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orgdomain.User), args.Error(1)
}

func (m *mockOrgRepo) IsMember(ctx context.Context, orgID, userID snowflake.ID) (bool, error) {
	args := m.Called(ctx, orgID, userID)
	return args.Bool(0), args.Error(1)
}

type mockPDF struct {
	mock.Mock
}

func (m *mockPDF) GenerateCertificate(ctx context.Context, data pdf.CertificateData) (io.Reader, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.Reader), args.Error(1)
}

func completedSession(node *snowflake.Node, userID, orgID snowflake.ID) *examdomain.ExamSession {
	score := 280
	level := "B1"
	hash := strings.Repeat("ab", 32)
	completedAt := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	return &examdomain.ExamSession{
		ID:             node.Generate(),
		UserID:         userID,
		OrgID:          orgID,
		Status:         examdomain.StatusCompleted,
		Score:          &score,
		EstimatedLevel: &level,
		ResultHash:     &hash,
		CreatedAt:      completedAt.Add(-time.Hour),
		CompletedAt:    &completedAt,
	}
}

func newCertService(examSvc *mockExamSvc, orgRepo *mockOrgRepo, pdfProv *mockPDF) certdomain.Service {
	return NewService(Params{
		Cfg: config.Config{
			PublicBaseURL: "https://exam.example.org",
		},
		Log:     zap.NewNop(),
		Scoring: config.NewStaticScoringHolder(config.DefaultScoringConfig()),
		ExamSvc: examSvc,
		OrgRepo: orgRepo,
		PDF:     pdfProv,
	})
}

func TestGet_ProjectsCompletedSession(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	userID := node.Generate()
	orgID := node.Generate()
	session := completedSession(node, userID, orgID)

	examSvc := new(mockExamSvc)
	orgRepo := new(mockOrgRepo)
	examSvc.On("Get", mock.Anything, session.ID, userID).Return(session, nil)
	orgRepo.On("GetUser", mock.Anything, userID).Return(&orgdomain.User{ID: userID, FullName: "Marie Dupont"}, nil)
	orgRepo.On("GetOrganization", mock.Anything, orgID).Return(&orgdomain.Organization{ID: orgID, Name: "Institut Lyon"}, nil)

	svc := newCertService(examSvc, orgRepo, new(mockPDF))

	cert, err := svc.Get(context.Background(), session.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Marie Dupont", cert.CandidateName)
	assert.Equal(t, "Institut Lyon", cert.OrgName)
	assert.Equal(t, 280, cert.Score)
	assert.Equal(t, 699, cert.MaxScore)
	assert.Equal(t, "B1", cert.EstimatedLevel)
	assert.Equal(t, "https://exam.example.org/verify/"+*session.ResultHash, cert.VerificationURL)
}

func TestGet_NotReadyBeforeCompletion(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	userID := node.Generate()
	session := &examdomain.ExamSession{
		ID:     node.Generate(),
		UserID: userID,
		OrgID:  node.Generate(),
		Status: examdomain.StatusInProgress,
	}

	examSvc := new(mockExamSvc)
	examSvc.On("Get", mock.Anything, session.ID, userID).Return(session, nil)
	orgRepo := new(mockOrgRepo)

	svc := newCertService(examSvc, orgRepo, new(mockPDF))

	_, err := svc.Get(context.Background(), session.ID, userID)
	assert.ErrorIs(t, err, certdomain.ErrCertificateNotReady)
	orgRepo.AssertNotCalled(t, "GetUser")
}

func TestGet_PropagatesOwnershipError(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	sessionID := node.Generate()
	userID := node.Generate()

	examSvc := new(mockExamSvc)
	examSvc.On("Get", mock.Anything, sessionID, userID).Return(nil, examdomain.ErrSessionNotOwned)

	svc := newCertService(examSvc, new(mockOrgRepo), new(mockPDF))

	_, err := svc.Get(context.Background(), sessionID, userID)
	assert.ErrorIs(t, err, examdomain.ErrSessionNotOwned)
}

func TestRender_DelegatesToProvider(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	userID := node.Generate()
	orgID := node.Generate()
	session := completedSession(node, userID, orgID)

	examSvc := new(mockExamSvc)
	orgRepo := new(mockOrgRepo)
	pdfProv := new(mockPDF)
	examSvc.On("Get", mock.Anything, session.ID, userID).Return(session, nil)
	orgRepo.On("GetUser", mock.Anything, userID).Return(&orgdomain.User{ID: userID, FullName: "Marie Dupont"}, nil)
	orgRepo.On("GetOrganization", mock.Anything, orgID).Return(&orgdomain.Organization{ID: orgID, Name: "Institut Lyon"}, nil)
	pdfProv.On("GenerateCertificate", mock.Anything, mock.MatchedBy(func(data pdf.CertificateData) bool {
		return data.CandidateName == "Marie Dupont" &&
			data.Score == 280 &&
			data.EstimatedLevel == "B1" &&
			data.CompletionDate == "2026-03-14" &&
			strings.HasPrefix(data.VerificationURL, "https://exam.example.org/verify/")
	})).Return(strings.NewReader("%PDF-1.7"), nil)

	svc := newCertService(examSvc, orgRepo, pdfProv)

	reader, err := svc.Render(context.Background(), session.ID, userID)
	require.NoError(t, err)
	payload, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(payload))
	pdfProv.AssertExpectations(t)
}
