package service

import (
	"context"
	"io"

	certdomain "github.com/astauriabidco-maker/fle-expert/internal/certificate/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	obsmetrics "github.com/astauriabidco-maker/fle-expert/internal/observability/metrics"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/providers/pdf"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Scoring    *config.ScoringConfigHolder
	ExamSvc    examdomain.Service
	OrgRepo    orgdomain.Repository
	PDF        pdf.Provider
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	cfg        config.Config
	log        *zap.Logger
	scoring    *config.ScoringConfigHolder
	examSvc    examdomain.Service
	orgRepo    orgdomain.Repository
	pdf        pdf.Provider
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) certdomain.Service {
	return &Service{
		cfg:        p.Cfg,
		log:        p.Log.Named("certificate.service"),
		scoring:    p.Scoring,
		examSvc:    p.ExamSvc,
		orgRepo:    p.OrgRepo,
		pdf:        p.PDF,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Get(ctx context.Context, sessionID, userID snowflake.ID) (*certdomain.Certificate, error) {
	session, err := s.examSvc.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != examdomain.StatusCompleted {
		return nil, certdomain.ErrCertificateNotReady
	}

	user, err := s.orgRepo.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetOrganization(ctx, session.OrgID)
	if err != nil {
		return nil, err
	}

	return &certdomain.Certificate{
		SessionID:       session.ID,
		CandidateName:   user.FullName,
		OrgName:         org.Name,
		Score:           *session.Score,
		MaxScore:        s.scoring.Get().MaxScaledScore,
		EstimatedLevel:  *session.EstimatedLevel,
		ResultHash:      *session.ResultHash,
		CompletedAt:     *session.CompletedAt,
		VerificationURL: s.cfg.PublicBaseURL + "/verify/" + *session.ResultHash,
	}, nil
}

func (s *Service) Render(ctx context.Context, sessionID, userID snowflake.ID) (io.Reader, error) {
	cert, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	reader, err := s.pdf.GenerateCertificate(ctx, pdf.CertificateData{
		CandidateName:   cert.CandidateName,
		OrgName:         cert.OrgName,
		Score:           cert.Score,
		MaxScore:        cert.MaxScore,
		EstimatedLevel:  cert.EstimatedLevel,
		CompletionDate:  cert.CompletedAt.Format("2006-01-02"),
		VerificationURL: cert.VerificationURL,
		ResultHash:      cert.ResultHash,
	})
	if err != nil {
		s.log.Error("certificate render failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.obsMetrics.RecordCertificateRendered()
	return reader, nil
}
