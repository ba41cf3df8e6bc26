package service

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	integritydomain "github.com/astauriabidco-maker/fle-expert/internal/integrity/domain"
	obsmetrics "github.com/astauriabidco-maker/fle-expert/internal/observability/metrics"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	verificationdomain "github.com/astauriabidco-maker/fle-expert/internal/verification/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const hashHexLen = 64

type Params struct {
	fx.In

	Log        *zap.Logger
	ExamRepo   examdomain.Repository
	OrgRepo    orgdomain.Repository
	Integrity  integritydomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	examRepo   examdomain.Repository
	orgRepo    orgdomain.Repository
	integrity  integritydomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) verificationdomain.Service {
	return &Service{
		log:        p.Log.Named("verification.service"),
		examRepo:   p.ExamRepo,
		orgRepo:    p.OrgRepo,
		integrity:  p.Integrity,
		obsMetrics: p.ObsMetrics,
	}
}

// Verify treats the stored session as authoritative: the hash only selects
// the record, and the fingerprint is recomputed from stored fields before
// anything is disclosed. A hash that selects a row but fails recomputation
// means the stored data changed after issuance, and is reported invalid.
// Claimed fields, when presented, must agree with the stored session; they
// are never trusted as a data source.
func (s *Service) Verify(ctx context.Context, presentedHash string, claim verificationdomain.Claim) (verificationdomain.Result, error) {
	if !looksLikeHash(presentedHash) {
		s.obsMetrics.RecordVerification(false)
		return verificationdomain.Result{Valid: false}, nil
	}

	var session *examdomain.ExamSession
	err := backoff.Retry(func() error {
		found, err := s.examRepo.FindCompletedByHash(ctx, presentedHash)
		if err != nil {
			if errors.Is(err, examdomain.ErrSessionNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		session = found
		return nil
	}, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(50*time.Millisecond),
		), 3),
		ctx,
	))
	if err != nil {
		if errors.Is(err, examdomain.ErrSessionNotFound) {
			s.obsMetrics.RecordVerification(false)
			return verificationdomain.Result{Valid: false}, nil
		}
		return verificationdomain.Result{}, err
	}

	if session.Score == nil || session.CompletedAt == nil || session.EstimatedLevel == nil {
		s.obsMetrics.RecordVerification(false)
		return verificationdomain.Result{Valid: false}, nil
	}

	isoDate := session.CompletedAt.Format("2006-01-02")
	if !claimMatches(claim, session, isoDate) {
		s.obsMetrics.RecordVerification(false)
		return verificationdomain.Result{Valid: false}, nil
	}
	if !s.integrity.Verify(session.UserID, *session.Score, isoDate, presentedHash) {
		s.log.Warn("stored session failed fingerprint recomputation",
			zap.String("session_id", session.ID.String()),
		)
		s.obsMetrics.RecordVerification(false)
		return verificationdomain.Result{Valid: false}, nil
	}

	user, err := s.orgRepo.GetUser(ctx, session.UserID)
	if err != nil {
		return verificationdomain.Result{}, err
	}

	s.obsMetrics.RecordVerification(true)
	return verificationdomain.Result{
		Valid:          true,
		CandidateName:  user.FullName,
		Score:          session.Score,
		EstimatedLevel: *session.EstimatedLevel,
		CompletedAt:    session.CompletedAt,
	}, nil
}

func claimMatches(claim verificationdomain.Claim, session *examdomain.ExamSession, isoDate string) bool {
	if claim.UserID != "" {
		claimedUser, err := snowflake.ParseString(claim.UserID)
		if err != nil || claimedUser != session.UserID {
			return false
		}
	}
	if claim.Score != nil && *claim.Score != *session.Score {
		return false
	}
	if claim.ISODate != "" && claim.ISODate != isoDate {
		return false
	}
	return true
}

func looksLikeHash(presented string) bool {
	if len(presented) != hashHexLen {
		return false
	}
	_, err := hex.DecodeString(presented)
	return err == nil
}
