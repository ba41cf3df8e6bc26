// Package domain contains the certificate projection and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Certificate is a read-only projection of a completed exam session. It is
// derived on demand and never stored; the session row stays the single
// source of truth.
type Certificate struct {
	SessionID       snowflake.ID `json:"session_id"`
	CandidateName   string       `json:"candidate_name"`
	OrgName         string       `json:"org_name"`
	Score           int          `json:"score"`
	MaxScore        int          `json:"max_score"`
	EstimatedLevel  string       `json:"estimated_level"`
	ResultHash      string       `json:"result_hash"`
	CompletedAt     time.Time    `json:"completed_at"`
	VerificationURL string       `json:"verification_url"`
}
