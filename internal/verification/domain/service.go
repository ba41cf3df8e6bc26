// Package domain defines the public certificate verification contract.
package domain

import (
	"context"
	"time"
)

// Result is what a third party checking a certificate gets back. Invalid
// lookups carry no detail at all: the endpoint must not leak whether a hash
// is close to a real one.
type Result struct {
	Valid          bool       `json:"valid"`
	CandidateName  string     `json:"candidate_name,omitempty"`
	Score          *int       `json:"score,omitempty"`
	EstimatedLevel string     `json:"estimated_level,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Claim carries fields a caller read off a certificate. The stored session
// stays authoritative: claimed values are only compared against it, never
// echoed back. A zero Claim means nothing was presented beyond the hash.
type Claim struct {
	UserID  string
	Score   *int
	ISODate string
}

type Service interface {
	// Verify resolves a presented hash against the stored session record and
	// recomputes the fingerprint server-side. An unknown or mismatching hash,
	// or a claim that contradicts the stored session, yields Valid=false, not
	// an error.
	Verify(ctx context.Context, presentedHash string, claim Claim) (Result, error)
}
