package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Start creates a session in ASSIGNED. It never touches the ledger:
	// abandoned attempts must not cost anything.
	Start(ctx context.Context, userID, orgID snowflake.ID) (*ExamSession, error)

	// Begin moves ASSIGNED -> IN_PROGRESS. Calling it on a session already
	// in progress is a no-op.
	Begin(ctx context.Context, sessionID, userID snowflake.ID) (*ExamSession, error)

	// Complete scores the answers, debits the organization and stamps the
	// result fingerprint in one atomic unit. Completing an already
	// COMPLETED session returns it unchanged and performs no ledger work.
	Complete(ctx context.Context, sessionID, userID snowflake.ID, answers []Answer) (*ExamSession, error)

	// Get returns the session after an ownership check.
	Get(ctx context.Context, sessionID, userID snowflake.ID) (*ExamSession, error)
}

var (
	ErrSessionNotFound   = errors.New("session_not_found")
	ErrSessionNotOwned   = errors.New("session_not_owned")
	ErrNotMember         = errors.New("user_not_in_organization")
	ErrInvalidTransition = errors.New("invalid_session_transition")
)
