package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
)

var (
	// ErrCertificateNotReady is returned for sessions that exist but have
	// not reached COMPLETED.
	ErrCertificateNotReady = errors.New("certificate not ready")
)

type Service interface {
	// Get projects the certificate for a completed session owned by userID.
	Get(ctx context.Context, sessionID, userID snowflake.ID) (*Certificate, error)

	// Render produces the downloadable PDF for the same projection.
	Render(ctx context.Context, sessionID, userID snowflake.ID) (io.Reader, error)
}
