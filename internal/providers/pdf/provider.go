package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

// CertificateData is everything the renderer needs; the caller resolves
// names and formats dates so the renderer stays free of storage concerns.
type CertificateData struct {
	CandidateName  string
	OrgName        string
	Score          int
	MaxScore       int
	EstimatedLevel string
	CompletionDate string

	// VerificationURL is the public link encoded into the QR code.
	VerificationURL string
	ResultHash      string
}

type Provider interface {
	GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	return nil, nil
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
