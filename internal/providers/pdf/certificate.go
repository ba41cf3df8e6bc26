package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		Build()

	m := maroto.New(cfg)

	m.AddRow(25,
		text.NewCol(12, "Diagnostic Certificate", props.Text{
			Size:  26,
			Style: fontstyle.Bold,
			Align: align.Center,
			Top:   8,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, "French Language Proficiency Assessment", props.Text{
			Size:  12,
			Align: align.Center,
		}),
	)

	m.AddRow(30,
		text.NewCol(12, data.CandidateName, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
			Top:   10,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, data.OrgName, props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)

	m.AddRow(20,
		col.New(3),
		col.New(3).Add(
			text.New("Score", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center}),
			text.New(fmt.Sprintf("%d / %d", data.Score, data.MaxScore), props.Text{Size: 14, Top: 6, Align: align.Center}),
		),
		col.New(3).Add(
			text.New("Estimated level (CECRL)", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center}),
			text.New(data.EstimatedLevel, props.Text{Size: 14, Top: 6, Align: align.Center}),
		),
		col.New(3),
	)

	m.AddRow(10,
		text.NewCol(12, "Completed on "+data.CompletionDate, props.Text{
			Size:  10,
			Align: align.Center,
		}),
	)

	// The QR code carries the public verification link; the hash below it
	// lets a reader check the code and the printed value agree.
	m.AddRow(30,
		col.New(5),
		code.NewQrCol(2, data.VerificationURL, props.Rect{
			Center:  true,
			Percent: 90,
		}),
		col.New(5),
	)
	m.AddRow(8,
		text.NewCol(12, "Verify at "+data.VerificationURL, props.Text{
			Size:  8,
			Align: align.Center,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, data.ResultHash, props.Text{
			Size:  7,
			Align: align.Center,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
