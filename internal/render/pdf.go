package render

import (
	"context"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/pkg/errors"

	"github.com/formflow/formflow-api/internal/apperr"
)

// PDFRenderer is the seam to the external rendering collaborator. The
// document builders never touch PDF bytes themselves.
type PDFRenderer interface {
	Render(ctx context.Context, doc DocumentSpec, page PageConfig) ([]byte, error)
}

// WKHTMLRenderer renders documents through the wkhtmltopdf binary.
type WKHTMLRenderer struct{}

// NewWKHTMLRenderer configures the wkhtmltopdf binary path when one is
// given; otherwise the binary is looked up on PATH.
func NewWKHTMLRenderer(binaryPath string) *WKHTMLRenderer {
	if strings.TrimSpace(binaryPath) != "" {
		wkhtmltopdf.SetPath(binaryPath)
	}
	return &WKHTMLRenderer{}
}

func (r *WKHTMLRenderer) Render(ctx context.Context, doc DocumentSpec, page PageConfig) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, apperr.Renderf(err, "initialize pdf generator")
	}

	pdfg.PageSize.Set(page.Size)
	pdfg.MarginTop.Set(page.MarginTopMM)
	pdfg.MarginRight.Set(page.MarginRight)
	pdfg.MarginBottom.Set(page.MarginBottom)
	pdfg.MarginLeft.Set(page.MarginLeft)
	pdfg.Title.Set(doc.Title)

	pdfg.AddPage(wkhtmltopdf.NewPageReader(strings.NewReader(doc.HTML)))

	if err := pdfg.CreateContext(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, apperr.FromContext(ctx.Err())
		}
		return nil, apperr.Renderf(errors.Wrap(err, "wkhtmltopdf"), "create document")
	}
	return pdfg.Bytes(), nil
}
