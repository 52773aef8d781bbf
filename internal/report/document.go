package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/jeovahfialho/faturamento-report/internal/domain"
)

const (
	DocumentTitle       = "Relatório de Faturamento"
	DocumentFilename    = "relatorio.pdf"
	DocumentContentType = "application/pdf"

	chartImageName = "grafico"
)

// RenderPDF lays out the title, the period, the grand total and, below the
// text block, the chart. The chart is registered from memory, so no file
// is written.
func RenderPDF(a domain.ReportArtifact) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(a.GeneratedAt)
	pdf.SetModificationDate(a.GeneratedAt)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(DocumentTitle, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	pdf.CellFormat(0, 10, tr(DocumentTitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 8, tr("Período: "+FormatPeriod(a.PeriodStart, a.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 8, tr("Faturamento Total: "+FormatCurrency(a.GrandTotal)), "", 1, "C", false, 0, "")

	if len(a.Chart) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader(chartImageName, opts, bytes.NewReader(a.Chart))
		pdf.ImageOptions(chartImageName, 10, 50, 190, 0, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("erro ao gerar PDF: %w", err)
	}

	return buf.Bytes(), nil
}
